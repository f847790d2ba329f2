package httpclient

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
)

// BasicAuthTransport implements http.RoundTripper, adding Basic Auth
// credentials to every outgoing request and logging the full exchange at
// debug level.
type BasicAuthTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// NewBasicAuthTransport creates a BasicAuthTransport over the given
// underlying transport. A nil transport falls back to
// http.DefaultTransport, a nil logger discards.
func NewBasicAuthTransport(username, password string, transport http.RoundTripper, logger *slog.Logger) *BasicAuthTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &BasicAuthTransport{
		Username:  username,
		Password:  password,
		Transport: transport,
		Logger:    logger,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *BasicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	debug := t.Logger.Enabled(req.Context(), slog.LevelDebug)

	if debug {
		t.Logger.Debug("outgoing request",
			"method", req.Method,
			"url", req.URL.String(),
			"body", snapshotBody(&req.Body))
	}

	if t.Username != "" || t.Password != "" {
		req.SetBasicAuth(t.Username, t.Password)
	}
	transport := t.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	resp, err := transport.RoundTrip(req)

	if err == nil && resp != nil && debug {
		t.Logger.Debug("incoming response",
			"status", resp.Status,
			"body", snapshotBody(&resp.Body))
	}
	return resp, err
}

// snapshotBody reads a body for logging and replaces it with a replayable
// copy.
func snapshotBody(body *io.ReadCloser) string {
	if body == nil || *body == nil {
		return ""
	}
	data, err := io.ReadAll(*body)
	if err != nil {
		return ""
	}
	*body = io.NopCloser(bytes.NewReader(data))
	return string(data)
}
