// Package davclient is a CalDAV/CardDAV client engine for calendar events,
// tasks and contacts: collection discovery, UID-based resource location,
// byte-preserving record mutation and optimistic-concurrency writes.
package davclient

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tmaehler/davbox/internal/httpclient"
)

// Content types of stored records.
const (
	ContentTypeCalendar = "text/calendar; charset=utf-8"
	ContentTypeVCard    = "text/vcard; charset=utf-8"
)

// Options configures a Client.
type Options struct {
	// ServerURL is the DAV root, e.g. https://cloud.example.net/remote.php/dav
	ServerURL string
	Username  string
	Password  string
	// Insecure skips TLS certificate verification.
	Insecure bool
	// Timeout bounds each HTTP request. Defaults to 30 seconds.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Client talks to one DAV server. It keeps no state between calls beyond
// the transport; the server is the sole source of truth.
type Client struct {
	http   httpclient.Wrapper
	logger *slog.Logger
}

// New builds a Client from the given options.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse server URL %q: %w", opts.ServerURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("server URL %q: %w", opts.ServerURL, ErrInvalidInput)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var rt http.RoundTripper = http.DefaultTransport
	if opts.Insecure {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		rt = t
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	hc := &http.Client{
		Transport: httpclient.NewBasicAuthTransport(opts.Username, opts.Password, rt, logger),
		Timeout:   timeout,
	}

	return &Client{
		http:   httpclient.NewWrapper(hc, *base, logger),
		logger: logger,
	}, nil
}

// NewWithTransport builds a Client over an existing transport wrapper.
func NewWithTransport(w httpclient.Wrapper, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{http: w, logger: logger}
}
