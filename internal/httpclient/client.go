package httpclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/beevik/etree"

	"github.com/tmaehler/davbox/internal/davxml"
)

// Wrapper is the transport surface the engine talks through. Paths are
// resolved against the configured base URL; XML bodies come back as parsed
// documents and non-success statuses as *StatusError.
type Wrapper interface {
	DoPROPFIND(ctx context.Context, path string, depth int, props ...davxml.PropRequest) (*etree.Document, error)
	DoREPORT(ctx context.Context, path string, depth int, query any) (*etree.Document, error)
	DoPUT(ctx context.Context, path, contentType string, precond Precondition, body []byte) (etag string, err error)
	DoDELETE(ctx context.Context, path string) error
	DoGET(ctx context.Context, path string) (data []byte, contentType string, err error)
}

type wrapper struct {
	client  *http.Client
	baseURL url.URL
	logger  *slog.Logger
}

// NewWrapper builds a Wrapper over the given client and base URL. A nil
// client falls back to http.DefaultClient, a nil logger discards.
func NewWrapper(client *http.Client, baseURL url.URL, logger *slog.Logger) Wrapper {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &wrapper{client: client, baseURL: baseURL, logger: logger}
}

// resolveURL resolves a path or URL string against the base URL.
func (w *wrapper) resolveURL(urlStr string) (*url.URL, error) {
	ref, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL %q: %w", urlStr, err)
	}
	return w.baseURL.ResolveReference(ref), nil
}

// parseMultistatus reads and parses a 207 response body.
func parseMultistatus(resp *http.Response) (*etree.Document, error) {
	if resp.StatusCode != http.StatusMultiStatus {
		return nil, newStatusError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse multistatus response: %w", err)
	}
	return doc, nil
}
