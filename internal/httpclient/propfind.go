package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/beevik/etree"

	"github.com/tmaehler/davbox/internal/davxml"
)

// DoPROPFIND performs a PROPFIND request for the given properties and
// returns the parsed multistatus document.
func (w *wrapper) DoPROPFIND(ctx context.Context, path string, depth int, props ...davxml.PropRequest) (*etree.Document, error) {
	w.logger.Debug("starting PROPFIND request",
		"path", path,
		"depth", depth,
		"properties", len(props))

	body, err := davxml.PropfindBody(props...).WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to build PROPFIND body: %w", err)
	}

	resolvedURL, err := w.resolveURL(path)
	if err != nil {
		w.logger.Debug("failed to resolve URL", "path", path, "error", err)
		return nil, err
	}
	w.logger.Debug("resolved URL", "url", resolvedURL.String())

	req, err := http.NewRequestWithContext(ctx, "PROPFIND", resolvedURL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Depth", fmt.Sprintf("%d", depth))
	req.Header.Set("Content-Type", "application/xml")

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Debug("request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := parseMultistatus(resp)
	if err != nil {
		w.logger.Debug("PROPFIND response not usable", "status", resp.Status, "error", err)
		return nil, err
	}
	w.logger.Debug("PROPFIND request complete", "status", resp.Status)
	return doc, nil
}
