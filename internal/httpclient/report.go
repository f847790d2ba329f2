package httpclient

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/beevik/etree"
)

// DoREPORT executes a CalDAV/CardDAV REPORT request. The query is an
// xml-marshalable body such as davxml.CalendarQuery or
// davxml.AddressbookQuery.
func (w *wrapper) DoREPORT(ctx context.Context, path string, depth int, query any) (*etree.Document, error) {
	w.logger.Debug("starting REPORT request",
		"path", path,
		"depth", depth,
		"query_type", fmt.Sprintf("%T", query))

	queryXML, err := xml.Marshal(query)
	if err != nil {
		w.logger.Debug("failed to marshal query", "error", err)
		return nil, fmt.Errorf("failed to marshal REPORT query: %w", err)
	}
	body := append([]byte(xml.Header), queryXML...)

	resolvedURL, err := w.resolveURL(path)
	if err != nil {
		w.logger.Debug("failed to resolve URL", "path", path, "error", err)
		return nil, err
	}
	w.logger.Debug("resolved URL", "url", resolvedURL.String())

	req, err := http.NewRequestWithContext(ctx, "REPORT", resolvedURL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")
	req.Header.Set("Depth", fmt.Sprintf("%d", depth))

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Debug("request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := parseMultistatus(resp)
	if err != nil {
		w.logger.Debug("REPORT response not usable", "status", resp.Status, "error", err)
		return nil, err
	}
	w.logger.Debug("REPORT request complete", "status", resp.Status)
	return doc, nil
}
