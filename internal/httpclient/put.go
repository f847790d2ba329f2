package httpclient

import (
	"bytes"
	"context"
	"net/http"
)

// Precondition controls the conditional header of a PUT. The zero value
// sends none, making the write unconditional.
type Precondition struct {
	ifMatch        string
	ifNoneMatchAny bool
}

// IfMatch makes the write succeed only while the stored entity still has
// the given etag.
func IfMatch(etag string) Precondition { return Precondition{ifMatch: etag} }

// IfNoneMatchAny makes the write succeed only if no entity exists at the
// target yet.
func IfNoneMatchAny() Precondition { return Precondition{ifNoneMatchAny: true} }

func (p Precondition) apply(h http.Header) {
	switch {
	case p.ifNoneMatchAny:
		h.Set("If-None-Match", "*")
	case p.ifMatch != "":
		h.Set("If-Match", p.ifMatch)
	}
}

func (p Precondition) String() string {
	switch {
	case p.ifNoneMatchAny:
		return "if-none-match=*"
	case p.ifMatch != "":
		return "if-match=" + p.ifMatch
	}
	return "none"
}

// DoPUT writes the body to the target path under the given precondition
// and returns the etag the server reported for the new entity, which may
// be empty.
func (w *wrapper) DoPUT(ctx context.Context, path, contentType string, precond Precondition, body []byte) (string, error) {
	w.logger.Debug("starting PUT request",
		"path", path,
		"precondition", precond.String(),
		"content_type", contentType,
		"data_length", len(body))

	resolvedURL, err := w.resolveURL(path)
	if err != nil {
		w.logger.Debug("failed to resolve URL", "path", path, "error", err)
		return "", err
	}
	w.logger.Debug("resolved URL", "url", resolvedURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, resolvedURL.String(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	precond.apply(req.Header)

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Debug("request failed", "error", err)
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
	default:
		w.logger.Debug("unexpected status code",
			"status_code", resp.StatusCode,
			"status", resp.Status)
		return "", newStatusError(resp)
	}

	newEtag := resp.Header.Get("ETag")
	w.logger.Debug("PUT request complete",
		"status", resp.Status,
		"new_etag", newEtag)
	return newEtag, nil
}
