package httpclient

import (
	"context"
	"net/http"
)

// DoDELETE removes the resource at the target path. Deletes are
// unconditional; a 404 comes back as a *StatusError for the caller to
// interpret.
func (w *wrapper) DoDELETE(ctx context.Context, path string) error {
	w.logger.Debug("starting DELETE request", "path", path)

	resolvedURL, err := w.resolveURL(path)
	if err != nil {
		w.logger.Debug("failed to resolve URL", "path", path, "error", err)
		return err
	}
	w.logger.Debug("resolved URL", "url", resolvedURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, resolvedURL.String(), nil)
	if err != nil {
		return err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Debug("request failed", "error", err)
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
	default:
		w.logger.Debug("unexpected status code",
			"status_code", resp.StatusCode,
			"status", resp.Status)
		return newStatusError(resp)
	}

	w.logger.Debug("DELETE request complete", "status", resp.Status)
	return nil
}
