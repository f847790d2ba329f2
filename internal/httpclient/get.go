package httpclient

import (
	"context"
	"io"
	"net/http"
)

// DoGET fetches the raw bytes of the resource at the target path along
// with the declared content type.
func (w *wrapper) DoGET(ctx context.Context, path string) ([]byte, string, error) {
	w.logger.Debug("starting GET request", "path", path)

	resolvedURL, err := w.resolveURL(path)
	if err != nil {
		w.logger.Debug("failed to resolve URL", "path", path, "error", err)
		return nil, "", err
	}
	w.logger.Debug("resolved URL", "url", resolvedURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolvedURL.String(), nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Debug("request failed", "error", err)
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		w.logger.Debug("unexpected status code",
			"status_code", resp.StatusCode,
			"status", resp.Status)
		return nil, "", newStatusError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	w.logger.Debug("GET request complete",
		"status", resp.Status,
		"data_length", len(data))
	return data, resp.Header.Get("Content-Type"), nil
}
