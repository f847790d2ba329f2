package davclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tmaehler/davbox/internal/httpclient"
)

// DownloadFile fetches an arbitrary resource by server path and returns
// its bytes and content type.
func (c *Client) DownloadFile(ctx context.Context, path string) ([]byte, string, error) {
	data, contentType, err := c.http.DoGET(ctx, path)
	if err != nil {
		if httpclient.IsStatus(err, http.StatusNotFound) {
			return nil, "", fmt.Errorf("no resource at %s: %w", path, ErrNotFound)
		}
		return nil, "", err
	}
	return data, contentType, nil
}

// UploadFile stores bytes at the given server path, replacing whatever
// is there. Opaque files carry no etag protocol, so the write is
// unconditional.
func (c *Client) UploadFile(ctx context.Context, path, contentType string, data []byte) error {
	_, err := c.http.DoPUT(ctx, path, contentType, httpclient.Precondition{}, data)
	if err != nil {
		return err
	}
	c.logger.Debug("uploaded file", "path", path, "bytes", len(data))
	return nil
}
