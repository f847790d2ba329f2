package davclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tmaehler/davbox/internal/httpclient"
)

// CreateResource stores a new resource under the collection, guarded by
// If-None-Match: * so a concurrent writer who claimed the name first wins.
// A 412 is reported as Conflict and never retried under a different name.
func (c *Client) CreateResource(ctx context.Context, col CollectionRef, filename, contentType string, body []byte) (string, string, error) {
	if filename == "" {
		return "", "", fmt.Errorf("%w: empty filename", ErrInvalidInput)
	}
	href := col.Href + filename
	etag, err := c.http.DoPUT(ctx, href, contentType, httpclient.IfNoneMatchAny(), body)
	if err != nil {
		if httpclient.IsStatus(err, http.StatusPreconditionFailed) {
			return "", "", fmt.Errorf("resource %s already exists: %w", href, ErrConflict)
		}
		return "", "", err
	}
	c.logger.Debug("created resource", "href", href, "etag", etag)
	return href, etag, nil
}

// UpdateResource rewrites an existing resource with If-Match as the
// staleness guard. The etag must be the one read when the resource was
// located; an empty etag is refused rather than writing unconditionally,
// since that would let a concurrent change go undetected.
func (c *Client) UpdateResource(ctx context.Context, href, etag, contentType string, body []byte) (string, error) {
	if etag == "" {
		return "", fmt.Errorf("%w: resource %s has no etag, refusing unguarded rewrite", ErrInvalidInput, href)
	}
	newETag, err := c.http.DoPUT(ctx, href, contentType, httpclient.IfMatch(etag), body)
	if err != nil {
		if httpclient.IsStatus(err, http.StatusPreconditionFailed) {
			return "", fmt.Errorf("resource %s changed on the server since it was read: %w", href, ErrConflict)
		}
		return "", err
	}
	c.logger.Debug("updated resource", "href", href, "etag", newETag)
	return newETag, nil
}

// DeleteResource removes the resource unconditionally. A 404 means the
// goal state already holds and is treated as success.
func (c *Client) DeleteResource(ctx context.Context, href string) error {
	err := c.http.DoDELETE(ctx, href)
	if err != nil && !httpclient.IsStatus(err, http.StatusNotFound) {
		return err
	}
	c.logger.Debug("deleted resource", "href", href)
	return nil
}

func (c *Client) deleteByUID(ctx context.Context, capability Capability, collectionName, uid, what string) error {
	located, failures, err := c.LocateByUID(ctx, capability, collectionName, uid)
	if err != nil {
		return err
	}
	c.reportScanFailures(failures)
	if located == nil {
		return notFoundWithFailures(fmt.Sprintf("no %s with UID %q", what, uid), failures)
	}
	return c.DeleteResource(ctx, located.Href)
}
