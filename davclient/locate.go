package davclient

import (
	"context"
	"fmt"

	"github.com/samber/mo"
	"github.com/tmaehler/davbox/internal/davxml"
	"github.com/tmaehler/davbox/vobject"
)

// LocatedResource is the result of a successful UID scan: the resource
// address, the ETag it had at read time, and its body exactly as the
// server returned it.
type LocatedResource struct {
	Href       string
	ETag       mo.Option[string]
	RawBody    []byte
	Collection CollectionRef
}

// ScanFailure records a collection that could not be searched. A failed
// collection never aborts a multi-collection scan; the failure is
// reported alongside whatever the healthy collections produced.
type ScanFailure struct {
	Collection CollectionRef
	Err        error
}

func (f ScanFailure) String() string {
	return fmt.Sprintf("%s (%s): %v", f.Collection.DisplayName, f.Collection.Href, f.Err)
}

// LocateByUID finds the resource carrying the given UID. With a collection
// name the scan is confined to that collection and errors are fatal; without
// one every collection holding the capability is scanned in server order and
// per-collection errors are collected into ScanFailures. A nil resource with
// a nil error means the UID matched nothing.
func (c *Client) LocateByUID(ctx context.Context, capability Capability, collectionName, uid string) (*LocatedResource, []ScanFailure, error) {
	if uid == "" {
		return nil, nil, fmt.Errorf("%w: empty UID", ErrInvalidInput)
	}

	if collectionName != "" {
		ref, err := c.ResolveCollection(ctx, capability, collectionName)
		if err != nil {
			return nil, nil, err
		}
		located, err := c.locateInCollection(ctx, ref, capability, uid)
		if err != nil {
			return nil, nil, err
		}
		return located, nil, nil
	}

	refs, err := c.FindCollections(ctx, capability)
	if err != nil {
		return nil, nil, err
	}

	var failures []ScanFailure
	for _, ref := range refs {
		located, err := c.locateInCollection(ctx, ref, capability, uid)
		if err != nil {
			c.logger.Debug("collection scan failed", "collection", ref.Href, "error", err)
			failures = append(failures, ScanFailure{Collection: ref, Err: err})
			continue
		}
		if located != nil {
			return located, failures, nil
		}
	}
	return nil, failures, nil
}

// reportScanFailures logs skipped collections so a partial scan is
// visible in verbose output even when the overall operation succeeds.
func (c *Client) reportScanFailures(failures []ScanFailure) {
	for _, f := range failures {
		c.logger.Warn("collection skipped during scan",
			"collection", f.Collection.Href, "error", f.Err)
	}
}

func notFoundWithFailures(what string, failures []ScanFailure) error {
	if len(failures) > 0 {
		return fmt.Errorf("%s, and %d collection(s) could not be searched: %w", what, len(failures), ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}

// locateInCollection runs a UID query against one collection and verifies
// each candidate's UID byte-for-byte. Servers match text under i;octet as a
// substring, so a query for "task-1" can legitimately return "task-10";
// only the exact match counts.
func (c *Client) locateInCollection(ctx context.Context, ref CollectionRef, capability Capability, uid string) (*LocatedResource, error) {
	var (
		query    any
		dataProp string
		compType string
	)
	if capability == CapContacts {
		query = davxml.CardUIDQuery(uid)
		dataProp = "address-data"
		compType = "VCARD"
	} else {
		query = davxml.UIDQuery(capability.component(), uid)
		dataProp = "calendar-data"
		compType = capability.component()
	}

	doc, err := c.http.DoREPORT(ctx, ref.Href, 1, query)
	if err != nil {
		return nil, err
	}
	entries, err := davxml.DecodeMultistatus(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	for _, e := range entries {
		body := e.PropText(dataProp)
		if body == "" {
			continue
		}
		rec, err := vobject.Parse(body)
		if err != nil {
			c.logger.Warn("skipping unparsable resource", "href", e.Href, "error", err)
			continue
		}
		comp, ok := rec.Component(compType)
		if !ok {
			continue
		}
		if got, ok := comp.Get("UID"); ok && got == uid {
			return &LocatedResource{
				Href:       e.Href,
				ETag:       e.ETag,
				RawBody:    []byte(body),
				Collection: ref,
			}, nil
		}
	}
	return nil, nil
}
