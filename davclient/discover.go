package davclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmaehler/davbox/internal/davxml"
)

// CollectionRef identifies one collection on the server. Refs are rebuilt
// on every discovery call; nothing is cached across invocations.
type CollectionRef struct {
	Href         string
	DisplayName  string
	Capabilities CapabilitySet
}

// FindCollections discovers the collections able to hold the given
// capability: principal, then the matching home set, then a Depth-1
// listing of the home.
func (c *Client) FindCollections(ctx context.Context, capability Capability) ([]CollectionRef, error) {
	principal, err := c.currentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover principal: %w", err)
	}
	home, err := c.homeSet(ctx, principal, capability)
	if err != nil {
		return nil, fmt.Errorf("failed to discover home set: %w", err)
	}
	all, err := c.listCollections(ctx, home)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections under %s: %w", home, err)
	}

	var refs []CollectionRef
	for _, ref := range all {
		if ref.Capabilities.Has(capability) {
			refs = append(refs, ref)
		}
	}
	c.logger.Debug("discovered collections",
		"capability", capability.String(),
		"total", len(all),
		"matching", len(refs))
	return refs, nil
}

// ResolveCollection picks the collection a command should operate on: the
// exact display-name match when a name is given, otherwise the first
// collection in server order.
func (c *Client) ResolveCollection(ctx context.Context, capability Capability, name string) (CollectionRef, error) {
	refs, err := c.FindCollections(ctx, capability)
	if err != nil {
		return CollectionRef{}, err
	}
	if name != "" {
		for _, ref := range refs {
			if ref.DisplayName == name {
				return ref, nil
			}
		}
		return CollectionRef{}, fmt.Errorf("no %s collection named %q: %w", capability, name, ErrNotFound)
	}
	if len(refs) == 0 {
		return CollectionRef{}, fmt.Errorf("no %s collections on server: %w", capability, ErrNotFound)
	}
	return refs[0], nil
}

// currentUserPrincipal resolves the principal URL, trying the configured
// base first and the well-known locations after.
func (c *Client) currentUserPrincipal(ctx context.Context) (string, error) {
	var errs []error
	for _, path := range []string{"", "/.well-known/caldav", "/.well-known/carddav"} {
		doc, err := c.http.DoPROPFIND(ctx, path, 0, davxml.PropCurrentUserPrincipal)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries, err := davxml.DecodeMultistatus(doc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, e := range entries {
			if p, ok := e.Prop("current-user-principal"); ok {
				if href, ok := p.Find("href"); ok && strings.TrimSpace(href.Text) != "" {
					principal := strings.TrimSpace(href.Text)
					c.logger.Debug("discovered principal", "path", path, "principal", principal)
					return principal, nil
				}
			}
		}
		errs = append(errs, fmt.Errorf("no principal advertised at %q", path))
	}
	return "", errors.Join(errs...)
}

func (c *Client) homeSet(ctx context.Context, principal string, capability Capability) (string, error) {
	prop := davxml.PropCalendarHomeSet
	local := "calendar-home-set"
	if capability == CapContacts {
		prop = davxml.PropAddressbookHomeSet
		local = "addressbook-home-set"
	}

	doc, err := c.http.DoPROPFIND(ctx, principal, 0, prop)
	if err != nil {
		return "", err
	}
	entries, err := davxml.DecodeMultistatus(doc)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	for _, e := range entries {
		if p, ok := e.Prop(local); ok {
			if href, ok := p.Find("href"); ok && strings.TrimSpace(href.Text) != "" {
				home := strings.TrimSpace(href.Text)
				c.logger.Debug("discovered home set", "home", home)
				return home, nil
			}
		}
	}
	return "", fmt.Errorf("server did not advertise %s for %s", local, principal)
}

func (c *Client) listCollections(ctx context.Context, home string) ([]CollectionRef, error) {
	doc, err := c.http.DoPROPFIND(ctx, home, 1,
		davxml.PropResourceType,
		davxml.PropDisplayName,
		davxml.PropSupportedComponentSet)
	if err != nil {
		return nil, err
	}
	entries, err := davxml.DecodeMultistatus(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var refs []CollectionRef
	for _, e := range entries {
		caps := capabilitiesOf(e)
		if caps.IsEmpty() {
			continue
		}
		name := e.PropText("displayname")
		if name == "" {
			name = pathLeaf(e.Href)
		}
		refs = append(refs, CollectionRef{
			Href:         ensureTrailingSlash(e.Href),
			DisplayName:  name,
			Capabilities: caps,
		})
	}
	return refs, nil
}

// capabilitiesOf derives the capability set from the entry's resourcetype
// and declared component set. A calendar that declares no component set
// has unknown capabilities and matches nothing; so does a declaration
// naming only component types this client does not handle.
func capabilitiesOf(e davxml.ResourceEntry) CapabilitySet {
	rt, ok := e.Prop("resourcetype")
	if !ok {
		return 0
	}
	var set CapabilitySet
	if _, isCalendar := rt.Find("calendar"); isCalendar {
		if comps, declared := e.Prop("supported-calendar-component-set"); declared {
			for _, comp := range comps.FindAll("comp") {
				switch strings.ToUpper(comp.GetAttr("name")) {
				case "VEVENT":
					set = set.With(CapEvents)
				case "VTODO":
					set = set.With(CapTasks)
				}
			}
		}
	}
	if _, isAddressbook := rt.Find("addressbook"); isAddressbook {
		set = set.With(CapContacts)
	}
	return set
}

func ensureTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

func pathLeaf(href string) string {
	trimmed := strings.TrimSuffix(href, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
