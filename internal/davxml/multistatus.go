package davxml

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/samber/mo"
)

// ErrBadMultistatus reports a response document that is not a usable
// multistatus envelope.
var ErrBadMultistatus = errors.New("davxml: not a multistatus document")

// ResourceEntry is one resource block of a multistatus response: the href,
// the etag when the server supplied one, and every property returned with a
// success status. Blocks without a success propstat produce no entry.
type ResourceEntry struct {
	Href  string
	ETag  mo.Option[string]
	Props []Property
}

// Prop returns the first property with the given local name.
func (e ResourceEntry) Prop(local string) (Property, bool) {
	for _, p := range e.Props {
		if strings.EqualFold(p.Name, local) {
			return p, true
		}
	}
	return Property{}, false
}

// PropText returns the trimmed text of the first property with the given
// local name, or "" when absent.
func (e ResourceEntry) PropText(local string) string {
	if p, ok := e.Prop(local); ok {
		return strings.TrimSpace(p.Text)
	}
	return ""
}

// DecodeMultistatus flattens a multistatus document into resource entries.
// Only properties under a 2xx propstat contribute; a response with no
// successful propstat is dropped. An empty multistatus is a valid empty
// result.
func DecodeMultistatus(doc *etree.Document) ([]ResourceEntry, error) {
	if doc == nil || doc.Root() == nil {
		return nil, fmt.Errorf("%w: empty document", ErrBadMultistatus)
	}
	root := doc.Root()
	if !strings.EqualFold(root.Tag, "multistatus") {
		return nil, fmt.Errorf("%w: root element is %q", ErrBadMultistatus, root.Tag)
	}

	var entries []ResourceEntry
	for _, respElem := range ChildrenByTag(root, "response") {
		hrefElem := FindChild(respElem, "href")
		if hrefElem == nil {
			continue
		}

		var props []Property
		ok := false
		for _, psElem := range ChildrenByTag(respElem, "propstat") {
			status := ""
			if statusElem := FindChild(psElem, "status"); statusElem != nil {
				status = statusElem.Text()
			}
			if !statusSuccess(status) {
				continue
			}
			ok = true
			if propElem := FindChild(psElem, "prop"); propElem != nil {
				for _, child := range propElem.ChildElements() {
					var p Property
					p.FromElement(child)
					props = append(props, p)
				}
			}
		}
		if !ok {
			continue
		}

		entry := ResourceEntry{
			Href:  strings.TrimSpace(hrefElem.Text()),
			ETag:  mo.None[string](),
			Props: props,
		}
		if etag := entry.PropText("getetag"); etag != "" {
			entry.ETag = mo.Some(etag)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// statusSuccess reports whether a status line like "HTTP/1.1 200 OK"
// carries a 2xx code.
func statusSuccess(status string) bool {
	fields := strings.Fields(status)
	if len(fields) < 2 {
		return false
	}
	code := fields[1]
	return len(code) == 3 && code[0] == '2'
}
