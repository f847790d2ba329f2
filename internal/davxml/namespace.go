package davxml

import "github.com/beevik/etree"

// Namespace definitions for WebDAV, CalDAV and CardDAV
const (
	// NSDav is the WebDAV namespace
	NSDav = "DAV:"
	// NSCalDAV is the CalDAV namespace
	NSCalDAV = "urn:ietf:params:xml:ns:caldav"
	// NSCardDAV is the CardDAV namespace
	NSCardDAV = "urn:ietf:params:xml:ns:carddav"
)

// Canonical prefixes used when building request and response documents.
const (
	prefixDav     = "D"
	prefixCalDAV  = "C"
	prefixCardDAV = "CR"
)

// AddNamespaces declares the standard namespace prefixes on the document root.
func AddNamespaces(doc *etree.Document) {
	root := doc.Root()
	if root == nil {
		return
	}
	root.CreateAttr("xmlns:"+prefixDav, NSDav)
	root.CreateAttr("xmlns:"+prefixCalDAV, NSCalDAV)
	root.CreateAttr("xmlns:"+prefixCardDAV, NSCardDAV)
}

func prefixFor(ns string) string {
	switch ns {
	case NSDav:
		return prefixDav
	case NSCalDAV:
		return prefixCalDAV
	case NSCardDAV:
		return prefixCardDAV
	}
	return ""
}
