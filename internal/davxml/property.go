package davxml

import (
	"strings"

	"github.com/beevik/etree"
)

// Property is a generic ordered property tree decoded from a multistatus
// response. Lookups match on the local tag name only: servers prefix the
// same properties with whatever namespace aliases they like.
type Property struct {
	Name      string
	Namespace string
	Text      string
	Children  []Property
	Attr      map[string]string
}

// FromElement populates the property from an etree element, recursively.
func (p *Property) FromElement(elem *etree.Element) {
	p.Name = elem.Tag
	p.Namespace = elem.NamespaceURI()
	p.Text = elem.Text()
	p.Children = nil
	p.Attr = nil
	for _, attr := range elem.Attr {
		if attr.Space == "xmlns" || attr.Key == "xmlns" {
			continue
		}
		if p.Attr == nil {
			p.Attr = make(map[string]string)
		}
		p.Attr[attr.Key] = attr.Value
	}
	for _, child := range elem.ChildElements() {
		var cp Property
		cp.FromElement(child)
		p.Children = append(p.Children, cp)
	}
}

// ToElement converts the property back into an etree element, using the
// canonical prefix for known namespaces.
func (p *Property) ToElement() *etree.Element {
	elem := etree.NewElement(p.Name)
	if pre := prefixFor(p.Namespace); pre != "" {
		elem.Space = pre
	} else if p.Namespace != "" {
		elem.Space = p.Namespace
	}
	if p.Text != "" {
		elem.SetText(p.Text)
	}
	for key, value := range p.Attr {
		elem.CreateAttr(key, value)
	}
	for i := range p.Children {
		elem.AddChild(p.Children[i].ToElement())
	}
	return elem
}

// Find returns the first child with the given local name.
func (p *Property) Find(local string) (Property, bool) {
	for _, c := range p.Children {
		if strings.EqualFold(c.Name, local) {
			return c, true
		}
	}
	return Property{}, false
}

// FindAll returns every child with the given local name, in document order.
func (p *Property) FindAll(local string) []Property {
	var out []Property
	for _, c := range p.Children {
		if strings.EqualFold(c.Name, local) {
			out = append(out, c)
		}
	}
	return out
}

// GetAttr returns an attribute value, or "" when absent.
func (p *Property) GetAttr(name string) string {
	return p.Attr[name]
}

// FindChild returns the first child element whose local tag matches,
// ignoring the namespace prefix.
func FindChild(parent *etree.Element, local string) *etree.Element {
	for _, child := range parent.ChildElements() {
		if strings.EqualFold(child.Tag, local) {
			return child
		}
	}
	return nil
}

// ChildrenByTag returns all child elements whose local tag matches,
// ignoring the namespace prefix.
func ChildrenByTag(parent *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	for _, child := range parent.ChildElements() {
		if strings.EqualFold(child.Tag, local) {
			out = append(out, child)
		}
	}
	return out
}
