package vobject

import "strings"

// Component is a view over the lines between a BEGIN marker and its
// matching END. Field operations see only the component's own lines, never
// those of nested components.
type Component struct {
	rec   *Record
	typ   string
	begin *line
	end   *line
}

// Type returns the normalized component type, e.g. "VEVENT".
func (c *Component) Type() string { return c.typ }

// Get returns the whitespace-trimmed value of the first occurrence of the
// named field. The name match is case-insensitive; parameters are skipped.
func (c *Component) Get(name string) (string, bool) {
	for _, l := range c.fields() {
		if l.matches(name) {
			return strings.TrimSpace(l.value), true
		}
	}
	return "", false
}

// GetAll returns the values of every occurrence of the named field in
// document order.
func (c *Component) GetAll(name string) []string {
	var out []string
	for _, l := range c.fields() {
		if l.matches(name) {
			out = append(out, strings.TrimSpace(l.value))
		}
	}
	return out
}

// Upsert sets the named field to value. The first existing occurrence is
// rewritten in place, keeping its parameters and position; if the field is
// absent a bare NAME:VALUE line is inserted before the component's END
// marker. Upserting the current value is a no-op, so the operation is
// idempotent at the byte level.
func (c *Component) Upsert(name, value string) {
	for _, l := range c.fields() {
		if l.matches(name) {
			if strings.TrimSpace(l.value) == value {
				return
			}
			l.value = value
			l.raw = nil
			return
		}
	}
	c.insertBeforeEnd(&line{kind: kindField, name: name, value: value})
}

// Append adds a new occurrence of the named field before the component's
// END marker, regardless of existing occurrences. Meant for building new
// records; existing multi-valued fields are read-only.
func (c *Component) Append(name, value string) {
	c.insertBeforeEnd(&line{kind: kindField, name: name, value: value})
}

// AppendWithParams is Append with a raw parameter string, e.g. "TYPE=CELL".
func (c *Component) AppendWithParams(name, params, value string) {
	if params != "" && !strings.HasPrefix(params, ";") {
		params = ";" + params
	}
	c.insertBeforeEnd(&line{kind: kindField, name: name, params: params, value: value})
}

// FieldEdit is one requested field change. An edit with Set false leaves
// the record untouched; edits never delete fields.
type FieldEdit struct {
	Name  string
	Value string
	Set   bool
}

// SetField builds an applied FieldEdit.
func SetField(name, value string) FieldEdit {
	return FieldEdit{Name: name, Value: value, Set: true}
}

// ApplyEdits upserts every set edit in order.
func (c *Component) ApplyEdits(edits ...FieldEdit) {
	for _, e := range edits {
		if e.Set {
			c.Upsert(e.Name, e.Value)
		}
	}
}

func (c *Component) fields() []*line {
	begin := c.rec.index(c.begin)
	end := c.rec.index(c.end)
	depth := 0
	var out []*line
	for _, l := range c.rec.lines[begin+1 : end] {
		switch l.kind {
		case kindBegin:
			depth++
		case kindEnd:
			depth--
		case kindField:
			if depth == 0 {
				out = append(out, l)
			}
		}
	}
	return out
}

func (c *Component) insertBeforeEnd(l *line) {
	i := c.rec.index(c.end)
	r := c.rec
	r.lines = append(r.lines, nil)
	copy(r.lines[i+1:], r.lines[i:])
	r.lines[i] = l
}
