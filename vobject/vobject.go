// Package vobject parses and rewrites iCalendar and vCard bodies at the
// content-line level. Unlike full parsers it never reorders, refolds or
// re-encodes lines it was not asked to change, so a record read from a
// server and written back differs only in the fields that were edited.
package vobject

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRecord reports a body whose BEGIN/END structure is broken.
var ErrInvalidRecord = errors.New("vobject: invalid record")

// Record is an ordered sequence of content lines covering one or more
// components. The zero value is not usable; obtain records from Parse or
// the New* builders.
type Record struct {
	lines []*line
}

// Parse reads a raw iCalendar or vCard body. Carriage returns are
// normalized away before matching; folded physical lines are kept together
// as one logical line with their original bytes. The BEGIN/END nesting must
// balance and at least one component must be present.
func Parse(text string) (*Record, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	phys := strings.Split(text, "\n")

	r := &Record{}
	for i := 0; i < len(phys); {
		group := []string{phys[i]}
		i++
		if isContinuation(phys[i-1]) {
			// continuation with no preceding line, keep as-is
			r.lines = append(r.lines, &line{raw: group, kind: kindOpaque})
			continue
		}
		for i < len(phys) && isContinuation(phys[i]) {
			group = append(group, phys[i])
			i++
		}
		r.lines = append(r.lines, parseLogical(group, unfold(group)))
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func isContinuation(s string) bool {
	return len(s) > 0 && (s[0] == ' ' || s[0] == '\t')
}

// unfold joins a fold group into one logical line, dropping the single
// leading whitespace octet of each continuation.
func unfold(group []string) string {
	if len(group) == 1 {
		return group[0]
	}
	var b strings.Builder
	b.WriteString(group[0])
	for _, cont := range group[1:] {
		b.WriteString(cont[1:])
	}
	return b.String()
}

func (r *Record) validate() error {
	var stack []string
	seen := false
	for _, l := range r.lines {
		switch l.kind {
		case kindBegin:
			seen = true
			stack = append(stack, l.componentType())
		case kindEnd:
			if len(stack) == 0 {
				return fmt.Errorf("%w: END:%s without matching BEGIN", ErrInvalidRecord, l.componentType())
			}
			open := stack[len(stack)-1]
			if l.componentType() != open {
				return fmt.Errorf("%w: END:%s closes BEGIN:%s", ErrInvalidRecord, l.componentType(), open)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("%w: unterminated BEGIN:%s", ErrInvalidRecord, stack[len(stack)-1])
	}
	if !seen {
		return fmt.Errorf("%w: no components", ErrInvalidRecord)
	}
	return nil
}

// String serializes the record in wire form. Untouched lines reproduce
// their original bytes; every line ends with CRLF.
func (r *Record) String() string {
	var b strings.Builder
	for _, l := range r.lines {
		l.write(&b)
	}
	return b.String()
}

// Component returns the first component of the given type in document
// order, descending into nested components.
func (r *Record) Component(typ string) (*Component, bool) {
	typ = strings.ToUpper(typ)
	for _, c := range r.components() {
		if c.typ == typ {
			return c, true
		}
	}
	return nil, false
}

// Primary returns the first component that carries the record's payload,
// skipping the VCALENDAR container and timezone metadata.
func (r *Record) Primary() (*Component, bool) {
	for _, c := range r.components() {
		switch c.typ {
		case "VCALENDAR", "VTIMEZONE", "STANDARD", "DAYLIGHT":
			continue
		}
		return c, true
	}
	return nil, false
}

func (r *Record) components() []*Component {
	var out []*Component
	for i, l := range r.lines {
		if l.kind != kindBegin {
			continue
		}
		if j := r.matchingEnd(i); j >= 0 {
			out = append(out, &Component{rec: r, typ: l.componentType(), begin: l, end: r.lines[j]})
		}
	}
	return out
}

func (r *Record) matchingEnd(begin int) int {
	depth := 0
	for j := begin + 1; j < len(r.lines); j++ {
		switch r.lines[j].kind {
		case kindBegin:
			depth++
		case kindEnd:
			if depth == 0 {
				return j
			}
			depth--
		}
	}
	return -1
}

func (r *Record) index(l *line) int {
	for i, x := range r.lines {
		if x == l {
			return i
		}
	}
	return -1
}
