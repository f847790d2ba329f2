package vobject

import "strings"

const prodID = "-//github.com/tmaehler/davbox//NONSGML v1.0//EN"

// NewCalendarObject builds an empty VCALENDAR wrapper around one component
// of the given type (VEVENT, VTODO). Fields are added with Append and
// AppendWithParams on the inner component.
func NewCalendarObject(componentType string) (*Record, *Component) {
	typ := strings.ToUpper(componentType)
	r := &Record{lines: []*line{
		{kind: kindBegin, name: "BEGIN", value: "VCALENDAR"},
		{kind: kindField, name: "VERSION", value: "2.0"},
		{kind: kindField, name: "PRODID", value: prodID},
		{kind: kindBegin, name: "BEGIN", value: typ},
		{kind: kindEnd, name: "END", value: typ},
		{kind: kindEnd, name: "END", value: "VCALENDAR"},
	}}
	c, _ := r.Component(typ)
	return r, c
}

// NewCard builds an empty version 3.0 vCard.
func NewCard() (*Record, *Component) {
	r := &Record{lines: []*line{
		{kind: kindBegin, name: "BEGIN", value: "VCARD"},
		{kind: kindField, name: "VERSION", value: "3.0"},
		{kind: kindEnd, name: "END", value: "VCARD"},
	}}
	c, _ := r.Component("VCARD")
	return r, c
}

// Unescape reverses Escape for display: a backslash pair collapses to
// the literal character and \n becomes a newline.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// Escape encodes a text value for embedding in a content line: backslash,
// semicolon and comma are backslash-escaped and newlines become literal \n
// (RFC 5545 section 3.3.11, RFC 6350 section 3.4).
func Escape(s string) string {
	if !strings.ContainsAny(s, "\\;,\n\r") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case ';':
			b.WriteString(`\;`)
		case ',':
			b.WriteString(`\,`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
