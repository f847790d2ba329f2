package vobject

import "strings"

type lineKind int

const (
	kindField lineKind = iota
	kindBegin
	kindEnd
	kindBlank
	kindOpaque
)

// line is one logical content line. raw holds the physical lines exactly as
// received, folding intact; it is nil for lines added or rewritten after
// parsing, which serialize from name/params/value instead.
type line struct {
	raw    []string
	kind   lineKind
	name   string // original spelling, matched case-insensitively
	params string // text between name and value colon, leading ';' included
	value  string // unfolded value text, verbatim
}

func (l *line) matches(name string) bool {
	return l.kind == kindField && strings.EqualFold(l.name, name)
}

// componentType returns the normalized type of a BEGIN/END marker line.
func (l *line) componentType() string {
	return strings.ToUpper(strings.TrimSpace(l.value))
}

func (l *line) write(b *strings.Builder) {
	if l.raw != nil {
		for _, phys := range l.raw {
			b.WriteString(phys)
			b.WriteString("\r\n")
		}
		return
	}
	if l.kind == kindBlank {
		b.WriteString("\r\n")
		return
	}
	b.WriteString(l.name)
	b.WriteString(l.params)
	b.WriteByte(':')
	b.WriteString(l.value)
	b.WriteString("\r\n")
}

// parseLogical classifies one unfolded content line. Lines that do not match
// the name[;params]:value shape come back as opaque and round-trip untouched.
func parseLogical(raw []string, logical string) *line {
	l := &line{raw: raw}
	if strings.TrimSpace(logical) == "" {
		l.kind = kindBlank
		return l
	}
	name, params, value, ok := splitContentLine(logical)
	if !ok {
		l.kind = kindOpaque
		return l
	}
	l.name, l.params, l.value = name, params, value
	switch {
	case strings.EqualFold(name, "BEGIN"):
		l.kind = kindBegin
	case strings.EqualFold(name, "END"):
		l.kind = kindEnd
	default:
		l.kind = kindField
	}
	return l
}

// splitContentLine locates the value colon, skipping colons inside quoted
// parameter values, and splits off the field name before the first ';'.
func splitContentLine(s string) (name, params, value string, ok bool) {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case ':':
			if inQuote {
				continue
			}
			head := s[:i]
			value = s[i+1:]
			name = head
			if j := strings.IndexByte(head, ';'); j >= 0 {
				name, params = head[:j], head[j:]
			}
			if !validName(name) {
				return "", "", "", false
			}
			return name, params, value, true
		}
	}
	return "", "", "", false
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '.' || c == '_':
		default:
			return false
		}
	}
	return true
}
