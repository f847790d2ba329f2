package davclient

import "strings"

// Capability classifies what a collection can hold. The enum is closed:
// decoding happens once during discovery and anything unrecognized stays
// out of the capability set.
type Capability int

const (
	CapUnknown Capability = iota
	CapEvents
	CapTasks
	CapContacts
)

func (c Capability) String() string {
	switch c {
	case CapEvents:
		return "events"
	case CapTasks:
		return "tasks"
	case CapContacts:
		return "contacts"
	}
	return "unknown"
}

// component returns the iCalendar component type queried for the
// capability.
func (c Capability) component() string {
	switch c {
	case CapEvents:
		return "VEVENT"
	case CapTasks:
		return "VTODO"
	}
	return ""
}

// CapabilitySet is the set of capabilities a collection declares. A CalDAV
// collection routinely supports both events and tasks.
type CapabilitySet uint8

// With returns the set with the capability added.
func (s CapabilitySet) With(c Capability) CapabilitySet {
	return s | 1<<uint(c)
}

// Has reports whether the capability is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	return s&(1<<uint(c)) != 0
}

// IsEmpty reports whether nothing was recognized.
func (s CapabilitySet) IsEmpty() bool { return s == 0 }

func (s CapabilitySet) String() string {
	var parts []string
	for _, c := range []Capability{CapEvents, CapTasks, CapContacts} {
		if s.Has(c) {
			parts = append(parts, c.String())
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}
