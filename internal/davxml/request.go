package davxml

import (
	"encoding/xml"
	"time"

	"github.com/beevik/etree"
)

// PropRequest names one property to ask for in a PROPFIND.
type PropRequest struct {
	Namespace string
	Name      string
}

// Properties requested by the discovery and locator flows.
var (
	PropResourceType          = PropRequest{NSDav, "resourcetype"}
	PropDisplayName           = PropRequest{NSDav, "displayname"}
	PropGetETag               = PropRequest{NSDav, "getetag"}
	PropCurrentUserPrincipal  = PropRequest{NSDav, "current-user-principal"}
	PropCalendarHomeSet       = PropRequest{NSCalDAV, "calendar-home-set"}
	PropAddressbookHomeSet    = PropRequest{NSCardDAV, "addressbook-home-set"}
	PropSupportedComponentSet = PropRequest{NSCalDAV, "supported-calendar-component-set"}
)

// PropfindBody builds a propfind request document asking for the given
// properties.
func PropfindBody(props ...PropRequest) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(prefixDav + ":propfind")
	AddNamespaces(doc)
	prop := root.CreateElement(prefixDav + ":prop")
	for _, p := range props {
		pre := prefixFor(p.Namespace)
		if pre == "" {
			pre = prefixDav
		}
		prop.CreateElement(pre + ":" + p.Name)
	}
	return doc
}

// CalendarQuery is the body of a calendar-query REPORT (RFC 4791 §7.8).
type CalendarQuery struct {
	XMLName xml.Name     `xml:"urn:ietf:params:xml:ns:caldav calendar-query"`
	Prop    CalendarProp `xml:"DAV: prop"`
	Filter  Filter       `xml:"urn:ietf:params:xml:ns:caldav filter"`
}

type CalendarProp struct {
	GetETag      *struct{} `xml:"DAV: getetag"`
	CalendarData *struct{} `xml:"urn:ietf:params:xml:ns:caldav calendar-data"`
}

type Filter struct {
	CompFilter CompFilter `xml:"urn:ietf:params:xml:ns:caldav comp-filter"`
}

type CompFilter struct {
	Name        string       `xml:"name,attr"`
	TimeRange   *TimeRange   `xml:"urn:ietf:params:xml:ns:caldav time-range,omitempty"`
	CompFilter  *CompFilter  `xml:"urn:ietf:params:xml:ns:caldav comp-filter,omitempty"`
	PropFilters []PropFilter `xml:"urn:ietf:params:xml:ns:caldav prop-filter,omitempty"`
}

type PropFilter struct {
	Name      string     `xml:"name,attr"`
	TextMatch *TextMatch `xml:"urn:ietf:params:xml:ns:caldav text-match,omitempty"`
}

type TextMatch struct {
	Text            string `xml:",chardata"`
	Collation       string `xml:"collation,attr,omitempty"`
	NegateCondition string `xml:"negate-condition,attr,omitempty"`
}

type TimeRange struct {
	Start string `xml:"start,attr,omitempty"`
	End   string `xml:"end,attr,omitempty"`
}

// AddressbookQuery is the body of an addressbook-query REPORT (RFC 6352 §8.6).
type AddressbookQuery struct {
	XMLName xml.Name    `xml:"urn:ietf:params:xml:ns:carddav addressbook-query"`
	Prop    AddressProp `xml:"DAV: prop"`
	Filter  CardFilter  `xml:"urn:ietf:params:xml:ns:carddav filter"`
}

type AddressProp struct {
	GetETag     *struct{} `xml:"DAV: getetag"`
	AddressData *struct{} `xml:"urn:ietf:params:xml:ns:carddav address-data"`
}

type CardFilter struct {
	PropFilters []CardPropFilter `xml:"urn:ietf:params:xml:ns:carddav prop-filter"`
}

type CardPropFilter struct {
	Name      string         `xml:"name,attr"`
	TextMatch *CardTextMatch `xml:"urn:ietf:params:xml:ns:carddav text-match,omitempty"`
}

type CardTextMatch struct {
	Text            string `xml:",chardata"`
	Collation       string `xml:"collation,attr,omitempty"`
	MatchType       string `xml:"match-type,attr,omitempty"`
	NegateCondition string `xml:"negate-condition,attr,omitempty"`
}

// ExactUID is the case-sensitive octet collation used for identifier
// matching. CalDAV text-match is substring semantics under any collation,
// so callers re-verify candidate bodies client-side.
const ExactUID = "i;octet"

// TimeFormat is the UTC datetime layout of query ranges and stored
// datetime fields.
const TimeFormat = "20060102T150405Z"

// EventRangeQuery selects VEVENTs overlapping [start, end). Zero bounds are
// omitted.
func EventRangeQuery(start, end time.Time) *CalendarQuery {
	q := baseCalendarQuery("VEVENT")
	if !start.IsZero() || !end.IsZero() {
		tr := &TimeRange{}
		if !start.IsZero() {
			tr.Start = start.UTC().Format(TimeFormat)
		}
		if !end.IsZero() {
			tr.End = end.UTC().Format(TimeFormat)
		}
		q.Filter.CompFilter.CompFilter.TimeRange = tr
	}
	return q
}

// TodoQuery selects VTODOs. With pendingOnly set, components whose STATUS
// matches COMPLETED are filtered out server-side.
func TodoQuery(pendingOnly bool) *CalendarQuery {
	q := baseCalendarQuery("VTODO")
	if pendingOnly {
		q.Filter.CompFilter.CompFilter.PropFilters = []PropFilter{{
			Name:      "STATUS",
			TextMatch: &TextMatch{Text: "COMPLETED", NegateCondition: "yes"},
		}}
	}
	return q
}

// UIDQuery selects components of the given type carrying the identifier.
func UIDQuery(componentType, uid string) *CalendarQuery {
	q := baseCalendarQuery(componentType)
	q.Filter.CompFilter.CompFilter.PropFilters = []PropFilter{{
		Name:      "UID",
		TextMatch: &TextMatch{Text: uid, Collation: ExactUID},
	}}
	return q
}

func baseCalendarQuery(componentType string) *CalendarQuery {
	return &CalendarQuery{
		Prop: CalendarProp{GetETag: &struct{}{}, CalendarData: &struct{}{}},
		Filter: Filter{CompFilter: CompFilter{
			Name:       "VCALENDAR",
			CompFilter: &CompFilter{Name: componentType},
		}},
	}
}

// CardUIDQuery selects the card carrying the identifier.
func CardUIDQuery(uid string) *AddressbookQuery {
	q := CardListQuery()
	q.Filter.PropFilters = []CardPropFilter{{
		Name:      "UID",
		TextMatch: &CardTextMatch{Text: uid, Collation: ExactUID, MatchType: "equals"},
	}}
	return q
}

// CardListQuery selects every card in the address book.
func CardListQuery() *AddressbookQuery {
	return &AddressbookQuery{
		Prop: AddressProp{GetETag: &struct{}{}, AddressData: &struct{}{}},
	}
}
