package davtest

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/tmaehler/davbox/internal/davxml"
	"github.com/tmaehler/davbox/vobject"
)

type propFilterSpec struct {
	name      string
	text      string
	collation string
	matchType string
	negate    bool
	hasMatch  bool
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	col, filename := s.locate(r.URL.Path)
	if col == nil || filename != "" {
		http.NotFound(w, r)
		return
	}
	if col.Broken {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusInternalServerError)
		return
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil || doc.Root() == nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	switch strings.ToLower(doc.Root().Tag) {
	case "calendar-query":
		s.reportCalendarQuery(w, col, doc.Root())
	case "addressbook-query":
		s.reportAddressbookQuery(w, col, doc.Root())
	default:
		http.Error(w, "Unsupported report", http.StatusBadRequest)
	}
}

func (s *Server) reportCalendarQuery(w http.ResponseWriter, col *Collection, root *etree.Element) {
	compType := "VEVENT"
	var filters []propFilterSpec
	var rangeStart, rangeEnd time.Time

	if filter := davxml.FindChild(root, "filter"); filter != nil {
		if outer := davxml.FindChild(filter, "comp-filter"); outer != nil {
			if inner := davxml.FindChild(outer, "comp-filter"); inner != nil {
				if name := inner.SelectAttrValue("name", ""); name != "" {
					compType = name
				}
				if tr := davxml.FindChild(inner, "time-range"); tr != nil {
					rangeStart = parseRangeAttr(tr.SelectAttrValue("start", ""))
					rangeEnd = parseRangeAttr(tr.SelectAttrValue("end", ""))
				}
				filters = collectPropFilters(inner)
			}
		}
	}

	writeMultistatus(w, func(msRoot *etree.Element) {
		for _, name := range s.sortedObjects(col) {
			obj := col.objects[name]
			rec, err := vobject.Parse(obj.data)
			if err != nil {
				continue
			}
			comp, ok := rec.Component(compType)
			if !ok {
				continue
			}
			// CalDAV text-match is substring semantics
			if !matchPropFilters(comp, filters, true) {
				continue
			}
			if !inRange(comp, rangeStart, rangeEnd) {
				continue
			}
			addResponse(msRoot, col.Href+name, func(prop *etree.Element) {
				prop.CreateElement("D:getetag").SetText(obj.etag)
				prop.CreateElement("C:calendar-data").SetText(obj.data)
			})
		}
	})
}

func (s *Server) reportAddressbookQuery(w http.ResponseWriter, col *Collection, root *etree.Element) {
	var filters []propFilterSpec
	if filter := davxml.FindChild(root, "filter"); filter != nil {
		filters = collectPropFilters(filter)
	}

	writeMultistatus(w, func(msRoot *etree.Element) {
		for _, name := range s.sortedObjects(col) {
			obj := col.objects[name]
			rec, err := vobject.Parse(obj.data)
			if err != nil {
				continue
			}
			card, ok := rec.Component("VCARD")
			if !ok {
				continue
			}
			if !matchPropFilters(card, filters, false) {
				continue
			}
			addResponse(msRoot, col.Href+name, func(prop *etree.Element) {
				prop.CreateElement("D:getetag").SetText(obj.etag)
				prop.CreateElement("CR:address-data").SetText(obj.data)
			})
		}
	})
}

func collectPropFilters(parent *etree.Element) []propFilterSpec {
	var out []propFilterSpec
	for _, pf := range davxml.ChildrenByTag(parent, "prop-filter") {
		spec := propFilterSpec{name: pf.SelectAttrValue("name", "")}
		if tm := davxml.FindChild(pf, "text-match"); tm != nil {
			spec.hasMatch = true
			spec.text = tm.Text()
			spec.collation = tm.SelectAttrValue("collation", "")
			spec.matchType = tm.SelectAttrValue("match-type", "")
			spec.negate = strings.EqualFold(tm.SelectAttrValue("negate-condition", ""), "yes")
		}
		out = append(out, spec)
	}
	return out
}

func matchPropFilters(comp *vobject.Component, filters []propFilterSpec, substring bool) bool {
	for _, f := range filters {
		val, _ := comp.Get(f.name)
		if !f.hasMatch {
			if val == "" {
				return false
			}
			continue
		}
		matched := textMatches(val, f, substring)
		if f.negate {
			matched = !matched
		}
		if !matched {
			return false
		}
	}
	return true
}

func textMatches(val string, f propFilterSpec, substring bool) bool {
	target := f.text
	if f.collation != "i;octet" {
		val = strings.ToUpper(val)
		target = strings.ToUpper(target)
	}
	if f.matchType == "equals" || !substring {
		return val == target
	}
	return strings.Contains(val, target)
}

func inRange(comp *vobject.Component, start, end time.Time) bool {
	if start.IsZero() && end.IsZero() {
		return true
	}
	s0, dateOnly := parseStamp(comp, "DTSTART")
	if s0.IsZero() {
		return true
	}
	e0, _ := parseStamp(comp, "DTEND")
	if e0.IsZero() {
		if dateOnly {
			e0 = s0.AddDate(0, 0, 1)
		} else {
			e0 = s0
		}
	}
	if !end.IsZero() && !s0.Before(end) {
		return false
	}
	if !start.IsZero() && e0.Before(start) {
		return false
	}
	return true
}

func parseStamp(comp *vobject.Component, field string) (time.Time, bool) {
	v, ok := comp.Get(field)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range []string{"20060102T150405Z", "20060102T150405"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, false
		}
	}
	if t, err := time.Parse("20060102", v); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func parseRangeAttr(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse("20060102T150405Z", v)
	if err != nil {
		return time.Time{}
	}
	return t
}
