package davclient

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/tmaehler/davbox/internal/davxml"
	"github.com/tmaehler/davbox/vobject"
)

// Event is the typed view of one VEVENT.
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Href        string
	ETag        string
}

// EventDraft carries the caller input for a new event. Summary and Start
// are required; an empty Calendar picks the first event collection.
type EventDraft struct {
	Calendar    string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
}

// EventChanges names the fields an edit may rewrite. Absent options leave
// the stored field untouched, byte for byte.
type EventChanges struct {
	Summary     mo.Option[string]
	Description mo.Option[string]
	Location    mo.Option[string]
	Start       mo.Option[time.Time]
	End         mo.Option[time.Time]
}

// ListEventsOptions narrows an event listing. Zero From/To bounds are
// open on that side; both zero lists everything.
type ListEventsOptions struct {
	Calendar string
	From     time.Time
	To       time.Time
}

// ListEvents returns the events of one calendar, sorted by start time.
func (c *Client) ListEvents(ctx context.Context, opts ListEventsOptions) ([]Event, error) {
	ref, err := c.ResolveCollection(ctx, CapEvents, opts.Calendar)
	if err != nil {
		return nil, err
	}
	objects, err := c.queryCalendarObjects(ctx, ref.Href, davxml.EventRangeQuery(opts.From, opts.To))
	if err != nil {
		return nil, err
	}

	var events []Event
	for _, obj := range objects {
		for _, ev := range obj.cal.Events() {
			view, err := eventView(ev, obj)
			if err != nil {
				c.logger.Warn("skipping event", "href", obj.href, "error", err)
				continue
			}
			events = append(events, view)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	return events, nil
}

// AddEvent stores a new event and returns its view, including the href
// and etag the server assigned.
func (c *Client) AddEvent(ctx context.Context, draft EventDraft) (Event, error) {
	if draft.Summary == "" {
		return Event{}, fmt.Errorf("%w: event summary is required", ErrInvalidInput)
	}
	if draft.Start.IsZero() {
		return Event{}, fmt.Errorf("%w: event start is required", ErrInvalidInput)
	}
	ref, err := c.ResolveCollection(ctx, CapEvents, draft.Calendar)
	if err != nil {
		return Event{}, err
	}

	rec, comp := vobject.NewCalendarObject("VEVENT")
	uid := uuid.New().String()
	comp.Append("UID", uid)
	comp.Append("DTSTAMP", formatUTC(time.Now()))
	if draft.AllDay {
		comp.AppendWithParams("DTSTART", "VALUE=DATE", draft.Start.Format(dateLayout))
		if !draft.End.IsZero() {
			comp.AppendWithParams("DTEND", "VALUE=DATE", draft.End.Format(dateLayout))
		}
	} else {
		comp.Append("DTSTART", formatUTC(draft.Start))
		if !draft.End.IsZero() {
			comp.Append("DTEND", formatUTC(draft.End))
		}
	}
	comp.Append("SUMMARY", vobject.Escape(draft.Summary))
	if draft.Location != "" {
		comp.Append("LOCATION", vobject.Escape(draft.Location))
	}
	if draft.Description != "" {
		comp.Append("DESCRIPTION", vobject.Escape(draft.Description))
	}

	href, etag, err := c.CreateResource(ctx, ref, uid+".ics", ContentTypeCalendar, []byte(rec.String()))
	if err != nil {
		return Event{}, err
	}
	return Event{
		UID:         uid,
		Summary:     draft.Summary,
		Description: draft.Description,
		Location:    draft.Location,
		Start:       draft.Start,
		End:         draft.End,
		AllDay:      draft.AllDay,
		Href:        href,
		ETag:        etag,
	}, nil
}

// EditEvent rewrites the named fields of the event carrying the UID and
// returns the new etag.
func (c *Client) EditEvent(ctx context.Context, calendar, uid string, ch EventChanges) (string, error) {
	located, failures, err := c.LocateByUID(ctx, CapEvents, calendar, uid)
	if err != nil {
		return "", err
	}
	c.reportScanFailures(failures)
	if located == nil {
		return "", notFoundWithFailures(fmt.Sprintf("no event with UID %q", uid), failures)
	}

	mut, err := c.NewMutation(*located, ContentTypeCalendar)
	if err != nil {
		return "", err
	}
	var edits []vobject.FieldEdit
	if v, ok := ch.Summary.Get(); ok {
		edits = append(edits, vobject.FieldEdit{Name: "SUMMARY", Value: vobject.Escape(v), Set: true})
	}
	if v, ok := ch.Description.Get(); ok {
		edits = append(edits, vobject.FieldEdit{Name: "DESCRIPTION", Value: vobject.Escape(v), Set: true})
	}
	if v, ok := ch.Location.Get(); ok {
		edits = append(edits, vobject.FieldEdit{Name: "LOCATION", Value: vobject.Escape(v), Set: true})
	}
	if v, ok := ch.Start.Get(); ok {
		current, _ := mut.Component().Get("DTSTART")
		edits = append(edits, vobject.FieldEdit{Name: "DTSTART", Value: formatLike(current, v), Set: true})
	}
	if v, ok := ch.End.Get(); ok {
		current, _ := mut.Component().Get("DTEND")
		edits = append(edits, vobject.FieldEdit{Name: "DTEND", Value: formatLike(current, v), Set: true})
	}
	if len(edits) == 0 {
		return "", fmt.Errorf("%w: no changes given", ErrInvalidInput)
	}
	if err := mut.Apply(edits...); err != nil {
		return "", err
	}
	return mut.Commit(ctx)
}

// DeleteEvent removes the event carrying the UID.
func (c *Client) DeleteEvent(ctx context.Context, calendar, uid string) error {
	return c.deleteByUID(ctx, CapEvents, calendar, uid, "event")
}

func eventView(ev ical.Event, obj calendarObject) (Event, error) {
	startProp := ev.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return Event{}, fmt.Errorf("event without DTSTART")
	}
	start, allDay, err := parseCalTime(startProp.Value)
	if err != nil {
		return Event{}, err
	}

	view := Event{
		UID:         propText(ev.Props, ical.PropUID),
		Summary:     propText(ev.Props, ical.PropSummary),
		Description: propText(ev.Props, ical.PropDescription),
		Location:    propText(ev.Props, ical.PropLocation),
		Start:       start,
		AllDay:      allDay,
		Href:        obj.href,
		ETag:        obj.etag.OrElse(""),
	}
	if endProp := ev.Props.Get(ical.PropDateTimeEnd); endProp != nil {
		if end, _, err := parseCalTime(endProp.Value); err == nil {
			view.End = end
		}
	}
	return view, nil
}
