package davclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/samber/mo"
	"github.com/tmaehler/davbox/internal/davxml"
)

const (
	stampLayout = "20060102T150405Z"
	dateLayout  = "20060102"
)

// calendarObject pairs one parsed calendar resource with its address and
// version metadata.
type calendarObject struct {
	cal  *ical.Calendar
	href string
	etag mo.Option[string]
}

// queryCalendarObjects runs a REPORT against one collection and parses
// every returned body. A body that fails to parse is skipped with a log
// line instead of failing the whole listing.
func (c *Client) queryCalendarObjects(ctx context.Context, colHref string, query any) ([]calendarObject, error) {
	doc, err := c.http.DoREPORT(ctx, colHref, 1, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute calendar query: %w", err)
	}
	entries, err := davxml.DecodeMultistatus(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var objects []calendarObject
	for _, e := range entries {
		body := e.PropText("calendar-data")
		if body == "" {
			continue
		}
		cal, err := ical.NewDecoder(strings.NewReader(body)).Decode()
		if err != nil {
			c.logger.Warn("skipping unparsable calendar object", "href", e.Href, "error", err)
			continue
		}
		objects = append(objects, calendarObject{cal: cal, href: e.Href, etag: e.ETag})
	}
	return objects, nil
}

// parseCalTime parses an iCalendar date or date-time value. The second
// return reports whether the value was date-only.
func parseCalTime(value string) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{stampLayout, "20060102T150405", dateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, layout == dateLayout, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid date-time format: %s", value)
}

func formatUTC(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

// formatLike renders t in the same shape as an existing property value,
// so rewriting a date-only DTSTART keeps its VALUE=DATE parameter
// truthful.
func formatLike(existing string, t time.Time) string {
	if len(strings.TrimSpace(existing)) == len(dateLayout) {
		return t.Format(dateLayout)
	}
	return formatUTC(t)
}

func propText(props ical.Props, name string) string {
	text, err := props.Text(name)
	if err != nil {
		if prop := props.Get(name); prop != nil {
			return prop.Value
		}
		return ""
	}
	return text
}
