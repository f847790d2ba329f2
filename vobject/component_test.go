package vobject

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, in string) *Record {
	t.Helper()
	rec, err := Parse(in)
	require.NoError(t, err)
	return rec
}

func eventFixture() string {
	return crlf(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Example//EN",
		"BEGIN:VEVENT",
		"UID:e-1",
		"DTSTAMP:20260101T000000Z",
		"SUMMARY;LANGUAGE=en:Old title",
		"BEGIN:VALARM",
		"ACTION:DISPLAY",
		"TRIGGER:-PT15M",
		"END:VALARM",
		"END:VEVENT",
		"END:VCALENDAR",
	)
}

func TestGetScopedToComponent(t *testing.T) {
	rec := mustParse(t, eventFixture())
	event, ok := rec.Component("VEVENT")
	require.True(t, ok)

	v, ok := event.Get("summary")
	require.True(t, ok)
	assert.Equal(t, "Old title", v)

	_, ok = event.Get("ACTION")
	assert.False(t, ok, "nested alarm fields must not leak into the event view")

	cal, ok := rec.Component("VCALENDAR")
	require.True(t, ok)
	_, ok = cal.Get("SUMMARY")
	assert.False(t, ok, "event fields must not leak into the calendar view")
	v, ok = cal.Get("VERSION")
	require.True(t, ok)
	assert.Equal(t, "2.0", v)
}

func TestGetAll(t *testing.T) {
	rec := mustParse(t, crlf(
		"BEGIN:VCARD",
		"VERSION:3.0",
		"TEL;TYPE=CELL:+1 555 0100",
		"FN:John Doe",
		"TEL;TYPE=HOME:+1 555 0101",
		"TEL:+1 555 0102",
		"END:VCARD",
	))
	card, _ := rec.Component("VCARD")
	assert.Equal(t, []string{"+1 555 0100", "+1 555 0101", "+1 555 0102"}, card.GetAll("TEL"))
	assert.Nil(t, card.GetAll("EMAIL"))
}

func TestUpsertReplacesFirstOccurrence(t *testing.T) {
	rec := mustParse(t, eventFixture())
	event, _ := rec.Component("VEVENT")
	event.Upsert("SUMMARY", "New title")

	want := crlf(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Example//EN",
		"BEGIN:VEVENT",
		"UID:e-1",
		"DTSTAMP:20260101T000000Z",
		"SUMMARY;LANGUAGE=en:New title",
		"BEGIN:VALARM",
		"ACTION:DISPLAY",
		"TRIGGER:-PT15M",
		"END:VALARM",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	if diff := cmp.Diff(want, rec.String()); diff != "" {
		t.Errorf("upsert result mismatch (-want +got):\n%s", diff)
	}
}

func TestUpsertInsertsBeforeEnd(t *testing.T) {
	rec := mustParse(t, eventFixture())
	event, _ := rec.Component("VEVENT")
	event.Upsert("STATUS", "CONFIRMED")

	want := crlf(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Example//EN",
		"BEGIN:VEVENT",
		"UID:e-1",
		"DTSTAMP:20260101T000000Z",
		"SUMMARY;LANGUAGE=en:Old title",
		"BEGIN:VALARM",
		"ACTION:DISPLAY",
		"TRIGGER:-PT15M",
		"END:VALARM",
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	if diff := cmp.Diff(want, rec.String()); diff != "" {
		t.Errorf("upsert result mismatch (-want +got):\n%s", diff)
	}
}

func TestUpsertIdempotent(t *testing.T) {
	rec := mustParse(t, eventFixture())
	event, _ := rec.Component("VEVENT")

	event.Upsert("STATUS", "CONFIRMED")
	event.Upsert("SUMMARY", "New title")
	first := rec.String()

	event.Upsert("STATUS", "CONFIRMED")
	event.Upsert("SUMMARY", "New title")
	assert.Equal(t, first, rec.String())

	reparsed := mustParse(t, first)
	again, _ := reparsed.Component("VEVENT")
	again.Upsert("STATUS", "CONFIRMED")
	again.Upsert("SUMMARY", "New title")
	assert.Equal(t, first, reparsed.String())
}

func TestUpsertSameValueKeepsFoldedBytes(t *testing.T) {
	in := crlf(
		"BEGIN:VCARD",
		"VERSION:3.0",
		"NOTE:this is a lo",
		" ng note",
		"END:VCARD",
	)
	rec := mustParse(t, in)
	card, _ := rec.Component("VCARD")
	card.Upsert("NOTE", "this is a long note")
	assert.Equal(t, in, rec.String(), "matching value must leave the folded line untouched")
}

func TestApplyEdits(t *testing.T) {
	rec := mustParse(t, eventFixture())
	event, _ := rec.Component("VEVENT")
	event.ApplyEdits(
		SetField("SUMMARY", "Edited"),
		FieldEdit{Name: "DTSTAMP", Value: "ignored", Set: false},
		SetField("LOCATION", "Room 4"),
	)

	v, _ := event.Get("SUMMARY")
	assert.Equal(t, "Edited", v)
	v, _ = event.Get("DTSTAMP")
	assert.Equal(t, "20260101T000000Z", v, "unset edit must not touch the field")
	v, _ = event.Get("LOCATION")
	assert.Equal(t, "Room 4", v)
}

func TestNewCalendarObject(t *testing.T) {
	rec, todo := NewCalendarObject("vtodo")
	require.Equal(t, "VTODO", todo.Type())
	todo.Append("UID", "t-1")
	todo.Append("SUMMARY", "Buy groceries")

	want := crlf(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//github.com/tmaehler/davbox//NONSGML v1.0//EN",
		"BEGIN:VTODO",
		"UID:t-1",
		"SUMMARY:Buy groceries",
		"END:VTODO",
		"END:VCALENDAR",
	)
	assert.Equal(t, want, rec.String())
}

func TestNewCard(t *testing.T) {
	rec, card := NewCard()
	card.Append("UID", "c-1")
	card.Append("FN", "John Doe")
	card.AppendWithParams("TEL", "TYPE=CELL", "+1 555 0100")
	card.AppendWithParams("TEL", ";TYPE=HOME", "+1 555 0101")

	want := crlf(
		"BEGIN:VCARD",
		"VERSION:3.0",
		"UID:c-1",
		"FN:John Doe",
		"TEL;TYPE=CELL:+1 555 0100",
		"TEL;TYPE=HOME:+1 555 0101",
		"END:VCARD",
	)
	assert.Equal(t, want, rec.String())
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a,b;c", `a\,b\;c`},
		{`back\slash`, `back\\slash`},
		{"line1\nline2", `line1\nline2`},
		{"cr\r\nlf", `cr\nlf`},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Escape(tc.in))
		if !strings.Contains(tc.in, "\r") {
			assert.Equal(t, tc.in, Unescape(Escape(tc.in)), "escape must round-trip %q", tc.in)
		}
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{`a\,b\;c`, "a,b;c"},
		{`line1\nline2`, "line1\nline2"},
		{`line1\Nline2`, "line1\nline2"},
		{`double\\n`, `double\n`},
		{`trailing\`, `trailing\`},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Unescape(tc.in))
	}
}
