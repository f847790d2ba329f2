package davclient

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmaehler/davbox/internal/davtest"
	"github.com/tmaehler/davbox/vobject"
)

func newFixture(t *testing.T) (*Client, *davtest.Server) {
	t.Helper()
	fix := davtest.New()
	srv := httptest.NewServer(fix.Handler())
	t.Cleanup(srv.Close)

	c, err := New(Options{ServerURL: srv.URL, Username: "jdoe", Password: "secret"})
	require.NoError(t, err)
	return c, fix
}

func crlf(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

// todoBody builds a VTODO fixture. An empty summary leaves the SUMMARY
// line out so callers can supply their own via extra.
func todoBody(uid, summary string, extra ...string) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//fixture//EN",
		"BEGIN:VTODO",
		"UID:" + uid,
		"DTSTAMP:20250301T090000Z",
	}
	if summary != "" {
		lines = append(lines, "SUMMARY:"+summary)
	}
	lines = append(lines, extra...)
	lines = append(lines, "END:VTODO", "END:VCALENDAR")
	return crlf(lines...)
}

func eventBody(uid, summary string, extra ...string) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//fixture//EN",
		"BEGIN:VEVENT",
		"UID:" + uid,
		"DTSTAMP:20250301T090000Z",
	}
	if summary != "" {
		lines = append(lines, "SUMMARY:"+summary)
	}
	lines = append(lines, extra...)
	lines = append(lines, "END:VEVENT", "END:VCALENDAR")
	return crlf(lines...)
}

func cardBody(uid, fn string, extra ...string) string {
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"UID:" + uid,
		"FN:" + fn,
	}
	lines = append(lines, extra...)
	lines = append(lines, "END:VCARD")
	return crlf(lines...)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(Options{})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = New(Options{ServerURL: "ftp://dav.example.com"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestFindCollections(t *testing.T) {
	c, fix := newFixture(t)
	fix.AddCalendar("work", "Work", "VEVENT")
	fix.AddCalendar("chores", "Chores", "VTODO")
	fix.AddCalendar("mystery", "Mystery")
	fix.AddAddressbook("people", "People")

	// Mystery declares no component set, so its capabilities are unknown
	// and no filtered listing returns it.
	events, err := c.FindCollections(context.Background(), CapEvents)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Work", events[0].DisplayName)
	assert.Equal(t, "/calendars/jdoe/work/", events[0].Href)
	assert.False(t, events[0].Capabilities.Has(CapTasks))

	tasks, err := c.FindCollections(context.Background(), CapTasks)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Chores", tasks[0].DisplayName)

	books, err := c.FindCollections(context.Background(), CapContacts)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "People", books[0].DisplayName)
	assert.False(t, books[0].Capabilities.Has(CapEvents))
}

func TestResolveCollection(t *testing.T) {
	c, fix := newFixture(t)
	fix.AddCalendar("work", "Work", "VTODO")
	fix.AddCalendar("chores", "Chores", "VTODO")

	ref, err := c.ResolveCollection(context.Background(), CapTasks, "Chores")
	require.NoError(t, err)
	assert.Equal(t, "/calendars/jdoe/chores/", ref.Href)

	ref, err = c.ResolveCollection(context.Background(), CapTasks, "")
	require.NoError(t, err)
	assert.Equal(t, "Work", ref.DisplayName, "unnamed resolve picks the first collection in server order")

	_, err = c.ResolveCollection(context.Background(), CapTasks, "Nope")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.ResolveCollection(context.Background(), CapContacts, "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocateByUIDExactMatch(t *testing.T) {
	c, fix := newFixture(t)
	cal := fix.AddCalendar("tasks", "Tasks", "VTODO")
	fix.Seed(cal, "a.ics", todoBody("task-1", "First"))
	fix.Seed(cal, "b.ics", todoBody("task-10", "Tenth"))

	// The server matches UID as a substring, so it returns both bodies
	// here; only the exact octet match may win.
	located, failures, err := c.LocateByUID(context.Background(), CapTasks, "", "task-1")
	require.NoError(t, err)
	require.Empty(t, failures)
	require.NotNil(t, located)
	assert.Equal(t, "/calendars/jdoe/tasks/a.ics", located.Href)
	assert.Contains(t, string(located.RawBody), "SUMMARY:First")

	wantETag, ok := fix.ObjectETag(cal, "a.ics")
	require.True(t, ok)
	assert.Equal(t, wantETag, located.ETag.OrElse(""))

	located, _, err = c.LocateByUID(context.Background(), CapTasks, "", "task-2")
	require.NoError(t, err)
	assert.Nil(t, located)
}

func TestLocateByUIDScanContinues(t *testing.T) {
	c, fix := newFixture(t)
	broken := fix.AddCalendar("broken", "Broken", "VTODO")
	broken.Broken = true
	good := fix.AddCalendar("good", "Good", "VTODO")
	fix.Seed(good, "t.ics", todoBody("task-7", "Seven"))

	located, failures, err := c.LocateByUID(context.Background(), CapTasks, "", "task-7")
	require.NoError(t, err)
	require.NotNil(t, located)
	assert.Equal(t, "/calendars/jdoe/good/t.ics", located.Href)

	require.Len(t, failures, 1)
	assert.Equal(t, "Broken", failures[0].Collection.DisplayName)
	assert.Error(t, failures[0].Err)
	assert.Contains(t, failures[0].String(), "Broken")
}

func TestLocateByUIDNamedCollectionFailsFast(t *testing.T) {
	c, fix := newFixture(t)
	broken := fix.AddCalendar("broken", "Broken", "VTODO")
	broken.Broken = true

	located, failures, err := c.LocateByUID(context.Background(), CapTasks, "Broken", "task-7")
	require.Error(t, err)
	assert.Nil(t, located)
	assert.Empty(t, failures)
}

func TestCreateResourceConflict(t *testing.T) {
	c, fix := newFixture(t)
	fix.AddCalendar("tasks", "Tasks", "VTODO")
	ref := CollectionRef{Href: "/calendars/jdoe/tasks/"}
	body := []byte(todoBody("task-1", "First"))

	href, etag, err := c.CreateResource(context.Background(), ref, "t.ics", ContentTypeCalendar, body)
	require.NoError(t, err)
	assert.Equal(t, "/calendars/jdoe/tasks/t.ics", href)
	assert.NotEmpty(t, etag)

	_, _, err = c.CreateResource(context.Background(), ref, "t.ics", ContentTypeCalendar, body)
	require.ErrorIs(t, err, ErrConflict)
}

func TestUpdateResourceStaleETag(t *testing.T) {
	c, fix := newFixture(t)
	cal := fix.AddCalendar("tasks", "Tasks", "VTODO")
	fix.Seed(cal, "t.ics", todoBody("task-1", "First"))

	located, _, err := c.LocateByUID(context.Background(), CapTasks, "", "task-1")
	require.NoError(t, err)
	require.NotNil(t, located)

	// Another writer replaces the object between our read and write.
	fix.Seed(cal, "t.ics", todoBody("task-1", "Changed elsewhere"))

	mut, err := c.NewMutation(*located, ContentTypeCalendar)
	require.NoError(t, err)
	require.NoError(t, mut.Apply(vobject.FieldEdit{Name: "STATUS", Value: "COMPLETED", Set: true}))

	_, err = mut.Commit(context.Background())
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, StateConflict, mut.State())

	// The concurrent write survives untouched.
	body, ok := fix.ObjectBody(cal, "t.ics")
	require.True(t, ok)
	assert.Contains(t, body, "SUMMARY:Changed elsewhere")
}

func TestMutationLifecycle(t *testing.T) {
	c, fix := newFixture(t)
	cal := fix.AddCalendar("tasks", "Tasks", "VTODO")
	fix.Seed(cal, "t.ics", todoBody("task-1", "First"))

	located, _, err := c.LocateByUID(context.Background(), CapTasks, "", "task-1")
	require.NoError(t, err)
	require.NotNil(t, located)

	mut, err := c.NewMutation(*located, ContentTypeCalendar)
	require.NoError(t, err)
	assert.Equal(t, StateLocated, mut.State())

	_, err = mut.Commit(context.Background())
	require.ErrorIs(t, err, ErrInvalidInput, "commit before apply")

	require.NoError(t, mut.Apply(vobject.FieldEdit{Name: "STATUS", Value: "COMPLETED", Set: true}))
	assert.Equal(t, StateMutated, mut.State())

	etag, err := mut.Commit(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, etag)
	assert.Equal(t, StateWritten, mut.State())
	assert.NotEqual(t, located.ETag.OrElse(""), etag)

	body, ok := fix.ObjectBody(cal, "t.ics")
	require.True(t, ok)
	assert.Contains(t, body, "STATUS:COMPLETED\r\n")

	_, err = mut.Commit(context.Background())
	require.ErrorIs(t, err, ErrInvalidInput, "commit is not repeatable")
}

func TestUpdateResourceRequiresETag(t *testing.T) {
	c, _ := newFixture(t)
	_, err := c.UpdateResource(context.Background(), "/calendars/jdoe/tasks/t.ics", "", ContentTypeCalendar, []byte("x"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteResourceTolerates404(t *testing.T) {
	c, fix := newFixture(t)
	cal := fix.AddCalendar("tasks", "Tasks", "VTODO")
	fix.Seed(cal, "t.ics", todoBody("task-1", "First"))

	require.NoError(t, c.DeleteResource(context.Background(), "/calendars/jdoe/tasks/t.ics"))
	assert.Equal(t, 0, fix.ObjectCount(cal))

	require.NoError(t, c.DeleteResource(context.Background(), "/calendars/jdoe/tasks/t.ics"))
}

func TestInsecureTLS(t *testing.T) {
	fix := davtest.New()
	fix.AddCalendar("work", "Work", "VEVENT")
	srv := httptest.NewTLSServer(fix.Handler())
	t.Cleanup(srv.Close)

	c, err := New(Options{ServerURL: srv.URL, Insecure: true})
	require.NoError(t, err)

	refs, err := c.FindCollections(context.Background(), CapEvents)
	require.NoError(t, err)
	assert.Len(t, refs, 1)
}
