package davxml

import (
	"errors"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, s string) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(s))
	return doc
}

func TestDecodeMultistatus(t *testing.T) {
	doc := parseDoc(t, `<?xml version="1.0"?>
<d:multistatus xmlns:d="DAV:" xmlns:cal="urn:ietf:params:xml:ns:caldav">
  <d:response>
    <d:href>/dav/calendars/user/personal/</d:href>
    <d:propstat>
      <d:prop>
        <d:displayname>Personal</d:displayname>
        <d:resourcetype><d:collection/><cal:calendar/></d:resourcetype>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
    <d:propstat>
      <d:prop><d:getetag/></d:prop>
      <d:status>HTTP/1.1 404 Not Found</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/dav/calendars/user/personal/evt1.ics</d:href>
    <d:propstat>
      <d:prop>
        <d:getetag>"abc123"</d:getetag>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`)

	entries, err := DecodeMultistatus(doc)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	col := entries[0]
	assert.Equal(t, "/dav/calendars/user/personal/", col.Href)
	assert.True(t, col.ETag.IsAbsent(), "404 getetag must not produce an etag")
	assert.Equal(t, "Personal", col.PropText("displayname"))

	rt, ok := col.Prop("resourcetype")
	require.True(t, ok)
	calElem, ok := rt.Find("calendar")
	require.True(t, ok)
	assert.Equal(t, NSCalDAV, calElem.Namespace, "prefix must resolve to the namespace URI")
	_, ok = rt.Find("collection")
	assert.True(t, ok)

	obj := entries[1]
	etag, ok := obj.ETag.Get()
	require.True(t, ok)
	assert.Equal(t, `"abc123"`, etag)
}

func TestDecodeMultistatusSkipsFailedBlocks(t *testing.T) {
	doc := parseDoc(t, `<?xml version="1.0"?>
<d:multistatus xmlns:d="DAV:">
  <d:response>
    <d:href>/dav/a</d:href>
    <d:propstat>
      <d:prop><d:displayname>A</d:displayname></d:prop>
      <d:status>HTTP/1.1 403 Forbidden</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/dav/b</d:href>
    <d:propstat>
      <d:prop><d:displayname>B</d:displayname></d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`)

	entries, err := DecodeMultistatus(doc)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/dav/b", entries[0].Href)
	assert.Equal(t, "B", entries[0].PropText("displayname"))
}

func TestDecodeMultistatusShapes(t *testing.T) {
	single := `<?xml version="1.0"?>
<d:multistatus xmlns:d="DAV:">
  <d:response>
    <d:href>/dav/x</d:href>
    <d:propstat>
      <d:prop><d:displayname>X</d:displayname></d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

	entries, err := DecodeMultistatus(parseDoc(t, single))
	require.NoError(t, err)
	require.Len(t, entries, 1, "a single response block must decode like a one-element list")

	empty := `<?xml version="1.0"?><d:multistatus xmlns:d="DAV:"></d:multistatus>`
	entries, err = DecodeMultistatus(parseDoc(t, empty))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDecodeMultistatusBadRoot(t *testing.T) {
	doc := parseDoc(t, `<?xml version="1.0"?><d:prop xmlns:d="DAV:"/>`)
	_, err := DecodeMultistatus(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadMultistatus))

	_, err = DecodeMultistatus(nil)
	assert.True(t, errors.Is(err, ErrBadMultistatus))

	_, err = DecodeMultistatus(etree.NewDocument())
	assert.True(t, errors.Is(err, ErrBadMultistatus))
}

func TestStatusSuccess(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"HTTP/1.1 200 OK", true},
		{"HTTP/1.1 204 No Content", true},
		{"HTTP/1.1 207 Multi-Status", true},
		{"HTTP/1.1 404 Not Found", false},
		{"HTTP/1.1 403 Forbidden", false},
		{"", false},
		{"garbage", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, statusSuccess(tc.status), "status %q", tc.status)
	}
}
