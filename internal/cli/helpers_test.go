package cli

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmaehler/davbox/internal/config"
)

func TestParseTimeFlag(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"date only", "2026-03-05", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"date and time", "2026-03-05 09:30", time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC), true},
		{"rfc3339", "2026-03-05T09:30:00Z", time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC), true},
		{"rfc3339 with offset", "2026-03-05T10:30:00+01:00", time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC), true},
		{"garbage", "next tuesday", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimeFlag(tt.input)
			if !tt.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestFormatTimeCell(t *testing.T) {
	assert.Equal(t, "", formatTimeCell(time.Time{}, false))
	assert.Equal(t, "2026-03-05", formatTimeCell(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), true))
	assert.Equal(t, "2026-03-05 09:30", formatTimeCell(time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC), false))

	// Zoned values render in UTC so columns line up regardless of locale.
	zoned := time.Date(2026, 3, 5, 10, 30, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "2026-03-05 09:30", formatTimeCell(zoned, false))
}

func TestChangedFlags(t *testing.T) {
	var summary string
	var priority int
	cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.Flags().StringVar(&summary, "summary", "", "")
	cmd.Flags().IntVar(&priority, "priority", 0, "")
	cmd.SetArgs([]string{"--summary", ""})
	require.NoError(t, cmd.Execute())

	// Explicitly set to empty: the option carries the clearing.
	v, ok := changedString(cmd, "summary", summary).Get()
	require.True(t, ok)
	assert.Equal(t, "", v)

	assert.True(t, changedInt(cmd, "priority", priority).IsAbsent())
}

func TestPickCollection(t *testing.T) {
	assert.Equal(t, "Work", pickCollection("Work", "Personal"))
	assert.Equal(t, "Personal", pickCollection("", "Personal"))
	assert.Equal(t, "", pickCollection("", ""))
}

func TestPriorityCell(t *testing.T) {
	assert.Equal(t, "-", priorityCell(0))
	assert.Equal(t, "5", priorityCell(5))
}

func TestParseNoteID(t *testing.T) {
	id, err := parseNoteID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseNoteID("abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abc")
}

func TestRemoteFilePath(t *testing.T) {
	cfg := &config.Config{URL: "https://cloud.example.net/remote.php/dav", Username: "jdoe"}

	got, err := remoteFilePath(cfg, "notes/todo.txt")
	require.NoError(t, err)
	assert.Equal(t, "/remote.php/dav/files/jdoe/notes/todo.txt", got)

	got, err = remoteFilePath(cfg, "report 2026.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/remote.php/dav/files/jdoe/report%202026.pdf", got)

	got, err = remoteFilePath(cfg, "/remote.php/dav/files/someone-else/x.txt")
	require.NoError(t, err)
	assert.Equal(t, "/remote.php/dav/files/someone-else/x.txt", got)

	bare := &config.Config{URL: "http://127.0.0.1:8080", Username: "jdoe"}
	got, err = remoteFilePath(bare, "x.txt")
	require.NoError(t, err)
	assert.Equal(t, "/files/jdoe/x.txt", got)
}

func TestCommandTree(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"calendars", "addressbooks", "events", "tasks", "contacts", "notes", "files", "config"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
