package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

const (
	cellTimeLayout = "2006-01-02 15:04"
	cellDateLayout = "2006-01-02"
)

var flagTimeLayouts = []string{time.RFC3339, cellTimeLayout, cellDateLayout}

// parseTimeFlag accepts RFC 3339, "2006-01-02 15:04" and bare dates.
// Values without a zone are taken as UTC.
func parseTimeFlag(value string) (time.Time, error) {
	for _, layout := range flagTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q (want 2006-01-02, 2006-01-02 15:04 or RFC 3339)", value)
}

func formatTimeCell(t time.Time, allDay bool) string {
	if t.IsZero() {
		return ""
	}
	if allDay {
		return t.UTC().Format(cellDateLayout)
	}
	return t.UTC().Format(cellTimeLayout)
}

// changedString lifts a flag into an Option only when the user set it,
// so edits can distinguish "clear this field" from "leave it alone".
func changedString(cmd *cobra.Command, name, value string) mo.Option[string] {
	if cmd.Flags().Changed(name) {
		return mo.Some(value)
	}
	return mo.None[string]()
}

func changedInt(cmd *cobra.Command, name string, value int) mo.Option[int] {
	if cmd.Flags().Changed(name) {
		return mo.Some(value)
	}
	return mo.None[int]()
}

// pickCollection prefers the flag over the configured default. Both may
// be empty, which lets discovery fall back to the first collection found.
func pickCollection(flag, configured string) string {
	if flag != "" {
		return flag
	}
	return configured
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}
