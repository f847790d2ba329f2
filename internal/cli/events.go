package cli

import (
	"fmt"

	"github.com/samber/mo"
	"github.com/spf13/cobra"

	"github.com/tmaehler/davbox/davclient"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Work with calendar events",
}

var (
	eventsCalendar string

	eventsListFrom string
	eventsListTo   string

	eventsAddSummary     string
	eventsAddStart       string
	eventsAddEnd         string
	eventsAddAllDay      bool
	eventsAddLocation    string
	eventsAddDescription string

	eventsEditSummary     string
	eventsEditStart       string
	eventsEditEnd         string
	eventsEditLocation    string
	eventsEditDescription string
)

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events, optionally within a time range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := requireSetup()
		if err != nil {
			return err
		}
		opts := davclient.ListEventsOptions{Calendar: pickCollection(eventsCalendar, cfg.Calendar)}
		if eventsListFrom != "" {
			if opts.From, err = parseTimeFlag(eventsListFrom); err != nil {
				return err
			}
		}
		if eventsListTo != "" {
			if opts.To, err = parseTimeFlag(eventsListTo); err != nil {
				return err
			}
		}
		events, err := c.ListEvents(cmd.Context(), opts)
		if err != nil {
			return err
		}
		w := newTable(cmd.OutOrStdout())
		fmt.Fprintln(w, "START\tEND\tSUMMARY\tLOCATION\tUID")
		for _, ev := range events {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				formatTimeCell(ev.Start, ev.AllDay), formatTimeCell(ev.End, ev.AllDay),
				ev.Summary, ev.Location, ev.UID)
		}
		return w.Flush()
	},
}

var eventsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an event",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := requireSetup()
		if err != nil {
			return err
		}
		draft := davclient.EventDraft{
			Calendar:    pickCollection(eventsCalendar, cfg.Calendar),
			Summary:     eventsAddSummary,
			Description: eventsAddDescription,
			Location:    eventsAddLocation,
			AllDay:      eventsAddAllDay,
		}
		if draft.Start, err = parseTimeFlag(eventsAddStart); err != nil {
			return err
		}
		if eventsAddEnd != "" {
			if draft.End, err = parseTimeFlag(eventsAddEnd); err != nil {
				return err
			}
		}
		ev, err := c.AddEvent(cmd.Context(), draft)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created event %s\n", ev.UID)
		return nil
	},
}

var eventsEditCmd = &cobra.Command{
	Use:   "edit <uid>",
	Short: "Edit an event in place",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := requireSetup()
		if err != nil {
			return err
		}
		ch := davclient.EventChanges{
			Summary:     changedString(cmd, "summary", eventsEditSummary),
			Description: changedString(cmd, "description", eventsEditDescription),
			Location:    changedString(cmd, "location", eventsEditLocation),
		}
		if cmd.Flags().Changed("start") {
			t, err := parseTimeFlag(eventsEditStart)
			if err != nil {
				return err
			}
			ch.Start = mo.Some(t)
		}
		if cmd.Flags().Changed("end") {
			t, err := parseTimeFlag(eventsEditEnd)
			if err != nil {
				return err
			}
			ch.End = mo.Some(t)
		}
		if _, err := c.EditEvent(cmd.Context(), pickCollection(eventsCalendar, cfg.Calendar), args[0], ch); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated event %s\n", args[0])
		return nil
	},
}

var eventsRmCmd = &cobra.Command{
	Use:   "rm <uid>",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := requireSetup()
		if err != nil {
			return err
		}
		if err := c.DeleteEvent(cmd.Context(), pickCollection(eventsCalendar, cfg.Calendar), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted event %s\n", args[0])
		return nil
	},
}

func init() {
	eventsCmd.PersistentFlags().StringVar(&eventsCalendar, "calendar", "", "Calendar to use (default from config)")

	eventsListCmd.Flags().StringVar(&eventsListFrom, "from", "", "Only events ending at or after this time")
	eventsListCmd.Flags().StringVar(&eventsListTo, "to", "", "Only events starting before this time")

	eventsAddCmd.Flags().StringVar(&eventsAddSummary, "summary", "", "Event summary")
	eventsAddCmd.Flags().StringVar(&eventsAddStart, "start", "", "Start time")
	eventsAddCmd.Flags().StringVar(&eventsAddEnd, "end", "", "End time")
	eventsAddCmd.Flags().BoolVar(&eventsAddAllDay, "all-day", false, "All-day event")
	eventsAddCmd.Flags().StringVar(&eventsAddLocation, "location", "", "Event location")
	eventsAddCmd.Flags().StringVar(&eventsAddDescription, "description", "", "Event description")
	eventsAddCmd.MarkFlagRequired("summary")
	eventsAddCmd.MarkFlagRequired("start")

	eventsEditCmd.Flags().StringVar(&eventsEditSummary, "summary", "", "New summary")
	eventsEditCmd.Flags().StringVar(&eventsEditStart, "start", "", "New start time")
	eventsEditCmd.Flags().StringVar(&eventsEditEnd, "end", "", "New end time")
	eventsEditCmd.Flags().StringVar(&eventsEditLocation, "location", "", "New location")
	eventsEditCmd.Flags().StringVar(&eventsEditDescription, "description", "", "New description")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsAddCmd)
	eventsCmd.AddCommand(eventsEditCmd)
	eventsCmd.AddCommand(eventsRmCmd)
	rootCmd.AddCommand(eventsCmd)
}
