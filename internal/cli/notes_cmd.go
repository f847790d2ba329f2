package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Work with server-side notes",
}

var (
	notesAddTitle    string
	notesAddContent  string
	notesAddCategory string

	notesEditTitle    string
	notesEditContent  string
	notesEditCategory string
	notesEditFavorite bool
)

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nc, err := requireNotes()
		if err != nil {
			return err
		}
		all, err := nc.List(cmd.Context())
		if err != nil {
			return err
		}
		w := newTable(cmd.OutOrStdout())
		fmt.Fprintln(w, "ID\tMODIFIED\tCATEGORY\tTITLE")
		for _, n := range all {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
				n.ID, formatTimeCell(time.Unix(n.Modified, 0), false), n.Category, n.Title)
		}
		return w.Flush()
	},
}

var notesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nc, err := requireNotes()
		if err != nil {
			return err
		}
		note, err := nc.Create(cmd.Context(), notesAddTitle, notesAddContent, notesAddCategory)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created note %d\n", note.ID)
		return nil
	},
}

var notesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}
		nc, err := requireNotes()
		if err != nil {
			return err
		}
		note, err := nc.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Title:    %s\n", note.Title)
		if note.Category != "" {
			fmt.Fprintf(out, "Category: %s\n", note.Category)
		}
		fmt.Fprintf(out, "Modified: %s\n\n", formatTimeCell(time.Unix(note.Modified, 0), false))
		fmt.Fprintln(out, note.Content)
		return nil
	},
}

var notesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a note",
	Long: `Edit a note. The note is fetched first, so concurrent edits on the
server are detected and reported instead of being overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}
		nc, err := requireNotes()
		if err != nil {
			return err
		}
		note, err := nc.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("title") {
			note.Title = notesEditTitle
		}
		if cmd.Flags().Changed("content") {
			note.Content = notesEditContent
		}
		if cmd.Flags().Changed("category") {
			note.Category = notesEditCategory
		}
		if cmd.Flags().Changed("favorite") {
			note.Favorite = notesEditFavorite
		}
		if _, err := nc.Update(cmd.Context(), note); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated note %d\n", id)
		return nil
	},
}

var notesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}
		nc, err := requireNotes()
		if err != nil {
			return err
		}
		if err := nc.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted note %d\n", id)
		return nil
	},
}

func parseNoteID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("note id must be a number, got %q", arg)
	}
	return id, nil
}

func init() {
	notesAddCmd.Flags().StringVar(&notesAddTitle, "title", "", "Note title")
	notesAddCmd.Flags().StringVar(&notesAddContent, "content", "", "Note body")
	notesAddCmd.Flags().StringVar(&notesAddCategory, "category", "", "Note category")

	notesEditCmd.Flags().StringVar(&notesEditTitle, "title", "", "New title")
	notesEditCmd.Flags().StringVar(&notesEditContent, "content", "", "New body")
	notesEditCmd.Flags().StringVar(&notesEditCategory, "category", "", "New category")
	notesEditCmd.Flags().BoolVar(&notesEditFavorite, "favorite", false, "Mark or unmark as favorite")

	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesAddCmd)
	notesCmd.AddCommand(notesShowCmd)
	notesCmd.AddCommand(notesEditCmd)
	notesCmd.AddCommand(notesRmCmd)
	rootCmd.AddCommand(notesCmd)
}
