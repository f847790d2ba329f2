package cli

import (
	"fmt"
	"strconv"

	"github.com/samber/mo"
	"github.com/spf13/cobra"

	"github.com/tmaehler/davbox/davclient"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Work with tasks",
}

var (
	tasksCalendar string

	tasksListAll bool

	tasksAddSummary     string
	tasksAddDue         string
	tasksAddPriority    int
	tasksAddDescription string

	tasksEditSummary     string
	tasksEditDue         string
	tasksEditPriority    int
	tasksEditDescription string
)

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := requireSetup()
		if err != nil {
			return err
		}
		tasks, err := c.ListTasks(cmd.Context(), davclient.ListTasksOptions{
			Calendar:         pickCollection(tasksCalendar, cfg.Calendar),
			IncludeCompleted: tasksListAll,
		})
		if err != nil {
			return err
		}
		w := newTable(cmd.OutOrStdout())
		fmt.Fprintln(w, "DUE\tPRI\tSTATUS\tSUMMARY\tUID")
		for _, task := range tasks {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				formatTimeCell(task.Due, false), priorityCell(task.Priority),
				task.Status, task.Summary, task.UID)
		}
		return w.Flush()
	},
}

var tasksAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a task",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := requireSetup()
		if err != nil {
			return err
		}
		draft := davclient.TaskDraft{
			Calendar:    pickCollection(tasksCalendar, cfg.Calendar),
			Summary:     tasksAddSummary,
			Description: tasksAddDescription,
			Priority:    tasksAddPriority,
		}
		if tasksAddDue != "" {
			if draft.Due, err = parseTimeFlag(tasksAddDue); err != nil {
				return err
			}
		}
		task, err := c.AddTask(cmd.Context(), draft)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created task %s\n", task.UID)
		return nil
	},
}

var tasksCompleteCmd = &cobra.Command{
	Use:   "complete <uid>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := requireSetup()
		if err != nil {
			return err
		}
		if _, err := c.CompleteTask(cmd.Context(), pickCollection(tasksCalendar, cfg.Calendar), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "completed task %s\n", args[0])
		return nil
	},
}

var tasksEditCmd = &cobra.Command{
	Use:   "edit <uid>",
	Short: "Edit a task in place",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := requireSetup()
		if err != nil {
			return err
		}
		ch := davclient.TaskChanges{
			Summary:     changedString(cmd, "summary", tasksEditSummary),
			Description: changedString(cmd, "description", tasksEditDescription),
			Priority:    changedInt(cmd, "priority", tasksEditPriority),
		}
		if cmd.Flags().Changed("due") {
			t, err := parseTimeFlag(tasksEditDue)
			if err != nil {
				return err
			}
			ch.Due = mo.Some(t)
		}
		if _, err := c.EditTask(cmd.Context(), pickCollection(tasksCalendar, cfg.Calendar), args[0], ch); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated task %s\n", args[0])
		return nil
	},
}

var tasksRmCmd = &cobra.Command{
	Use:   "rm <uid>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, err := requireSetup()
		if err != nil {
			return err
		}
		if err := c.DeleteTask(cmd.Context(), pickCollection(tasksCalendar, cfg.Calendar), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted task %s\n", args[0])
		return nil
	},
}

func priorityCell(p int) string {
	if p == 0 {
		return "-"
	}
	return strconv.Itoa(p)
}

func init() {
	tasksCmd.PersistentFlags().StringVar(&tasksCalendar, "calendar", "", "Calendar to use (default from config)")

	tasksListCmd.Flags().BoolVar(&tasksListAll, "all", false, "Include completed tasks")

	tasksAddCmd.Flags().StringVar(&tasksAddSummary, "summary", "", "Task summary")
	tasksAddCmd.Flags().StringVar(&tasksAddDue, "due", "", "Due time")
	tasksAddCmd.Flags().IntVar(&tasksAddPriority, "priority", 0, "Priority 1 (highest) to 9, 0 for none")
	tasksAddCmd.Flags().StringVar(&tasksAddDescription, "description", "", "Task description")
	tasksAddCmd.MarkFlagRequired("summary")

	tasksEditCmd.Flags().StringVar(&tasksEditSummary, "summary", "", "New summary")
	tasksEditCmd.Flags().StringVar(&tasksEditDue, "due", "", "New due time")
	tasksEditCmd.Flags().IntVar(&tasksEditPriority, "priority", 0, "New priority, 0 clears it")
	tasksEditCmd.Flags().StringVar(&tasksEditDescription, "description", "", "New description")

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksCompleteCmd)
	tasksCmd.AddCommand(tasksEditCmd)
	tasksCmd.AddCommand(tasksRmCmd)
	rootCmd.AddCommand(tasksCmd)
}
