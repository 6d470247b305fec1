package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/toodledo/internal/batch"
	"github.com/teemow/toodledo/internal/codec"
	"github.com/teemow/toodledo/internal/toodledo"
)

func newTasksCmd(cc *commandContext) *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "List and change tasks",
	}

	tasksCmd.AddCommand(newTasksListCmd(cc))
	tasksCmd.AddCommand(newTasksAddCmd(cc))
	tasksCmd.AddCommand(newTasksCompleteCmd(cc))
	tasksCmd.AddCommand(newTasksDeleteCmd(cc))
	tasksCmd.AddCommand(newTasksDeletedCmd(cc))

	return tasksCmd
}

func newTasksListCmd(cc *commandContext) *cobra.Command {
	var (
		completed     bool
		all           bool
		modifiedAfter string
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (incomplete only by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := toodledo.TaskQuery{
				Fields:     []string{"folder", "context", "tag", "duedate", "priority", "status", "star"},
				Completion: toodledo.CompletionIncomplete,
			}
			switch {
			case all:
				query.Completion = toodledo.CompletionAny
			case completed:
				query.Completion = toodledo.CompletionComplete
			}
			if modifiedAfter != "" {
				d, err := codec.ParseDate(modifiedAfter)
				if err != nil {
					return fmt.Errorf("--modified-after: %w", err)
				}
				query.ModifiedAfter = time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.Local)
			}

			client, err := cc.client(cmd)
			if err != nil {
				return err
			}
			tasks, err := client.GetTasks(cmd.Context(), query)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, tasks)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTasks(tasks))
			fmt.Fprintf(cmd.OutOrStdout(), "%d tasks\n", len(tasks))
			return nil
		},
	}

	cmd.Flags().BoolVar(&completed, "completed", false, "List completed tasks")
	cmd.Flags().BoolVar(&all, "all", false, "List completed and incomplete tasks")
	cmd.Flags().StringVar(&modifiedAfter, "modified-after", "", "Only tasks modified after this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	cmd.MarkFlagsMutuallyExclusive("completed", "all")
	return cmd
}

func renderTasks(tasks []toodledo.Task) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		priority := ""
		if p, ok := t.Priority.Get(); ok {
			priority = p.String()
		}
		status := ""
		if s, ok := t.Status.Get(); ok && s != toodledo.StatusNone {
			status = s.String()
		}
		title := t.Title.Value()
		if t.Star.Value() {
			title = "* " + title
		}
		rows = append(rows, []string{
			formatOptID(t.ID),
			title,
			formatOptDate(t.DueDate),
			priority,
			status,
			strings.Join(t.Tags.Value(), ", "),
			formatOptDate(t.CompletedDate),
		})
	}
	return renderTable(
		[]string{"ID", "Title", "Due", "Priority", "Status", "Tags", "Completed"},
		rows,
		[]columnAlignment{alignRight},
	)
}

func newTasksAddCmd(cc *commandContext) *cobra.Command {
	var (
		due       string
		priority  string
		status    string
		folderID  int64
		contextID int64
		tags      []string
		note      string
		star      bool
	)

	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Add tasks, one per title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			template := toodledo.Task{}
			if due != "" {
				d, err := codec.ParseDate(due)
				if err != nil {
					return fmt.Errorf("--due: %w", err)
				}
				template.DueDate = toodledo.Some(d)
			}
			if priority != "" {
				p, err := toodledo.ParsePriority(priority)
				if err != nil {
					return err
				}
				template.Priority = toodledo.Some(p)
			}
			if status != "" {
				s, err := toodledo.ParseStatus(status)
				if err != nil {
					return err
				}
				template.Status = toodledo.Some(s)
			}
			if folderID != 0 {
				template.FolderID = toodledo.Some(folderID)
			}
			if contextID != 0 {
				template.ContextID = toodledo.Some(contextID)
			}
			if len(tags) > 0 {
				template.Tags = toodledo.Some(tags)
			}
			if note != "" {
				template.Note = toodledo.Some(note)
			}
			if star {
				template.Star = toodledo.Some(true)
			}

			tasks := make([]toodledo.Task, len(args))
			for i, title := range args {
				tasks[i] = template
				tasks[i].Title = toodledo.Some(title)
			}

			client, err := cc.client(cmd)
			if err != nil {
				return err
			}
			added, err := client.AddTasks(cmd.Context(), tasks)
			if len(added) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), renderTasks(added))
			}
			if err != nil {
				return fmt.Errorf("added %d of %d tasks: %w", len(added), len(tasks), err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority: negative, low, medium, high or top")
	cmd.Flags().StringVar(&status, "status", "", "Status, e.g. next_action, waiting or someday")
	cmd.Flags().Int64Var(&folderID, "folder", 0, "Folder id")
	cmd.Flags().Int64Var(&contextID, "context", 0, "Context id")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().StringVar(&note, "note", "", "Note")
	cmd.Flags().BoolVar(&star, "star", false, "Star the tasks")
	return cmd
}

func newTasksCompleteCmd(cc *commandContext) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "complete ID...",
		Short: "Mark tasks as completed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDArgs(args)
			if err != nil {
				return err
			}
			on := time.Now()
			if date != "" {
				d, err := codec.ParseDate(date)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				on = d.Noon()
			}

			client, err := cc.client(cmd)
			if err != nil {
				return err
			}
			completed, err := client.CompleteTasks(cmd.Context(), ids, on)
			fmt.Fprintf(cmd.OutOrStdout(), "Completed %d of %d tasks\n", len(completed), len(ids))
			return err
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Completion date (YYYY-MM-DD, default: today)")
	return cmd
}

func newTasksDeleteCmd(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDArgs(args)
			if err != nil {
				return err
			}

			client, err := cc.client(cmd)
			if err != nil {
				return err
			}
			err = client.DeleteTasks(cmd.Context(), ids)
			summary := batch.NewSummary(len(ids), nil, err)
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d of %d tasks\n", summary.Applied, summary.Requested)
			return err
		},
	}
}

func newTasksDeletedCmd(cc *commandContext) *cobra.Command {
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "deleted",
		Short: "List tasks deleted recently",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cc.client(cmd)
			if err != nil {
				return err
			}
			deleted, err := client.GetDeletedTasks(cmd.Context(), time.Now().Add(-since))
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(deleted))
			for _, d := range deleted {
				rows = append(rows, []string{formatOptID(d.ID), formatOptTime(d.Deleted)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Deleted"}, rows, []columnAlignment{alignRight}))
			fmt.Fprintf(cmd.OutOrStdout(), "%d deleted tasks\n", len(deleted))
			return nil
		},
	}

	cmd.Flags().DurationVar(&since, "since", 7*24*time.Hour, "How far back to look")
	return cmd
}
