package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/handofflabs/baton/pkg/config"
	"github.com/handofflabs/baton/pkg/presenter"
	"github.com/handofflabs/baton/pkg/tasks"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage the markdown task-tracking file",
	Long: `Read and update the shared task-tracking file. Tasks move strictly
from Backlog to In Progress to Completed; skipping or reversing a step
is rejected.`,
}

func tasksFilePath() (string, error) {
	cfg, err := config.GetConfigFromViper()
	if err != nil {
		return "", err
	}
	if cfg.TasksFile != "" {
		return cfg.TasksFile, nil
	}
	return tasks.DefaultFileName, nil
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks grouped by status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := tasksFilePath()
		if err != nil {
			return err
		}
		file, err := tasks.LoadFile(path)
		if err != nil {
			return err
		}

		statuses := []tasks.Status{tasks.StatusInProgress, tasks.StatusBacklog, tasks.StatusCompleted}
		total := 0
		for _, status := range statuses {
			items := file.ByStatus(status)
			if len(items) == 0 {
				continue
			}
			presenter.Section(string(status))
			for _, t := range items {
				printTask(t)
			}
			total += len(items)
		}
		if total == 0 {
			presenter.Info("No tasks tracked yet")
		}
		return nil
	},
}

func printTask(t tasks.Task) {
	line := t.Title
	if t.Priority != "" && t.Priority != tasks.PriorityNormal {
		line = fmt.Sprintf("[%s] %s", priorityColor(t.Priority).Sprint(t.Priority), t.Title)
	}
	if t.Owner != "" {
		line += fmt.Sprintf(" (@%s)", t.Owner)
	}
	if t.Notes != "" {
		line += fmt.Sprintf(": %s", t.Notes)
	}
	fmt.Printf("- %s\n", line)
}

func priorityColor(p tasks.Priority) *color.Color {
	switch p {
	case tasks.PriorityCritical:
		return color.New(color.FgRed, color.Bold)
	case tasks.PriorityHigh:
		return color.New(color.FgYellow)
	default:
		return color.New(color.Reset)
	}
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task to the backlog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		priorityFlag, err := cmd.Flags().GetString("priority")
		if err != nil {
			return err
		}
		notes, err := cmd.Flags().GetString("notes")
		if err != nil {
			return err
		}

		priority := tasks.Priority(priorityFlag)
		if !tasks.ValidPriority(priority) {
			return errors.Errorf("unknown priority %q, expected low, normal, high, or critical", priorityFlag)
		}

		path, err := tasksFilePath()
		if err != nil {
			return err
		}
		file, err := tasks.LoadFile(path)
		if err != nil {
			return err
		}
		if err := file.Add(args[0], priority, notes); err != nil {
			return err
		}
		if err := file.Save(); err != nil {
			return errors.Wrap(err, "failed to save task file")
		}
		presenter.Success(fmt.Sprintf("Added %q to the backlog", args[0]))
		return nil
	},
}

var tasksStartCmd = &cobra.Command{
	Use:   "start <title>",
	Short: "Move a backlog task to In Progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := cmd.Flags().GetString("owner")
		if err != nil {
			return err
		}

		path, err := tasksFilePath()
		if err != nil {
			return err
		}
		file, err := tasks.LoadFile(path)
		if err != nil {
			return err
		}
		if err := file.Start(args[0], owner); err != nil {
			return describeTaskError(err, args[0])
		}
		if err := file.Save(); err != nil {
			return errors.Wrap(err, "failed to save task file")
		}
		presenter.Success(fmt.Sprintf("Started %q", args[0]))
		return nil
	},
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done <title>",
	Short: "Move an In Progress task to Completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := tasksFilePath()
		if err != nil {
			return err
		}
		file, err := tasks.LoadFile(path)
		if err != nil {
			return err
		}
		if err := file.Complete(args[0]); err != nil {
			return describeTaskError(err, args[0])
		}
		if err := file.Save(); err != nil {
			return errors.Wrap(err, "failed to save task file")
		}
		presenter.Success(fmt.Sprintf("Completed %q", args[0]))
		return nil
	},
}

func describeTaskError(err error, title string) error {
	if errors.Is(err, tasks.ErrTaskNotFound) {
		return errors.Errorf("no task titled %q; run 'baton tasks list' to see what is tracked", title)
	}
	if errors.Is(err, tasks.ErrInvalidTransition) {
		return errors.Wrapf(err, "cannot move %q, tasks advance Backlog -> In Progress -> Completed one step at a time", title)
	}
	return err
}

func init() {
	tasksAddCmd.Flags().String("priority", string(tasks.PriorityNormal), "Task priority (low, normal, high, critical)")
	tasksAddCmd.Flags().String("notes", "", "Free-form notes appended to the task line")
	tasksStartCmd.Flags().String("owner", "", "Acting agent taking the task")
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksStartCmd)
	tasksCmd.AddCommand(tasksDoneCmd)
	rootCmd.AddCommand(tasksCmd)
}
