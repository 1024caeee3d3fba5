package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/handofflabs/baton/pkg/journal"
	"github.com/handofflabs/baton/pkg/presenter"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect and decide journaled transfer requests",
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journaled transfer requests, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		status, err := cmd.Flags().GetString("status")
		if err != nil {
			return err
		}

		ws, err := loadWorkspace(ctx)
		if err != nil {
			return err
		}
		store, err := ws.openJournal(ctx)
		if err != nil {
			return errors.Wrap(err, "cannot open transfer journal")
		}
		defer store.Close()

		entries, err := store.List(ctx, status)
		if err != nil {
			return errors.Wrap(err, "failed to list journal entries")
		}

		if len(entries) == 0 {
			presenter.Info("No journal entries")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%s  %s  %s -> %s (%s)  %s\n",
				e.ID,
				statusColor(e.Status).Sprintf("%-8s", e.Status),
				e.Source, e.Target, e.Label,
				e.CreatedAt.Local().Format(time.RFC3339))
		}
		return nil
	},
}

var journalApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a pending transfer request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decideEntry(cmd, args[0], true)
	},
}

var journalDeclineCmd = &cobra.Command{
	Use:   "decline <id>",
	Short: "Decline a pending transfer request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decideEntry(cmd, args[0], false)
	},
}

func decideEntry(cmd *cobra.Command, id string, approve bool) error {
	ctx := cmd.Context()
	ws, err := loadWorkspace(ctx)
	if err != nil {
		return err
	}
	store, err := ws.openJournal(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot open transfer journal")
	}
	defer store.Close()

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		verb := "Approve"
		if !approve {
			verb = "Decline"
		}
		answer := presenter.Prompt(fmt.Sprintf("%s transfer %s?", verb, id), "y", "N")
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			presenter.Info("Aborted")
			return nil
		}
	}

	if approve {
		err = store.Approve(ctx, id)
	} else {
		err = store.Decline(ctx, id)
	}
	if err != nil {
		if errors.Is(err, journal.ErrEntryNotFound) {
			return errors.Errorf("no journal entry with id %q", id)
		}
		if errors.Is(err, journal.ErrNotPending) {
			return errors.Errorf("entry %q has already been decided", id)
		}
		return err
	}

	if approve {
		presenter.Success(fmt.Sprintf("Approved transfer %s", id))
	} else {
		presenter.Success(fmt.Sprintf("Declined transfer %s", id))
	}
	return nil
}

func statusColor(status string) *color.Color {
	switch status {
	case journal.StatusApproved, journal.StatusAuto:
		return color.New(color.FgGreen)
	case journal.StatusDeclined:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}

func init() {
	journalListCmd.Flags().String("status", "", "Filter by status (pending, approved, declined, auto)")
	journalApproveCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	journalDeclineCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalApproveCmd)
	journalCmd.AddCommand(journalDeclineCmd)
	rootCmd.AddCommand(journalCmd)
}
