package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/handofflabs/baton/pkg/journal"
	"github.com/handofflabs/baton/pkg/presenter"
	"github.com/handofflabs/baton/pkg/telemetry"
)

var transferCmd = &cobra.Command{
	Use:   "transfer <source> <label>",
	Short: "Build a transfer request for a declared hand-off edge",
	Long: `Resolve the edge with the given label leaving the source agent,
render its prompt template against the --arg values, and journal the
resulting transfer request.

A request on an edge without send is journaled as pending and must be
approved before a host dispatches it; an edge with send is journaled as
auto. The command itself never dispatches anything.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		source, label := args[0], args[1]

		rawArgs, err := cmd.Flags().GetStringArray("arg")
		if err != nil {
			return err
		}
		payload, err := parsePayload(rawArgs)
		if err != nil {
			return err
		}

		approve, _ := cmd.Flags().GetBool("approve")
		decline, _ := cmd.Flags().GetBool("decline")
		if approve && decline {
			return errors.New("--approve and --decline are mutually exclusive")
		}

		ws, err := loadWorkspace(ctx)
		if err != nil {
			return err
		}
		graph, _, err := ws.buildGraph()
		if err != nil {
			return errors.Wrap(err, "cannot build hand-off graph")
		}

		return telemetry.WithSpan(ctx, "transfer.request", func(ctx context.Context) error {
			telemetry.SetAttributes(ctx,
				attribute.String("source", source),
				attribute.String("label", label),
			)

			req, err := graph.Transfer(ctx, source, label, payload)
			if err != nil {
				return err
			}

			store, err := ws.openJournal(ctx)
			if err != nil {
				return errors.Wrap(err, "cannot open transfer journal")
			}
			defer store.Close()

			entry, err := store.Record(ctx, req)
			if err != nil {
				return errors.Wrap(err, "failed to journal transfer request")
			}

			if (approve || decline) && req.Send {
				presenter.Warning("Edge is marked send; the request was journaled as auto and needs no decision")
			} else if approve || decline {
				if approve {
					err = store.Approve(ctx, entry.ID)
				} else {
					err = store.Decline(ctx, entry.ID)
				}
				if err != nil {
					return errors.Wrap(err, "failed to decide transfer request")
				}
				refreshed, err := store.Get(ctx, entry.ID)
				if err != nil {
					return err
				}
				entry = refreshed
			}

			presenter.Section(fmt.Sprintf("Transfer %s", req.ID))
			fmt.Printf("From:   %s\n", req.Source)
			fmt.Printf("To:     %s\n", req.Target)
			fmt.Printf("Label:  %s\n", req.Label)
			fmt.Printf("Status: %s\n", entry.Status)
			fmt.Println()
			fmt.Println(req.Prompt)

			if entry.Status == journal.StatusPending {
				presenter.Warning(fmt.Sprintf("Awaiting approval; run 'baton journal approve %s' to approve", req.ID))
			}
			return nil
		})
	},
}

// parsePayload turns repeated --arg key=value flags into the template payload.
func parsePayload(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	payload := make(map[string]string, len(raw))
	for _, kv := range raw {
		key, value, found := strings.Cut(kv, "=")
		if !found || key == "" {
			return nil, errors.Errorf("invalid --arg %q, expected key=value", kv)
		}
		payload[key] = value
	}
	return payload, nil
}

func init() {
	transferCmd.Flags().StringArray("arg", nil, "Template payload entry as key=value (repeatable)")
	transferCmd.Flags().Bool("approve", false, "Approve the journaled request immediately")
	transferCmd.Flags().Bool("decline", false, "Decline the journaled request immediately")
	rootCmd.AddCommand(transferCmd)
}
