package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/handofflabs/baton/pkg/handoff"
	"github.com/handofflabs/baton/pkg/presenter"
	"github.com/handofflabs/baton/pkg/registry"
)

var handoffsCmd = &cobra.Command{
	Use:   "handoffs",
	Short: "List the declared hand-off edges",
	Long: `List every hand-off edge in the routing graph, grouped by source
agent in registration order. Within one source the edges keep their
declaration order, which is also the host's display order.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		ws, err := loadWorkspace(ctx)
		if err != nil {
			return err
		}
		graph, reg, err := ws.buildGraph()
		if err != nil {
			return errors.Wrap(err, "cannot build hand-off graph")
		}

		source, err := cmd.Flags().GetString("agent")
		if err != nil {
			return err
		}

		if source != "" {
			if _, err := reg.Resolve(source); err != nil {
				if errors.Is(err, registry.ErrNotFound) {
					return errors.Errorf("no agent named %q", source)
				}
				return err
			}
			printEdges(graph, source)
			return nil
		}

		total := 0
		for _, a := range reg.Agents() {
			total += printEdges(graph, a.Name())
		}
		if total == 0 {
			presenter.Info("No hand-off edges declared")
		}
		return nil
	},
}

// printEdges prints the outgoing edges of one source and returns the count.
func printEdges(graph *handoff.Graph, source string) int {
	labelColor := color.New(color.FgCyan, color.Bold)
	count := 0
	for e := range graph.Outgoing(source) {
		mode := "requires approval"
		if e.Send {
			mode = "auto-dispatch"
		}
		fmt.Printf("%s: %s -> %s (%s)\n", e.Source, labelColor.Sprint(e.Label), e.Target, mode)
		count++
	}
	return count
}

func init() {
	handoffsCmd.Flags().String("agent", "", "Only show edges leaving this source agent")
	rootCmd.AddCommand(handoffsCmd)
}
