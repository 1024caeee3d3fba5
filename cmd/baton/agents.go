package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/handofflabs/baton/pkg/agent"
	"github.com/handofflabs/baton/pkg/presenter"
	"github.com/handofflabs/baton/pkg/registry"
	"github.com/handofflabs/baton/pkg/skills"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Inspect the loaded agent personas",
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all resolvable agents",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		ws, err := loadWorkspace(ctx)
		if err != nil {
			return err
		}
		reg, err := ws.buildRegistry()
		if err != nil {
			return errors.Wrap(err, "cannot build registry")
		}

		if reg.Len() == 0 {
			presenter.Info("No agents found")
			return nil
		}

		nameColor := color.New(color.FgCyan, color.Bold)
		for _, a := range reg.Agents() {
			fmt.Printf("%s  %s\n", nameColor.Sprint(a.Name()), a.Metadata.Description)
			if len(a.Metadata.Handoffs) > 0 {
				labels := make([]string, 0, len(a.Metadata.Handoffs))
				for _, h := range a.Metadata.Handoffs {
					labels = append(labels, h.Label)
				}
				fmt.Printf("    handoffs: %s\n", strings.Join(labels, ", "))
			}
		}
		return nil
	},
}

var agentsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one agent's metadata and system prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ws, err := loadWorkspace(ctx)
		if err != nil {
			return err
		}
		reg, err := ws.buildRegistry()
		if err != nil {
			return errors.Wrap(err, "cannot build registry")
		}

		a, err := reg.Resolve(args[0])
		if err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				return errors.Errorf("no agent named %q; run 'baton agents list' to see what is available", args[0])
			}
			return err
		}

		presenter.Section(a.Name())
		fmt.Printf("Description: %s\n", a.Metadata.Description)
		fmt.Printf("Model:       %s\n", a.Metadata.Model)
		fmt.Printf("Infer:       %t\n", a.Metadata.Infer)
		fmt.Printf("Source:      %s\n", a.Path)
		if len(a.Metadata.Tools) > 0 {
			fmt.Printf("Tools:       %s\n", strings.Join(a.Metadata.Tools, ", "))
		}
		if len(a.Metadata.Skills) > 0 {
			resolved := skills.FilterByAllowlist(ws.skills, a.Metadata.Skills)
			entries := make([]string, 0, len(a.Metadata.Skills))
			for _, name := range a.Metadata.Skills {
				if _, ok := resolved[name]; ok {
					entries = append(entries, name)
				} else {
					entries = append(entries, name+" (missing)")
				}
			}
			fmt.Printf("Skills:      %s\n", strings.Join(entries, ", "))
		}
		if len(a.Metadata.Handoffs) > 0 {
			fmt.Println("Handoffs:")
			for _, h := range a.Metadata.Handoffs {
				mode := "requires approval"
				if h.Send {
					mode = "auto-dispatch"
				}
				fmt.Printf("  %s -> %s (%s)\n", h.Label, h.Agent, mode)
			}
		}
		fmt.Println()
		fmt.Println(a.SystemPrompt)
		return nil
	},
}

// exportedAgent is the YAML shape emitted by 'agents export'. The system
// prompt rides along so the export round-trips the full definition.
type exportedAgent struct {
	Metadata     agent.Metadata `yaml:",inline"`
	SystemPrompt string         `yaml:"system_prompt,omitempty"`
}

var agentsExportCmd = &cobra.Command{
	Use:   "export [name...]",
	Short: "Export agent definitions as YAML",
	Long: `Export the requested agents (or all agents when no names are given)
as a YAML document, suitable for diffing or feeding to other tooling.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ws, err := loadWorkspace(ctx)
		if err != nil {
			return err
		}
		reg, err := ws.buildRegistry()
		if err != nil {
			return errors.Wrap(err, "cannot build registry")
		}

		var selected []*agent.Agent
		if len(args) == 0 {
			selected = reg.Agents()
		} else {
			sort.Strings(args)
			for _, name := range args {
				a, err := reg.Resolve(name)
				if err != nil {
					return errors.Wrapf(err, "cannot export %q", name)
				}
				selected = append(selected, a)
			}
		}

		out := make(map[string]exportedAgent, len(selected))
		for _, a := range selected {
			out[a.Name()] = exportedAgent{
				Metadata:     a.Metadata,
				SystemPrompt: a.SystemPrompt,
			}
		}

		data, err := yaml.Marshal(out)
		if err != nil {
			return errors.Wrap(err, "failed to marshal agents")
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	agentsCmd.AddCommand(agentsListCmd)
	agentsCmd.AddCommand(agentsShowCmd)
	agentsCmd.AddCommand(agentsExportCmd)
	rootCmd.AddCommand(agentsCmd)
}
