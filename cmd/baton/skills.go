package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/handofflabs/baton/pkg/config"
	"github.com/handofflabs/baton/pkg/presenter"
	"github.com/handofflabs/baton/pkg/skills"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Inspect the discoverable skill documents",
}

func newDiscoveryFromConfig() (*skills.Discovery, error) {
	cfg, err := config.GetConfigFromViper()
	if err != nil {
		return nil, err
	}
	return newSkillDiscovery(cfg)
}

var skillsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all discovered skills",
	RunE: func(_ *cobra.Command, _ []string) error {
		discovery, err := newDiscoveryFromConfig()
		if err != nil {
			return err
		}

		names, err := discovery.ListSkillNames()
		if err != nil {
			return errors.Wrap(err, "failed to discover skills")
		}
		if len(names) == 0 {
			presenter.Info("No skills found")
			return nil
		}

		nameColor := color.New(color.FgCyan, color.Bold)
		for _, name := range names {
			s, err := discovery.GetSkill(name)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n", nameColor.Sprint(name), s.Description)
		}
		return nil
	},
}

var skillsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a skill document's full content",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		discovery, err := newDiscoveryFromConfig()
		if err != nil {
			return err
		}

		s, err := discovery.GetSkill(args[0])
		if err != nil {
			return errors.Wrapf(err, "run 'baton skills list' to see what is available")
		}

		presenter.Section(s.Name)
		fmt.Printf("Description: %s\n", s.Description)
		fmt.Printf("Directory:   %s\n", s.Directory)
		fmt.Println()
		fmt.Println(s.Content)
		return nil
	},
}

func init() {
	skillsCmd.AddCommand(skillsListCmd)
	skillsCmd.AddCommand(skillsShowCmd)
	rootCmd.AddCommand(skillsCmd)
}
