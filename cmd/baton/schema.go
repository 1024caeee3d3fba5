package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/handofflabs/baton/pkg/agent"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema for agent front-matter",
	Long: `Print the JSON schema describing the YAML front-matter block of an
agent definition file, for editor integration and external validation.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		out, err := agent.MetadataSchemaJSON()
		if err != nil {
			return errors.Wrap(err, "failed to generate schema")
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
