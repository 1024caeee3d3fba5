package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handofflabs/baton/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}

		info := version.Get()
		if asJSON {
			out, err := info.JSON()
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		fmt.Println(info.String())
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "Output version information as JSON")
	rootCmd.AddCommand(versionCmd)
}
