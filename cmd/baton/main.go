package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/handofflabs/baton/pkg/logger"
	"github.com/handofflabs/baton/pkg/presenter"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("BATON")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.baton")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "baton",
	Short: "Validate and inspect declarative multi-agent workspaces",
	Long: `baton loads agent persona definitions, skill documents, and the hand-off
graph between personas from markdown configuration, validates their
integrity, and constructs transfer requests for an external host runtime
to dispatch.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if quiet, err := cmd.Flags().GetBool("quiet"); err == nil {
			presenter.SetQuiet(quiet)
		}

		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
		os.Exit(1)
	},
}

// registerGlobalFlags declares the persistent flags and binds them to their
// viper keys so config file, env, and flags resolve through one path.
func registerGlobalFlags(flags *pflag.FlagSet) {
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "fmt", "Log format (fmt, json)")
	flags.BoolP("quiet", "q", false, "Suppress non-error output")
	flags.StringSlice("agent-dirs", nil, "Agent definition directories (overrides config)")
	flags.StringSlice("skill-dirs", nil, "Skill document directories (overrides config)")

	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("agent_dirs", flags.Lookup("agent-dirs"))
	viper.BindPFlag("skill_dirs", flags.Lookup("skill-dirs"))
}

func main() {
	registerGlobalFlags(rootCmd.PersistentFlags())

	ctx := context.Background()
	shutdown, err := initTracing(ctx)
	if err != nil {
		presenter.Error(err, "Failed to initialize tracing")
	} else {
		defer shutdown(ctx)
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
