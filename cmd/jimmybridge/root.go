package main

import (
	"fmt"
	"os"

	"mercator-hq/jimmybridge/pkg/cli"
	"mercator-hq/jimmybridge/pkg/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "jimmybridge",
	Short: "jimmybridge - OpenAI-compatible proxy for ChatJimmy",
	Long: `jimmybridge exposes the ChatJimmy chat service behind an OpenAI-compatible API.

Clients call /v1/chat/completions and /v1/models as they would against OpenAI.
Requests are forwarded to ChatJimmy and the streamed plain-text reply is
translated into OpenAI JSON responses or server-sent events, with ChatJimmy's
trailing stats block removed.

Configuration is read from a YAML file and JIMMYBRIDGE_* environment variables.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadEnvFile,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path (defaults apply when it does not exist)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from a dotenv file before reading config")
}

// loadEnvFile loads --env-file into the process environment. Variables that
// are already set keep their value.
func loadEnvFile(cmd *cobra.Command, args []string) error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load env file %q: %v", envFile, err))
	}
	return nil
}

// loadConfig reads cfgFile with environment overrides applied and stores the
// result as the process-wide configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	config.SetConfig(cfg)
	return cfg, nil
}
