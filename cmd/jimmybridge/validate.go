package main

import (
	"errors"
	"fmt"
	"io"

	"mercator-hq/jimmybridge/pkg/cli"
	"mercator-hq/jimmybridge/pkg/config"

	"github.com/spf13/cobra"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration file with environment overrides applied and report
every problem found.

A missing file is not an error: the defaults are validated instead.

Examples:
  # Validate the default config.yaml
  jimmybridge validate

  # Validate a specific file and print a JSON report
  jimmybridge validate --config /etc/jimmybridge/config.yaml --format json`,
	Args: cobra.NoArgs,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// validationReport is the result printed by the validate command.
type validationReport struct {
	ConfigPath string   `json:"config_path"`
	Valid      bool     `json:"valid"`
	Errors     []string `json:"errors,omitempty"`

	ListenAddress string `json:"listen_address,omitempty"`
	UpstreamURL   string `json:"upstream_url,omitempty"`
	DefaultModel  string `json:"default_model,omitempty"`
	AuthEnabled   bool   `json:"auth_enabled"`
}

func (r validationReport) RenderText(w io.Writer) error {
	if !r.Valid {
		fmt.Fprintf(w, "✗ Configuration invalid: %s\n", r.ConfigPath)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
		return nil
	}

	auth := "disabled"
	if r.AuthEnabled {
		auth = "enabled"
	}
	_, err := fmt.Fprintf(w, "✓ Configuration valid: %s\n  Listen address: %s\n  Upstream: %s\n  Default model: %s\n  Auth: %s\n",
		r.ConfigPath, r.ListenAddress, r.UpstreamURL, r.DefaultModel, auth)
	return err
}

func validateConfig(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(validateFlags.format)
	if err != nil {
		return err
	}

	report := buildReport(cfgFile)
	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if !report.Valid {
		return cli.NewConfigError("", fmt.Sprintf("%d problem(s) in %s", len(report.Errors), cfgFile))
	}
	return nil
}

func buildReport(path string) validationReport {
	report := validationReport{ConfigPath: path}

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Errors {
				report.Errors = append(report.Errors, fe.Error())
			}
		} else {
			report.Errors = []string{err.Error()}
		}
		return report
	}

	report.Valid = true
	report.ListenAddress = cfg.Proxy.ListenAddress
	report.UpstreamURL = cfg.Upstream.URL
	report.DefaultModel = cfg.Upstream.DefaultModel
	report.AuthEnabled = cfg.Auth.APIKey != ""
	return report
}
