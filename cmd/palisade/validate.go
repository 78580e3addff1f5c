package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bastion-hq/palisade/pkg/cli"
	"bastion-hq/palisade/pkg/config"
	"bastion-hq/palisade/pkg/fasttrack"
	"bastion-hq/palisade/pkg/fasttrack/source"
)

var validateFlags struct {
	templateFile string
	skipTemplate bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and intake template",
	Long: `Validate the configuration file and, when fast-track routing is enabled,
the intake template it references.

Validation checks:
  - the configuration file parses and every value is in range
  - environment variable overrides produce a valid final configuration
  - the intake template parses and declares exactly 8 required fields

Examples:
  # Validate the default config
  palisade validate

  # Validate a specific config
  palisade validate --config /etc/palisade/config.yaml

  # Validate a template file directly, without a config
  palisade validate --template intake-template.yaml

  # Skip the template check (useful when the Git remote is unreachable)
  palisade validate --skip-template`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.templateFile, "template", "", "validate a template file instead of the config")
	validateCmd.Flags().BoolVar(&validateFlags.skipTemplate, "skip-template", false, "skip loading the intake template")
}

func runValidate(cmd *cobra.Command, args []string) error {
	if validateFlags.templateFile != "" {
		return validateTemplateFile(validateFlags.templateFile)
	}

	fmt.Printf("Validating %s...\n", cfgFile)

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	fmt.Println("✓ Configuration valid")
	fmt.Printf("  Listen address:     %s\n", cfg.Server.ListenAddress)
	fmt.Printf("  TLS:                %s\n", enabledWord(cfg.Server.TLS.Enabled))
	fmt.Printf("  Fast-track routing: %s\n", enabledWord(cfg.Gate.FastTrackEnabled))
	fmt.Printf("  Metrics:            %s\n", enabledWord(cfg.Telemetry.Metrics.Enabled))
	fmt.Printf("  Tracing:            %s\n", enabledWord(cfg.Telemetry.Tracing.Enabled))

	if !cfg.Gate.FastTrackEnabled || validateFlags.skipTemplate {
		return nil
	}

	fmt.Printf("\nValidating intake template (%s)...\n", describeTemplateSource(&cfg.Gate.Template))

	tplSource, err := source.New(&cfg.Gate.Template, templateLogger())
	if err != nil {
		return cli.NewCommandError("validate", fmt.Errorf("failed to create template source: %w", err))
	}
	defer tplSource.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	tpl, err := tplSource.Load(ctx)
	if err != nil {
		return cli.NewCommandError("validate", fmt.Errorf("template validation failed: %w", err))
	}

	fmt.Printf("✓ Intake template valid: %q version %s (%d required fields)\n",
		tpl.Name, tpl.Version, len(tpl.RequiredFields))

	return nil
}

func validateTemplateFile(path string) error {
	fmt.Printf("Validating %s...\n", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return cli.NewCommandError("validate", fmt.Errorf("failed to read template: %w", err))
	}

	tpl, err := fasttrack.ParseTemplate(data)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	fmt.Printf("✓ Template valid: %q version %s (%d required fields)\n",
		tpl.Name, tpl.Version, len(tpl.RequiredFields))
	return nil
}

func enabledWord(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
