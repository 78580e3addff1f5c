package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bastion-hq/palisade/pkg/allocation"
	"bastion-hq/palisade/pkg/config"
	"bastion-hq/palisade/pkg/fasttrack/source"
)

var templateFlags struct {
	limit  int
	to     string
	format string
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage the intake template",
	Long: `Manage the intake template that gates fast-track routing.

The template command provides tools for inspecting and managing the intake
template, including Git version tracking, synchronization, and rollback for
Git-sourced templates.

Subcommands:
  show     - Show the current template contents
  validate - Validate the configured template
  version  - Show current template version (commit info)
  sync     - Force pull the latest template from Git
  history  - Show template commit history
  rollback - Rollback the template to a specific commit

Examples:
  # Show the active template
  palisade template show

  # Validate the configured template
  palisade template validate

  # Show current template version
  palisade template version

  # Force sync with Git remote
  palisade template sync

  # Show last 10 commits
  palisade template history --limit 10

  # Rollback to specific commit
  palisade template rollback --to a1b2c3d4`,
}

var templateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current template contents",
	Long: `Show the current intake template contents.

Loads the template from the configured source (file or Git) and displays
its name, version, and required fields.

Examples:
  # Show the template
  palisade template show

  # Output as JSON
  palisade template show --format json`,
	RunE: showTemplate,
}

var templateValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configured template",
	Long: `Validate the intake template from the configured source.

Loads the template from the configured source (file or Git) and checks
that it parses and declares exactly 8 required fields. This validates
what the server would actually serve; use "palisade validate --template"
to check a bare template file without a config.

Examples:
  # Validate the configured template
  palisade template validate`,
	RunE: validateConfiguredTemplate,
}

var templateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show current template version",
	Long: `Show current template version information.

For Git-sourced templates, this displays the active commit SHA, author,
timestamp, and commit message.

Examples:
  # Show version info
  palisade template version

  # Output as JSON
  palisade template version --format json`,
	RunE: showTemplateVersion,
}

var templateSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Force pull the latest template",
	Long: `Force pull the latest intake template from the Git repository.

This command manually triggers a Git pull to sync with the remote. It
reports whether the pull brought in changes and which files changed.

Examples:
  # Sync with remote
  palisade template sync`,
	RunE: syncTemplate,
}

var templateHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show template commit history",
	Long: `Show template commit history.

Displays the commit history for the template repository, including
commit SHA, author, timestamp, and message.

Examples:
  # Show last 10 commits
  palisade template history --limit 10

  # Output as JSON
  palisade template history --limit 10 --format json`,
	RunE: showTemplateHistory,
}

var templateRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Rollback the template to a specific commit",
	Long: `Rollback the intake template to a specific Git commit.

This command checks out the specified commit and validates the template
found there. If the template at the target commit does not parse, the
working tree is restored to the previous commit and the rollback fails.

Examples:
  # Rollback to commit
  palisade template rollback --to a1b2c3d4e5f6

  # Rollback to short SHA
  palisade template rollback --to a1b2c3d`,
	RunE: rollbackTemplate,
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.AddCommand(templateShowCmd, templateValidateCmd, templateVersionCmd, templateSyncCmd, templateHistoryCmd, templateRollbackCmd)

	templateCmd.PersistentFlags().StringVar(&templateFlags.format, "format", "text", "output format: text, json")

	templateHistoryCmd.Flags().IntVar(&templateFlags.limit, "limit", 10, "number of commits to show")

	templateRollbackCmd.Flags().StringVar(&templateFlags.to, "to", "", "target commit SHA")
	_ = templateRollbackCmd.MarkFlagRequired("to")
}

func showTemplate(cmd *cobra.Command, args []string) error {
	cfg, err := loadGateConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	tplSource, err := source.New(&cfg.Template, templateLogger())
	if err != nil {
		return fmt.Errorf("failed to create template source: %w", err)
	}
	defer tplSource.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	tpl, err := tplSource.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	switch templateFlags.format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tpl)
	default:
		fmt.Printf("Template: %s\n", tpl.Name)
		fmt.Printf("Version:  %s\n", tpl.Version)
		fmt.Printf("Source:   %s\n", describeTemplateSource(&cfg.Template))
		fmt.Printf("\nRequired fields (%d):\n", len(tpl.RequiredFields))
		for i, f := range tpl.RequiredFields {
			fmt.Printf("  %d. %-24s %s\n", i+1, f.ID, f.Label)
		}
		fmt.Printf("\nFast-track baseline: %d controls (LOE %s)\n",
			allocation.ControlCountMinimum, allocation.LOEA)
	}

	return nil
}

func validateConfiguredTemplate(cmd *cobra.Command, args []string) error {
	cfg, err := loadGateConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("Validating intake template (%s)...\n", describeTemplateSource(&cfg.Template))

	tplSource, err := source.New(&cfg.Template, templateLogger())
	if err != nil {
		return fmt.Errorf("failed to create template source: %w", err)
	}
	defer tplSource.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	tpl, err := tplSource.Load(ctx)
	if err != nil {
		return fmt.Errorf("template validation failed: %w", err)
	}

	fmt.Printf("✓ Template valid: %q version %s (%d required fields)\n",
		tpl.Name, tpl.Version, len(tpl.RequiredFields))
	return nil
}

func showTemplateVersion(cmd *cobra.Command, args []string) error {
	cfg, err := loadGateConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	src, err := createGitSource(&cfg.Template)
	if err != nil {
		return err
	}
	defer src.Close()

	commit, err := src.CurrentCommit()
	if err != nil {
		return fmt.Errorf("failed to get current commit: %w", err)
	}

	switch templateFlags.format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(commit)
	default:
		fmt.Printf("Current Template Version:\n")
		fmt.Printf("  Commit:     %s\n", commit.SHA)
		fmt.Printf("  Branch:     %s\n", commit.Branch)
		fmt.Printf("  Author:     %s\n", commit.Author)
		fmt.Printf("  Timestamp:  %s\n", commit.Timestamp.Format(time.RFC3339))
		fmt.Printf("  Repository: %s\n", commit.Repository)
		if commit.Message != "" {
			fmt.Printf("  Message:    %s\n", firstLine(commit.Message))
		}
	}

	return nil
}

func syncTemplate(cmd *cobra.Command, args []string) error {
	cfg, err := loadGateConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	src, err := createGitSource(&cfg.Template)
	if err != nil {
		return err
	}
	defer src.Close()

	fmt.Println("Syncing with Git remote...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := src.Pull(ctx)
	if err != nil {
		return fmt.Errorf("failed to sync: %w", err)
	}

	if !result.HadChanges {
		fmt.Printf("✓ Already up to date at commit %s\n", shortSHA(result.ToSHA))
		return nil
	}

	fmt.Printf("✓ Synced %s -> %s (%d files changed)\n",
		shortSHA(result.FromSHA), shortSHA(result.ToSHA), len(result.ChangedFiles))
	for _, f := range result.ChangedFiles {
		fmt.Printf("  %s\n", f)
	}

	return nil
}

func showTemplateHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadGateConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	src, err := createGitSource(&cfg.Template)
	if err != nil {
		return err
	}
	defer src.Close()

	commits, err := src.History(templateFlags.limit)
	if err != nil {
		return fmt.Errorf("failed to get commit history: %w", err)
	}

	if len(commits) == 0 {
		fmt.Println("No commits found")
		return nil
	}

	switch templateFlags.format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(commits)
	default:
		fmt.Printf("Template Commit History (last %d commits):\n\n", len(commits))
		for i, commit := range commits {
			fmt.Printf("%d. %s\n", i+1, shortSHA(commit.SHA))
			fmt.Printf("   Author:    %s\n", commit.Author)
			fmt.Printf("   Date:      %s\n", commit.Timestamp.Format(time.RFC3339))
			fmt.Printf("   Branch:    %s\n", commit.Branch)
			if commit.Message != "" {
				message := firstLine(commit.Message)
				if len(message) > 60 {
					message = message[:60] + "..."
				}
				fmt.Printf("   Message:   %s\n", message)
			}
			fmt.Println()
		}
	}

	return nil
}

func rollbackTemplate(cmd *cobra.Command, args []string) error {
	cfg, err := loadGateConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	src, err := createGitSource(&cfg.Template)
	if err != nil {
		return err
	}
	defer src.Close()

	currentCommit, err := src.CurrentCommit()
	if err != nil {
		return fmt.Errorf("failed to get current commit: %w", err)
	}

	fmt.Printf("Current commit: %s\n", shortSHA(currentCommit.SHA))
	fmt.Printf("Rolling back to: %s\n", templateFlags.to)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := src.Rollback(ctx, templateFlags.to); err != nil {
		return fmt.Errorf("failed to rollback: %w", err)
	}

	// Reject the rollback if the template at the target does not parse.
	if _, err := src.Load(ctx); err != nil {
		if restoreErr := src.Rollback(ctx, currentCommit.SHA); restoreErr != nil {
			return fmt.Errorf("template at %s is invalid (%v) and restoring %s failed: %w",
				templateFlags.to, err, shortSHA(currentCommit.SHA), restoreErr)
		}
		return fmt.Errorf("template at %s is invalid, rollback aborted: %w", templateFlags.to, err)
	}

	newCommit, err := src.CurrentCommit()
	if err != nil {
		return fmt.Errorf("failed to get new commit: %w", err)
	}

	fmt.Printf("✓ Successfully rolled back to commit %s\n", shortSHA(newCommit.SHA))
	fmt.Printf("  Author: %s\n", newCommit.Author)
	fmt.Printf("  Date:   %s\n", newCommit.Timestamp.Format(time.RFC3339))

	return nil
}

// Helper functions

func loadGateConfig() (*config.GateConfig, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg := config.GetConfig()
	return &cfg.Gate, nil
}

func createGitSource(cfg *config.TemplateSourceConfig) (*source.GitSource, error) {
	if cfg.Mode != "git" {
		return nil, fmt.Errorf("this command requires a Git template source (set gate.template.mode: git)")
	}

	src, err := source.NewGitSource(&cfg.Git, templateLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to create template source: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := src.Sync(ctx); err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to sync repository: %w", err)
	}

	return src, nil
}

// templateLogger keeps source logs on stderr so formatted output on stdout
// stays parseable.
func templateLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func describeTemplateSource(cfg *config.TemplateSourceConfig) string {
	if cfg.Mode == "git" {
		return fmt.Sprintf("git (%s, branch %s)", cfg.Git.Repository, cfg.Git.Branch)
	}
	return fmt.Sprintf("file (%s)", cfg.FilePath)
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
