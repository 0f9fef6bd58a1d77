// ghledger keeps a Notion ledger database synchronized with GitHub issues
// and pull requests, and pulls planning-board status into the ledger.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ghledger/internal/config"
)

var (
	configPath  string
	verboseFlag bool
	jsonOutput  bool

	logger *slog.Logger

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "ghledger",
	Short: "Sync GitHub issues and PRs into a Notion ledger",
	Long: `ghledger reconciles GitHub issues and pull requests into a Notion
database (the ledger) and keeps the ledger's status column in step with a
GitHub Projects board.

Configuration lives in ~/.ghledger.yaml (or --config), with environment
overrides:
  github.token / GITHUB_TOKEN             - GitHub personal access token
  github.owner, github.repo               - Repository to sync
  notion.token / NOTION_TOKEN             - Notion integration token
  notion.database_id / NOTION_DATABASE_ID - Ledger database
  project.name                            - Planning board title (status sync)`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verboseFlag {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/"+config.DefaultConfigName+")")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
}

// loadConfig loads and validates configuration for a command.
func loadConfig(requireBoard bool) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(requireBoard); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer rootCancel()

	if err := rootCmd.ExecuteContext(rootCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
