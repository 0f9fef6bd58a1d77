package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ghledger/internal/reconcile"
)

var (
	syncDryRun bool
	syncState  string
	syncNumber int
	syncBoard  bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile GitHub items into the ledger",
	Long: `Fetch issues and pull requests from GitHub and reconcile each one
into the Notion ledger: existing records are updated in place, missing ones
are created, and (when a planning board is configured) each record's status
is pulled from the board.

By default the whole repository is synced. Use --number to sync a single
item, or --board to sync exactly the items tracked by the planning board.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Show what would be synced without writing")
	syncCmd.Flags().StringVar(&syncState, "state", "all", "Filter items by state: open, closed, or all")
	syncCmd.Flags().IntVarP(&syncNumber, "number", "n", 0, "Sync a single item by number")
	syncCmd.Flags().BoolVar(&syncBoard, "board", false, "Sync the items tracked by the planning board")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}

	needsBoard := syncBoard || cfg.BoardConfigured()
	engine, source, err := buildEngine(ctx, cfg, needsBoard)
	if err != nil {
		return err
	}
	engine.DryRun = syncDryRun

	var items []reconcile.Item
	switch {
	case syncNumber > 0:
		item, err := source.FetchItem(ctx, syncNumber)
		if err != nil {
			return fmt.Errorf("fetching #%d: %w", syncNumber, err)
		}
		if item == nil {
			return fmt.Errorf("no issue or pull request #%d in %s/%s", syncNumber, cfg.GitHub.Owner, cfg.GitHub.Repo)
		}
		items = []reconcile.Item{*item}
	case syncBoard:
		items, err = source.FetchBoardItems(ctx)
		if err != nil {
			return fmt.Errorf("fetching board items: %w", err)
		}
	default:
		items, err = source.FetchRepoItems(ctx, syncState)
		if err != nil {
			return fmt.Errorf("fetching repository items: %w", err)
		}
	}

	logger.Info("fetched items", "count", len(items))
	result := engine.ReconcileBatch(ctx, items)

	return printBatchResult(result)
}

func printBatchResult(result reconcile.BatchResult) error {
	if jsonOutput {
		type failure struct {
			Kind   string `json:"kind"`
			Number int    `json:"number"`
			Error  string `json:"error"`
		}
		out := struct {
			Succeeded int       `json:"succeeded"`
			Failed    []failure `json:"failed"`
		}{Succeeded: result.Succeeded, Failed: []failure{}}
		for _, f := range result.Failed {
			out.Failed = append(out.Failed, failure{Kind: string(f.Kind), Number: f.Number, Error: f.Err.Error()})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Synced %d item(s), %d failure(s)\n", result.Succeeded, len(result.Failed))
	for _, f := range result.Failed {
		fmt.Printf("  ✗ %s #%d: %v\n", f.Kind, f.Number, f.Err)
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d item(s) failed to sync", len(result.Failed))
	}
	return nil
}
