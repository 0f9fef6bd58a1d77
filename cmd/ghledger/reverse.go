package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ghledger/internal/reconcile"
	"ghledger/internal/ui"
)

var reverseDryRun bool

var reverseCmd = &cobra.Command{
	Use:   "reverse",
	Short: "Pull board status into ledger records by title",
	Long: `Walk the ledger records, match each one back to the issue or pull
request behind it (by TAG-<n>: title prefix first, exact title second), and
pull that item's planning-board status into the record.

Records that match no item are listed verbatim so they can be reconciled by
hand. With --dry-run, every read and matching decision runs exactly as in a
live sync, but no status is written.`,
	RunE: runReverse,
}

func init() {
	reverseCmd.Flags().BoolVar(&reverseDryRun, "dry-run", false, "Preview status changes without writing")

	rootCmd.AddCommand(reverseCmd)
}

func runReverse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}

	engine, _, err := buildEngine(ctx, cfg, true)
	if err != nil {
		return err
	}
	if engine.Board == nil {
		return fmt.Errorf("reverse sync requires a planning board (set project.name)")
	}

	summary, err := engine.ReverseSync(ctx, reconcile.ReverseOptions{
		DryRun:   reverseDryRun,
		Statuses: cfg.Reverse.Statuses,
	})
	if err != nil {
		return err
	}

	return printReverseSummary(summary, reverseDryRun)
}

func printReverseSummary(summary *reconcile.ReverseSummary, dryRun bool) error {
	if jsonOutput {
		type unmatched struct {
			Title  string `json:"title"`
			Status string `json:"status"`
		}
		out := struct {
			DryRun    bool        `json:"dry_run"`
			Matched   int         `json:"matched"`
			Updated   int         `json:"updated"`
			Skipped   int         `json:"skipped"`
			Unmatched []unmatched `json:"unmatched"`
		}{DryRun: dryRun, Matched: summary.Matched, Updated: summary.Updated, Skipped: summary.Skipped, Unmatched: []unmatched{}}
		for _, r := range summary.Unmatched {
			out.Unmatched = append(out.Unmatched, unmatched{Title: r.Title, Status: r.Status})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	verb := "updated"
	if dryRun {
		verb = "would update"
	}
	fmt.Println(ui.HeaderStyle.Render("Reverse sync"))
	fmt.Printf("  %s matched: %d\n", ui.PassStyle.Render(ui.IconPass), summary.Matched)
	fmt.Printf("  %s %s: %d\n", ui.AccentStyle.Render("↺"), verb, summary.Updated)
	fmt.Printf("  %s skipped: %d\n", ui.MutedStyle.Render(ui.IconSkip), summary.Skipped)

	if len(summary.Unmatched) > 0 {
		fmt.Println(ui.WarnStyle.Render(fmt.Sprintf("  %s unmatched: %d", ui.IconWarn, len(summary.Unmatched))))
		for _, r := range summary.Unmatched {
			st := r.Status
			if st == "" {
				st = "(no status)"
			}
			fmt.Printf("      %s  %s\n", ui.MutedStyle.Render(st), r.Title)
		}
	}
	return nil
}
