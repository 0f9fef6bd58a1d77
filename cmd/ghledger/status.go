package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ghledger/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and connectivity",
	Long:  `Display the resolved configuration and verify access to GitHub and Notion.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}

	fmt.Println(ui.HeaderStyle.Render("Configuration"))
	fmt.Printf("  repository:  %s/%s\n", cfg.GitHub.Owner, cfg.GitHub.Repo)
	fmt.Printf("  database:    %s\n", cfg.Notion.DatabaseID)
	switch {
	case cfg.Project.Name != "":
		fmt.Printf("  board:       %s\n", cfg.Project.Name)
	case cfg.Project.AllowFirstBoard:
		fmt.Printf("  board:       %s\n", ui.WarnStyle.Render("(first available - degraded mode)"))
	default:
		fmt.Printf("  board:       %s\n", ui.MutedStyle.Render("(none - status sync disabled)"))
	}

	fmt.Println(ui.HeaderStyle.Render("Connectivity"))

	engine, source, err := buildEngine(ctx, cfg, cfg.BoardConfigured())
	if err != nil {
		fmt.Printf("  %s board:  %v\n", ui.FailStyle.Render(ui.IconFail), err)
		return err
	}

	if _, err := source.FetchItem(ctx, 1); err != nil {
		fmt.Printf("  %s github: %v\n", ui.FailStyle.Render(ui.IconFail), err)
		return err
	}
	fmt.Printf("  %s github\n", ui.PassStyle.Render(ui.IconPass))

	if _, err := engine.Ledger.FindByNumber(ctx, 0); err != nil {
		fmt.Printf("  %s notion: %v\n", ui.FailStyle.Render(ui.IconFail), err)
		return err
	}
	fmt.Printf("  %s notion\n", ui.PassStyle.Render(ui.IconPass))

	return nil
}
