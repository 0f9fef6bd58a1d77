package main

import (
	"context"
	"fmt"

	"ghledger/internal/config"
	"ghledger/internal/github"
	"ghledger/internal/notion"
	"ghledger/internal/reconcile"
)

// buildEngine wires the clients and adapters behind a reconcile.Engine.
// withBoard controls whether the planning board is resolved; commands that
// never touch status skip the GraphQL round trip entirely.
func buildEngine(ctx context.Context, cfg *config.Config, withBoard bool) (*reconcile.Engine, *github.Source, error) {
	ghClient := github.NewClient(cfg.GitHub.Token, cfg.GitHub.Owner, cfg.GitHub.Repo)

	var projects *github.ProjectsClient
	var projectID string
	if withBoard && cfg.BoardConfigured() {
		projects = github.NewProjectsClient(cfg.GitHub.Token, cfg.GitHub.Owner)

		var err error
		projectID, err = resolveBoard(ctx, projects, cfg)
		if err != nil {
			return nil, nil, err
		}
	}

	source := github.NewSource(ghClient, projects, projectID, logger)
	ledger := notion.NewLedger(notion.NewClient(cfg.Notion.Token, cfg.Notion.DatabaseID), logger)

	var board reconcile.Board
	if projectID != "" {
		board = source
	}

	return reconcile.NewEngine(source, ledger, board, logger), source, nil
}

// resolveBoard turns the configured board name into a project node ID.
// The first-board fallback only engages when explicitly enabled, and is
// logged as a degraded mode rather than applied silently.
func resolveBoard(ctx context.Context, projects *github.ProjectsClient, cfg *config.Config) (string, error) {
	if cfg.Project.Name != "" {
		id, err := projects.FindProjectByName(ctx, cfg.Project.Name)
		if err != nil {
			return "", fmt.Errorf("resolving project board %q: %w", cfg.Project.Name, err)
		}
		if id == "" {
			return "", fmt.Errorf("project board %q not found for owner %s", cfg.Project.Name, cfg.GitHub.Owner)
		}
		return id, nil
	}

	id, title, err := projects.FirstProject(ctx)
	if err != nil {
		return "", fmt.Errorf("resolving first project board: %w", err)
	}
	if id == "" {
		return "", fmt.Errorf("owner %s has no project boards", cfg.GitHub.Owner)
	}
	logger.Warn("project.name not set, falling back to first board (degraded mode)",
		"board", title)
	return id, nil
}
