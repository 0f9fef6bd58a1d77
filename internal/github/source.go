package github

import (
	"context"
	"fmt"
	"log/slog"

	"ghledger/internal/reconcile"
)

// Source adapts the REST and Projects clients to the sync engine's Sources
// and Board interfaces, normalizing API types into reconcile.Item.
type Source struct {
	client   *Client
	projects *ProjectsClient
	// projectID is resolved once from the configured board name.
	projectID string
	log       *slog.Logger

	// boardStatus caches node ID -> status for the run. The engine is
	// single-threaded, so one lazy load per run suffices and keeps
	// per-item status reads off the network.
	boardStatus map[string]string
}

// NewSource creates a Source. projects and projectID may be empty when no
// planning board is configured; board-dependent calls then fail.
func NewSource(client *Client, projects *ProjectsClient, projectID string, log *slog.Logger) *Source {
	return &Source{
		client:    client,
		projects:  projects,
		projectID: projectID,
		log:       log,
	}
}

// itemFromIssue normalizes a REST issue into the engine's Item shape.
func itemFromIssue(is *Issue) reconcile.Item {
	item := reconcile.Item{
		NodeID: is.NodeID,
		Number: is.Number,
		Title:  is.Title,
		Body:   is.Body,
		State:  is.State,
		Labels: LabelNames(is.Labels),
		URL:    is.HTMLURL,
		Kind:   reconcile.KindIssue,
	}
	if is.PullRequest != nil {
		item.Kind = reconcile.KindPull
	}
	return item
}

// enrichPull fills in the PR-only attributes from the pulls endpoint.
func (s *Source) enrichPull(ctx context.Context, item *reconcile.Item) error {
	pr, err := s.client.FetchPullRequest(ctx, item.Number)
	if err != nil {
		return err
	}
	item.Merged = pr.Merged
	item.Draft = pr.Draft
	item.Additions = pr.Additions
	item.Deletions = pr.Deletions
	return nil
}

// FetchItem retrieves a single item by number. Returns nil, nil when the
// item does not exist.
func (s *Source) FetchItem(ctx context.Context, number int) (*reconcile.Item, error) {
	is, err := s.client.FetchIssueByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if is == nil {
		return nil, nil
	}
	item := itemFromIssue(is)
	if item.Kind == reconcile.KindPull {
		if err := s.enrichPull(ctx, &item); err != nil {
			return nil, err
		}
	}
	return &item, nil
}

// FetchRepoItems retrieves all issues and pull requests in the repository.
func (s *Source) FetchRepoItems(ctx context.Context, state string) ([]reconcile.Item, error) {
	if !IsValidState(state) {
		return nil, fmt.Errorf("invalid state filter %q (valid: open, closed, all)", state)
	}
	issues, err := s.client.FetchIssues(ctx, state)
	if err != nil {
		return nil, err
	}

	items := make([]reconcile.Item, 0, len(issues))
	for i := range issues {
		item := itemFromIssue(&issues[i])
		if item.Kind == reconcile.KindPull {
			if err := s.enrichPull(ctx, &item); err != nil {
				// PR detail fetch is enrichment, not identity; sync the
				// item without diff attributes rather than dropping it.
				s.log.Warn("failed to fetch pull request details",
					"number", item.Number, "error", err)
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// FetchBoardItems retrieves all items tracked by the configured board, with
// BoardStatus populated. Items are resolved back to full issues so the
// engine sees the same shape as a repository fetch.
func (s *Source) FetchBoardItems(ctx context.Context) ([]reconcile.Item, error) {
	cards, err := s.listBoard(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]reconcile.Item, 0, len(cards))
	for _, card := range cards {
		is, err := s.client.FetchIssueByNumber(ctx, card.Number)
		if err != nil {
			return nil, fmt.Errorf("resolving board card #%d: %w", card.Number, err)
		}
		if is == nil || is.NodeID != card.ContentNodeID {
			// The card's issue may live in another repository. Issue numbers
			// are only unique per repository, so a same-numbered local issue
			// can come back from the lookup; the node ID check rejects it.
			// Identity and title then come from the card itself.
			items = append(items, reconcile.Item{
				NodeID:      card.ContentNodeID,
				Number:      card.Number,
				Title:       card.Title,
				Kind:        reconcile.KindIssue,
				BoardStatus: card.Status,
			})
			continue
		}
		item := itemFromIssue(is)
		item.BoardStatus = card.Status
		items = append(items, item)
	}
	return items, nil
}

// ItemStatus returns the board status for the given node ID. ok is false
// when the item is not on the board or carries no status.
func (s *Source) ItemStatus(ctx context.Context, nodeID string) (string, bool, error) {
	if s.boardStatus == nil {
		cards, err := s.listBoard(ctx)
		if err != nil {
			return "", false, err
		}
		s.boardStatus = make(map[string]string, len(cards))
		for _, card := range cards {
			s.boardStatus[card.ContentNodeID] = card.Status
		}
	}
	st, ok := s.boardStatus[nodeID]
	if !ok || st == "" {
		return "", false, nil
	}
	return st, true, nil
}

func (s *Source) listBoard(ctx context.Context) ([]ProjectItem, error) {
	if s.projects == nil || s.projectID == "" {
		return nil, fmt.Errorf("no planning board configured")
	}
	return s.projects.ListItems(ctx, s.projectID)
}
