package notion

import (
	"context"
	"log/slog"

	"ghledger/internal/reconcile"
	"ghledger/internal/retry"
)

// Ledger adapts the Notion client to the sync engine's Ledger interface.
// Every write goes through the transient-failure retry policy; reads do
// not, matching the destination's failure profile (writes are where 409 and
// 503 show up under load).
type Ledger struct {
	client *Client
	log    *slog.Logger
}

// NewLedger wraps a Notion client as the engine's ledger backend.
func NewLedger(client *Client, log *slog.Logger) *Ledger {
	return &Ledger{client: client, log: log}
}

func (l *Ledger) find(ctx context.Context, filter map[string]interface{}) ([]reconcile.Record, error) {
	pages, err := l.client.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	recs := make([]reconcile.Record, len(pages))
	for i := range pages {
		recs[i] = recordFromPage(&pages[i])
	}
	return recs, nil
}

// FindByNodeID returns records whose identity property equals nodeID.
func (l *Ledger) FindByNodeID(ctx context.Context, nodeID string) ([]reconcile.Record, error) {
	return l.find(ctx, map[string]interface{}{
		"property":  PropNodeID,
		"rich_text": map[string]interface{}{"equals": nodeID},
	})
}

// FindByNumber returns records whose number property equals number.
func (l *Ledger) FindByNumber(ctx context.Context, number int) ([]reconcile.Record, error) {
	return l.find(ctx, map[string]interface{}{
		"property": PropNumber,
		"number":   map[string]interface{}{"equals": number},
	})
}

// FindByURL returns records whose URL property equals url.
func (l *Ledger) FindByURL(ctx context.Context, url string) ([]reconcile.Record, error) {
	return l.find(ctx, map[string]interface{}{
		"property": PropURL,
		"url":      map[string]interface{}{"equals": url},
	})
}

// FindByStatus returns records whose status is one of statuses.
func (l *Ledger) FindByStatus(ctx context.Context, statuses []string) ([]reconcile.Record, error) {
	clauses := make([]map[string]interface{}, len(statuses))
	for i, s := range statuses {
		clauses[i] = map[string]interface{}{
			"property": PropStatus,
			"status":   map[string]interface{}{"equals": s},
		}
	}
	return l.find(ctx, map[string]interface{}{"or": clauses})
}

// Create writes a new record in create shape.
func (l *Ledger) Create(ctx context.Context, item reconcile.Item) (*reconcile.Record, error) {
	props := BuildCreateProperties(item)
	children := BuildBodyBlocks(item.Body)

	var page *Page
	err := retry.Do(ctx, func() error {
		var opErr error
		page, opErr = l.client.CreatePage(ctx, props, children)
		return opErr
	}, nil)
	if err != nil {
		return nil, err
	}

	rec := recordFromPage(page)
	return &rec, nil
}

// Update rewrites an existing record in update shape.
func (l *Ledger) Update(ctx context.Context, pageID string, item reconcile.Item) (*reconcile.Record, error) {
	props := BuildUpdateProperties(item)

	var page *Page
	err := retry.Do(ctx, func() error {
		var opErr error
		page, opErr = l.client.PatchPage(ctx, pageID, props)
		return opErr
	}, nil)
	if err != nil {
		return nil, err
	}

	rec := recordFromPage(page)
	return &rec, nil
}

// SetNodeID writes the identity property.
func (l *Ledger) SetNodeID(ctx context.Context, pageID, nodeID string) error {
	return retry.Do(ctx, func() error {
		_, opErr := l.client.PatchPage(ctx, pageID, BuildNodeIDPatch(nodeID))
		return opErr
	}, nil)
}

// SetStatus writes the status property.
func (l *Ledger) SetStatus(ctx context.Context, pageID, statusName string) error {
	return retry.Do(ctx, func() error {
		_, opErr := l.client.PatchPage(ctx, pageID, BuildStatusPatch(statusName))
		return opErr
	}, nil)
}
