package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"ghledger/internal/status"
)

// Engine orchestrates reconciliation of source items into the ledger.
// Items are processed strictly one at a time, in input order: this bounds
// destination API concurrency to one (rate-limit courtesy) and guarantees
// that if two items somehow share an identity signal, the second sees the
// first's already-repaired state.
type Engine struct {
	Sources Sources
	Ledger  Ledger
	// Board is the planning-board status source. Nil disables status
	// syncing; reconciliation then stops after the create/update write.
	Board Board
	Log   *slog.Logger

	// DryRun previews forward reconciliation without ledger writes.
	// Reads and the create-vs-update decision run exactly as live.
	DryRun bool

	resolver *Resolver
}

// NewEngine wires an engine. log must not be nil.
func NewEngine(sources Sources, ledger Ledger, board Board, log *slog.Logger) *Engine {
	return &Engine{
		Sources:  sources,
		Ledger:   ledger,
		Board:    board,
		Log:      log,
		resolver: &Resolver{Ledger: ledger, Log: log},
	}
}

// ReconcileOne syncs a single item: resolve identity, create or update the
// ledger record, then sync its board status. The identity check always runs
// before the create path, so one node ID never yields two records in a run.
func (e *Engine) ReconcileOne(ctx context.Context, item Item) (Outcome, error) {
	rec, err := e.resolver.Resolve(ctx, item, e.DryRun)
	if err != nil {
		return "", fmt.Errorf("resolving %s #%d: %w", item.Kind, item.Number, err)
	}

	if rec == nil {
		if e.DryRun {
			e.Log.Info("[dry-run] would create ledger record", "kind", item.Kind, "number", item.Number)
			return OutcomeCreated, nil
		}
		rec, err = e.create(ctx, item)
		if err != nil {
			return "", err
		}
		if err := e.syncStatus(ctx, item, rec); err != nil {
			return "", err
		}
		return OutcomeCreated, nil
	}

	if !e.DryRun {
		rec, err = e.update(ctx, rec.PageID, item)
		if err != nil {
			return "", err
		}
	} else {
		e.Log.Info("[dry-run] would update ledger record", "kind", item.Kind, "number", item.Number, "page_id", rec.PageID)
	}
	if err := e.syncStatus(ctx, item, rec); err != nil {
		return "", err
	}
	return OutcomeUpdated, nil
}

// create writes a record in create shape and then sets the identity
// property, which the destination cannot accept atomically at creation.
func (e *Engine) create(ctx context.Context, item Item) (*Record, error) {
	rec, err := e.Ledger.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("creating record for %s #%d: %w", item.Kind, item.Number, err)
	}
	if err := e.Ledger.SetNodeID(ctx, rec.PageID, item.NodeID); err != nil {
		return nil, fmt.Errorf("setting identity on %s: %w", rec.PageID, err)
	}
	rec.NodeID = item.NodeID
	e.Log.Info("created ledger record", "kind", item.Kind, "number", item.Number, "page_id", rec.PageID)
	return rec, nil
}

// update rewrites an existing record in update shape, which excludes
// create-only fields so the resync never resets manually edited ones.
func (e *Engine) update(ctx context.Context, pageID string, item Item) (*Record, error) {
	rec, err := e.Ledger.Update(ctx, pageID, item)
	if err != nil {
		return nil, fmt.Errorf("updating record for %s #%d: %w", item.Kind, item.Number, err)
	}
	e.Log.Info("updated ledger record", "kind", item.Kind, "number", item.Number, "page_id", pageID)
	return rec, nil
}

// syncStatus pulls the item's board status into the ledger. Items without a
// board status keep whatever status the ledger already has; they are never
// forced back to the default.
func (e *Engine) syncStatus(ctx context.Context, item Item, rec *Record) error {
	if e.Board == nil {
		return nil
	}

	boardStatus, ok, err := e.Board.ItemStatus(ctx, item.NodeID)
	if err != nil {
		return fmt.Errorf("fetching board status for %s #%d: %w", item.Kind, item.Number, err)
	}
	if !ok {
		return nil
	}

	_, err = e.applyStatus(ctx, rec, boardStatus, e.DryRun)
	return err
}

// applyStatus translates a board status and patches the record when the
// translated value differs from the record's current status. This is the
// single call site for status writes, which is what makes dry-run a
// faithful preview: every read and decision above it runs identically.
func (e *Engine) applyStatus(ctx context.Context, rec *Record, boardStatus string, dryRun bool) (changed bool, err error) {
	if boardStatus != "" && !status.Known(boardStatus) {
		e.Log.Warn("unknown board status, using default", "status", boardStatus, "default", status.Default)
	}
	translated := status.Translate(boardStatus)
	if rec.Status == translated {
		return false, nil
	}
	if dryRun {
		e.Log.Info("[dry-run] would update status",
			"page_id", rec.PageID, "from", rec.Status, "to", translated)
		return true, nil
	}
	if err := e.Ledger.SetStatus(ctx, rec.PageID, translated); err != nil {
		return false, fmt.Errorf("setting status on %s: %w", rec.PageID, err)
	}
	e.Log.Info("updated status", "page_id", rec.PageID, "from", rec.Status, "to", translated)
	rec.Status = translated
	return true, nil
}

// ReconcileBatch attempts every item and reports every failure. A single
// item's failure is isolated: it is recorded with the item's kind and
// number and the batch continues with the next item.
func (e *Engine) ReconcileBatch(ctx context.Context, items []Item) BatchResult {
	var result BatchResult
	for _, item := range items {
		if _, err := e.ReconcileOne(ctx, item); err != nil {
			e.Log.Error("item sync failed", "kind", item.Kind, "number", item.Number, "error", err)
			result.Failed = append(result.Failed, ItemFailure{
				Kind:   item.Kind,
				Number: item.Number,
				Err:    err,
			})
			continue
		}
		result.Succeeded++
	}
	return result
}
