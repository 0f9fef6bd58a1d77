package reconcile

import (
	"context"
	"log/slog"
)

// Resolver finds the ledger record for a source item, trying identity
// signals from strongest to weakest. At most one record is "the" match; the
// first strategy that yields a result wins and later strategies never run.
type Resolver struct {
	Ledger Ledger
	Log    *slog.Logger
}

// Resolve returns the matching ledger record for item, or nil when none
// exists. A failure inside a single lookup strategy is downgraded to "no
// result from this strategy" so the remaining strategies still run; only a
// full miss across all three means "create one".
//
// Records found by number or URL predate the node-ID identity scheme or
// carry a stale value, so Resolve repairs the identity property before
// returning them. The repair is best-effort: the match is still returned if
// the write fails, because the caller's subsequent update targets the
// correct page regardless. With dryRun set the repair is announced instead
// of written; Resolve then performs no ledger writes at all.
func (r *Resolver) Resolve(ctx context.Context, item Item, dryRun bool) (*Record, error) {
	if rec := r.lookup(ctx, "node_id", func(ctx context.Context) ([]Record, error) {
		return r.Ledger.FindByNodeID(ctx, item.NodeID)
	}); rec != nil {
		return rec, nil // Exact identity hit: nothing to repair.
	}

	for _, s := range []struct {
		name string
		find func(ctx context.Context) ([]Record, error)
	}{
		{"number", func(ctx context.Context) ([]Record, error) {
			return r.Ledger.FindByNumber(ctx, item.Number)
		}},
		{"url", func(ctx context.Context) ([]Record, error) {
			return r.Ledger.FindByURL(ctx, item.URL)
		}},
	} {
		if rec := r.lookup(ctx, s.name, s.find); rec != nil {
			r.repair(ctx, rec, item, dryRun)
			return rec, nil
		}
	}

	return nil, nil
}

// lookup runs one strategy, swallowing its errors and disambiguating
// multi-record results.
func (r *Resolver) lookup(ctx context.Context, strategy string, find func(ctx context.Context) ([]Record, error)) *Record {
	recs, err := find(ctx)
	if err != nil {
		r.Log.Warn("ledger lookup failed, trying next strategy",
			"strategy", strategy, "error", err)
		return nil
	}
	if len(recs) == 0 {
		return nil
	}
	if len(recs) > 1 {
		// Duplicate signals (two pages with the same number, say) should
		// not exist but can. Take the most recently edited page so the
		// choice is at least deterministic, and tell the operator.
		best := 0
		for i := range recs {
			if recs[i].LastEdited.After(recs[best].LastEdited) {
				best = i
			}
		}
		r.Log.Warn("multiple ledger records matched, using most recently edited",
			"strategy", strategy, "matches", len(recs), "page_id", recs[best].PageID)
		return &recs[best]
	}
	return &recs[0]
}

// repair corrects a stale or missing identity property on a record matched
// by a weaker signal.
func (r *Resolver) repair(ctx context.Context, rec *Record, item Item, dryRun bool) {
	if rec.NodeID == item.NodeID {
		return
	}
	if dryRun {
		r.Log.Info("[dry-run] would repair ledger identity property",
			"page_id", rec.PageID, "node_id", item.NodeID)
		return
	}
	if err := r.Ledger.SetNodeID(ctx, rec.PageID, item.NodeID); err != nil {
		r.Log.Warn("identity repair failed, continuing with match",
			"page_id", rec.PageID, "node_id", item.NodeID, "error", err)
		return
	}
	rec.NodeID = item.NodeID
	r.Log.Info("repaired ledger identity property",
		"page_id", rec.PageID, "node_id", item.NodeID)
}
