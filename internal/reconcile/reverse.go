package reconcile

import (
	"context"
	"fmt"
	"time"

	"ghledger/internal/match"
	"ghledger/internal/status"
)

// pacingDelay is the courtesy pause between matched records in the reverse
// path, keeping the destination API under its rate limit.
const pacingDelay = 100 * time.Millisecond

// ReverseOptions configures a ReverseSync run.
type ReverseOptions struct {
	// DryRun performs every read and matching decision but suppresses the
	// final status patch.
	DryRun bool
	// Statuses filters which ledger records are considered. Empty means
	// the full shared vocabulary.
	Statuses []string
	// LooseTitles enables substring title matching. Off by default: it
	// cross-matches any short title against any longer one containing it.
	LooseTitles bool
}

// ReverseSync walks the ledger records in the given statuses, finds the
// board item behind each record's title, and pulls that item's board status
// into the record. Records that match no item are reported verbatim in the
// summary so an operator can reconcile them by hand.
func (e *Engine) ReverseSync(ctx context.Context, opts ReverseOptions) (*ReverseSummary, error) {
	statuses := opts.Statuses
	if len(statuses) == 0 {
		statuses = status.Vocabulary()
	}

	recs, err := e.Ledger.FindByStatus(ctx, statuses)
	if err != nil {
		return nil, fmt.Errorf("querying ledger by status: %w", err)
	}

	items, err := e.Sources.FetchBoardItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching board items: %w", err)
	}

	titles := make([]string, len(items))
	for i := range items {
		titles[i] = items[i].Title
	}
	matcher := match.Matcher{Loose: opts.LooseTitles}

	summary := &ReverseSummary{}
	for i := range recs {
		rec := &recs[i]

		res := matcher.Match(rec.Title, titles)
		if res.Kind == match.KindNone {
			e.Log.Debug("no board item for ledger record", "title", rec.Title)
			summary.Unmatched = append(summary.Unmatched, *rec)
			continue
		}
		item := items[res.Index]
		summary.Matched++
		e.Log.Debug("matched ledger record to board item",
			"title", rec.Title, "number", item.Number, "rule", res.Kind, "evidence", res.Evidence)

		if item.BoardStatus == "" {
			// No status assigned on the board; never force the record
			// back to the default.
			summary.Skipped++
			continue
		}

		changed, err := e.applyStatus(ctx, rec, item.BoardStatus, opts.DryRun)
		if err != nil {
			return summary, err
		}
		if changed {
			summary.Updated++
		} else {
			summary.Skipped++
		}

		if i < len(recs)-1 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(pacingDelay):
			}
		}
	}

	return summary, nil
}
