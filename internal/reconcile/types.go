// Package reconcile syncs GitHub issues and pull requests into a Notion
// ledger database, and propagates planning-board status into the ledger.
//
// The engine talks to GitHub and Notion through narrow interfaces (Sources,
// Ledger, Board) so the reconciliation logic is testable with in-memory
// fakes and indifferent to transport details.
package reconcile

import (
	"time"
)

// ItemKind discriminates the two source item subtypes.
type ItemKind string

const (
	KindIssue ItemKind = "issue"
	KindPull  ItemKind = "pull"
)

// Item is one unit of work fetched from GitHub, normalized into a flat shape.
// Immutable once fetched; it lives for the duration of one run.
type Item struct {
	// NodeID is GitHub's opaque GraphQL node ID. It is globally unique and
	// survives repository transfers and renumbering, which issue numbers
	// do not, so it is the authoritative identity signal.
	NodeID string
	// Number is the repository-scoped issue/PR number. Unique within a
	// repository, reused across repositories.
	Number int

	Title  string
	Body   string
	State  string // "open" or "closed"
	Labels []string
	URL    string
	Kind   ItemKind

	// Pull request attributes (zero-valued for issues).
	Merged    bool
	Draft     bool
	Additions int
	Deletions int

	// BoardStatus is the Projects board status column for this item, when
	// the item was fetched through a board. Empty means not on a board or
	// no status assigned.
	BoardStatus string
}

// Record is one ledger entry (a Notion page) as seen by the engine.
type Record struct {
	PageID string
	Title  string
	Number int
	Status string
	State  string
	Labels []string
	URL    string
	Kind   string
	// NodeID is the identity property holding the source item's opaque
	// identifier as text. Notion's number property cannot hold a GraphQL
	// node ID without loss, hence rich text.
	NodeID string
	// LastEdited orders records when a lookup unexpectedly returns more
	// than one.
	LastEdited time.Time
}

// Outcome reports what ReconcileOne did for an item.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
)

// ItemFailure identifies one item whose reconciliation failed, and why.
type ItemFailure struct {
	Kind   ItemKind
	Number int
	Err    error
}

// BatchResult summarizes a ReconcileBatch run.
type BatchResult struct {
	Succeeded int
	Failed    []ItemFailure
}

// ReverseSummary summarizes a ReverseSync run. Unmatched holds the literal
// ledger records no source item could be found for, so an operator can
// reconcile them by hand.
type ReverseSummary struct {
	Matched   int
	Updated   int
	Skipped   int
	Unmatched []Record
}
