package reconcile

import "context"

// Sources retrieves items from GitHub, already paginated and normalized.
type Sources interface {
	// FetchItem retrieves a single item by number. Returns nil, nil when
	// the item does not exist.
	FetchItem(ctx context.Context, number int) (*Item, error)

	// FetchRepoItems retrieves all issues and pull requests in the
	// configured repository. state is "open", "closed", or "all".
	FetchRepoItems(ctx context.Context, state string) ([]Item, error)

	// FetchBoardItems retrieves all items currently tracked by the
	// configured planning board, with BoardStatus populated.
	FetchBoardItems(ctx context.Context) ([]Item, error)
}

// Ledger reads and writes ledger records. Implementations are expected to
// wrap every write in the transient-failure retry policy; the engine does
// not re-wrap.
type Ledger interface {
	// FindByNodeID returns records whose identity property equals nodeID.
	FindByNodeID(ctx context.Context, nodeID string) ([]Record, error)

	// FindByNumber returns records whose number property equals number.
	FindByNumber(ctx context.Context, number int) ([]Record, error)

	// FindByURL returns records whose URL property equals url.
	FindByURL(ctx context.Context, url string) ([]Record, error)

	// FindByStatus returns records whose status is one of statuses.
	FindByStatus(ctx context.Context, statuses []string) ([]Record, error)

	// Create writes a new record in create shape (one-time fields included,
	// identity property excluded; see SetNodeID).
	Create(ctx context.Context, item Item) (*Record, error)

	// Update rewrites an existing record in update shape, which omits
	// create-only fields so a resync never resets manually edited ones.
	Update(ctx context.Context, pageID string, item Item) (*Record, error)

	// SetNodeID writes the identity property. Separate from Create because
	// the destination cannot accept the identity value atomically at
	// creation time.
	SetNodeID(ctx context.Context, pageID, nodeID string) error

	// SetStatus writes the status property.
	SetStatus(ctx context.Context, pageID, statusName string) error
}

// Board reads per-item status from the planning board. Optional: an engine
// with a nil Board skips status syncing entirely.
type Board interface {
	// ItemStatus returns the board status for the item with the given node
	// ID. ok is false when the item is not on the board or has no status
	// assigned; the caller must then leave the ledger status untouched.
	ItemStatus(ctx context.Context, nodeID string) (statusName string, ok bool, err error)
}
