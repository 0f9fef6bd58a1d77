// Package status translates planning-board status labels to ledger status labels.
package status

// Default is the ledger status assigned when the board status is missing
// or not in the known vocabulary.
const Default = "Not started"

// known is the closed set of statuses shared verbatim by the board and the
// ledger. Both sides use the same label text for these, so the mapping is
// the identity.
var known = map[string]bool{
	"Backlog":       true,
	"This week":     true,
	"In progress":   true,
	"In discussion": true,
	"Done":          true,
}

// Translate maps a board status label to a ledger status label. It is total:
// every input, including the empty string, yields a valid ledger status.
// Unknown labels are a normal case (a board can grow columns at any time)
// and fall back to Default rather than erroring.
func Translate(boardStatus string) string {
	if known[boardStatus] {
		return boardStatus
	}
	return Default
}

// Known reports whether s is part of the shared status vocabulary.
func Known(s string) bool {
	return known[s]
}

// Vocabulary returns the shared status labels in workflow order.
func Vocabulary() []string {
	return []string{"Backlog", "This week", "In progress", "In discussion", "Done"}
}
