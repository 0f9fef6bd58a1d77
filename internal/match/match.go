// Package match finds the source item behind a free-text ledger title.
//
// Titles are matched by a structured key prefix first ("PROJ-42: Fix crash"),
// then by exact normalized text. The structured key is authoritative: titles
// are free text and can collide or be renamed, so a key match always beats a
// text match. The text fallback deliberately requires exact equality after
// normalization; substring matching cross-matches any short title against any
// longer one containing it, so it is available only as an explicit loose mode.
package match

import (
	"regexp"
	"strings"
)

// Kind tags which rule produced a match.
type Kind string

const (
	KindStructuredPrefix Kind = "structured-prefix"
	KindNormalizedText   Kind = "normalized-text"
	KindNone             Kind = "none"
)

// Result describes the outcome of a title match. Index is the position of
// the matched candidate, or -1 when Kind is KindNone. Evidence is the key
// or normalized text the decision was based on.
type Result struct {
	Index    int
	Kind     Kind
	Evidence string
}

// keyPattern recognizes a structured prefix of the form "TAG-<digits>:".
var keyPattern = regexp.MustCompile(`^([A-Za-z]+)-(\d+):`)

// ExtractKey returns the structured key ("TAG-42") embedded at the start of
// title, if any. The tag is upper-cased so key comparison is case-insensitive.
func ExtractKey(title string) (string, bool) {
	m := keyPattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]) + "-" + m[2], true
}

// Normalize strips a leading structured prefix, trims whitespace, and folds
// case, producing the canonical form used by the text fallback.
func Normalize(title string) string {
	t := strings.TrimSpace(title)
	if m := keyPattern.FindStringSubmatch(t); m != nil {
		t = strings.TrimSpace(t[len(m[0]):])
	}
	return strings.ToLower(t)
}

// Matcher matches ledger titles against candidate source titles.
// The zero value uses exact-match-only semantics.
type Matcher struct {
	// Loose additionally accepts one normalized title being a substring of
	// the other. Off by default; enable only when the title space is known
	// to be collision-free.
	Loose bool
}

// Match finds at most one candidate for title. The structured key is checked
// first across all candidates; only if no candidate carries the same key does
// the normalized-text fallback run. The first candidate satisfying a rule wins.
func (m Matcher) Match(title string, candidates []string) Result {
	if key, ok := ExtractKey(title); ok {
		for i, c := range candidates {
			ck, ok := ExtractKey(c)
			if ok && ck == key {
				return Result{Index: i, Kind: KindStructuredPrefix, Evidence: key}
			}
		}
	}

	norm := Normalize(title)
	if norm != "" {
		for i, c := range candidates {
			cn := Normalize(c)
			if cn == norm {
				return Result{Index: i, Kind: KindNormalizedText, Evidence: norm}
			}
			if m.Loose && cn != "" && (strings.Contains(cn, norm) || strings.Contains(norm, cn)) {
				return Result{Index: i, Kind: KindNormalizedText, Evidence: norm}
			}
		}
	}

	return Result{Index: -1, Kind: KindNone}
}
