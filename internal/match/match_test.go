package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ghledger/internal/match"
)

func TestExtractKey(t *testing.T) {
	tests := []struct {
		name  string
		title string
		key   string
		ok    bool
	}{
		{"simple", "PROJ-42: Fix crash", "PROJ-42", true},
		{"lowercase tag folds up", "proj-42: Fix crash", "PROJ-42", true},
		{"leading whitespace", "  CORE-7: thing", "CORE-7", true},
		{"no colon", "PROJ-42 Fix crash", "", false},
		{"key not at start", "Fix PROJ-42: crash", "", false},
		{"digits in tag", "P2P-3: relay", "", false},
		{"no key at all", "Fix crash", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := match.ExtractKey(tt.title)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"strips key and folds case", "PROJ-42: Fix Crash", "fix crash"},
		{"trims whitespace", "  Fix Crash  ", "fix crash"},
		{"no key", "Fix Crash", "fix crash"},
		{"key only", "PROJ-42:", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, match.Normalize(tt.title))
		})
	}
}

func TestMatchStructuredKeyBeatsText(t *testing.T) {
	candidates := []string{
		"fix crash", // exact text match for the normalized title
		"PROJ-42: totally different wording",
	}
	res := match.Matcher{}.Match("proj-42: Fix Crash", candidates)
	assert.Equal(t, match.KindStructuredPrefix, res.Kind)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, "PROJ-42", res.Evidence)
}

func TestMatchNormalizedTextFallback(t *testing.T) {
	candidates := []string{"Update docs", "Fix Crash"}
	res := match.Matcher{}.Match("PROJ-42: fix crash", candidates)
	assert.Equal(t, match.KindNormalizedText, res.Kind)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, "fix crash", res.Evidence)
}

func TestMatchExactOnlyByDefault(t *testing.T) {
	candidates := []string{"Fix crash in parser on malformed input"}

	res := match.Matcher{}.Match("Fix crash", candidates)
	assert.Equal(t, match.KindNone, res.Kind)
	assert.Equal(t, -1, res.Index)

	res = match.Matcher{Loose: true}.Match("Fix crash", candidates)
	assert.Equal(t, match.KindNormalizedText, res.Kind)
	assert.Equal(t, 0, res.Index)
}

func TestMatchEmptyTitleNeverMatches(t *testing.T) {
	res := match.Matcher{Loose: true}.Match("", []string{"", "anything"})
	assert.Equal(t, match.KindNone, res.Kind)
}

func TestMatchNoCandidates(t *testing.T) {
	res := match.Matcher{}.Match("PROJ-1: x", nil)
	assert.Equal(t, match.KindNone, res.Kind)
	assert.Equal(t, -1, res.Index)
}
