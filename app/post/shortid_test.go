package post

import (
	"strings"
	"testing"
)

func TestShortIDKnownValues(t *testing.T) {
	// Fixed vectors: sha256(seed), first 12 bytes, base-58.
	tests := []struct {
		seed string
		want string
	}{
		{"youtubeVideo_dQw4w9WgXcQ", "5NHeakUVCSPcZaqXg"},
		{"forumThread_123", "5hc3KK9RiFBFxXRRz"},
		{"patreonPost_112233445", "24LzCZAZs1icu2H5n"},
		{"hello", "RcgVPnoozqSczums"},
	}

	for _, tt := range tests {
		if got := ShortID(tt.seed); got != tt.want {
			t.Errorf("ShortID(%q) = %q, want %q", tt.seed, got, tt.want)
		}
	}
}

func TestShortIDDeterministic(t *testing.T) {
	first := ShortID("forumThread_42")
	second := ShortID("forumThread_42")
	if first != second {
		t.Errorf("ShortID is not deterministic: %q != %q", first, second)
	}
}

func TestShortIDDistinctSeeds(t *testing.T) {
	if ShortID("youtubeVideo_a") == ShortID("forumThread_a") {
		t.Error("Different source tags must produce different ids for the same native id")
	}
}

func TestShortIDAlphabet(t *testing.T) {
	id := ShortID("patreonPost_90210")
	for _, r := range id {
		if !strings.ContainsRune(base58Alphabet, r) {
			t.Errorf("ShortID produced character %q outside the base-58 alphabet", r)
		}
	}
	for _, forbidden := range "0OIl" {
		if strings.ContainsRune(id, forbidden) {
			t.Errorf("ShortID must not contain confusable character %q", forbidden)
		}
	}
}
