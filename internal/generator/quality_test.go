package generator

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func TestJaccardSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 0},
		{"alpha bravo charlie", "alpha bravo charlie", 1},
		{"alpha bravo", "charlie delta", 0},
		{"alpha bravo charlie", "alpha bravo delta", 0.5},
		{"The cache, the CACHE!", "cache", 1},
	}
	for _, tt := range tests {
		got := jaccardSimilarity(tokenize(tt.a), tokenize(tt.b))
		if !almostEqual(got, tt.want) {
			t.Errorf("jaccardSimilarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDedupe(t *testing.T) {
	drafts := []numberedDraft{
		{n: 1, q: DraftQuestion{Question: "What does a write-back cache delay?"}},
		{n: 2, q: DraftQuestion{Question: "What does a write-back cache delay??"}},
		{n: 3, q: DraftQuestion{Question: "Which protocol resolves hostnames into addresses?"}},
	}
	kept, dropped := dedupe(drafts)
	if len(kept) != 2 || kept[0].n != 1 || kept[1].n != 3 {
		t.Errorf("kept = %+v, want drafts 1 and 3", kept)
	}
	if len(dropped) != 1 || dropped[0] != 2 {
		t.Errorf("dropped = %v, want [2]", dropped)
	}
}
