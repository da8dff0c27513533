package generator

import "strings"

// similarityThreshold is the keyword overlap above which two questions count
// as duplicates.
const similarityThreshold = 0.7

// dedupe drops drafts whose question overlaps an earlier kept draft by more
// than similarityThreshold. It returns the kept drafts and the numbers of the
// dropped ones.
func dedupe(drafts []numberedDraft) (kept []numberedDraft, dropped []int) {
	tokenSets := make([]map[string]bool, 0, len(drafts))
	for _, d := range drafts {
		tokens := tokenize(d.q.Question)
		duplicate := false
		for _, prev := range tokenSets {
			if jaccardSimilarity(tokens, prev) > similarityThreshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			dropped = append(dropped, d.n)
			continue
		}
		tokenSets = append(tokenSets, tokens)
		kept = append(kept, d)
	}
	return kept, dropped
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.Trim(word, ".,;:!?\"'()[]")
		// Skip very short words (articles, prepositions)
		if len(word) > 3 {
			tokens[word] = true
		}
	}
	return tokens
}

func jaccardSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
