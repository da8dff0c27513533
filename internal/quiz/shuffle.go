package quiz

import (
	"math/rand/v2"
	"time"
)

// Rand is the randomness source the shuffles draw from. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	// IntN returns a uniform integer in [0, n). n > 0.
	IntN(n int) int
}

// NewRand returns a deterministic source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandFromTime returns a source seeded from the wall clock.
func NewRandFromTime() *rand.Rand {
	return NewRand(uint64(time.Now().UnixNano()))
}

// Shuffle returns a uniformly permuted copy of s using Fisher–Yates. The input
// is not modified.
func Shuffle[T any](r Rand, s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	for i := len(out) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Perm returns a random permutation of [0, n).
func Perm(r Rand, n int) []int {
	return Shuffle(r, identity(n))
}

func identity(n int) []int {
	if n < 0 {
		n = 0
	}
	seq := make([]int, n)
	for i := range seq {
		seq[i] = i
	}
	return seq
}

type choiceTriple struct {
	text        string
	explanation string
	idx         int
}

// ShuffleChoices permutes a question's choices together with their per-choice
// explanations and moves Answer to the new position of the originally correct
// choice. An out-of-range Answer resolves to 0.
func ShuffleChoices(r Rand, q Question) Question {
	hasExplanations := len(q.ChoiceExplanations) > 0

	triples := make([]choiceTriple, len(q.Choices))
	for i, text := range q.Choices {
		t := choiceTriple{text: text, idx: i}
		if i < len(q.ChoiceExplanations) {
			t.explanation = q.ChoiceExplanations[i]
		}
		triples[i] = t
	}

	mixed := Shuffle(r, triples)

	out := q
	out.Choices = make([]string, len(mixed))
	if hasExplanations {
		out.ChoiceExplanations = make([]string, len(mixed))
	} else {
		out.ChoiceExplanations = nil
	}
	out.Answer = 0
	for i, t := range mixed {
		out.Choices[i] = t.text
		if hasExplanations {
			out.ChoiceExplanations[i] = t.explanation
		}
		if t.idx == q.Answer {
			out.Answer = i
		}
	}
	return out
}

// shuffleSetChoices shuffles every question's choices from a single source
// seeded with seed, so the same seed and set always yield the same layout.
func shuffleSetChoices(seed uint64, questions []Question) []Question {
	r := NewRand(seed)
	out := make([]Question, len(questions))
	for i, q := range questions {
		out[i] = ShuffleChoices(r, q)
	}
	return out
}
