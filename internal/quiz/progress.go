package quiz

import (
	"bytes"
	"encoding/json"
	"math"
)

// PickPolicy decides whether a recorded pick may be replaced.
type PickPolicy int

const (
	// FirstAnswerWins ignores every pick after the first for a question.
	FirstAnswerWins PickPolicy = iota
	// ChangeUntilNavigate lets the learner replace the pick they just made
	// while the question is still on screen. Any navigation locks it.
	ChangeUntilNavigate
)

func (p PickPolicy) String() string {
	switch p {
	case ChangeUntilNavigate:
		return "change-until-navigate"
	default:
		return "first-answer-wins"
	}
}

// ParsePickPolicy maps a config value to a policy; unknown values fall back
// to FirstAnswerWins.
func ParsePickPolicy(s string) PickPolicy {
	if s == ChangeUntilNavigate.String() {
		return ChangeUntilNavigate
	}
	return FirstAnswerWins
}

type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseActive
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseFinished:
		return "finished"
	default:
		return "uninitialized"
	}
}

// State is the learner's progress through one quiz set.
type State struct {
	Order    []int          `json:"order"`
	Index    int            `json:"index"`
	Picks    map[string]int `json:"picks"`
	Finished bool           `json:"finished"`
	Set      string         `json:"set,omitempty"`
	Seed     uint64         `json:"seed,omitempty"`

	// open is the question whose pick may still change under
	// ChangeUntilNavigate. Never persisted.
	open ID
}

func (s State) Phase() Phase {
	switch {
	case len(s.Order) == 0:
		return PhaseUninitialized
	case s.Finished:
		return PhaseFinished
	default:
		return PhaseActive
	}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	if s.Order != nil {
		out.Order = append([]int(nil), s.Order...)
	}
	out.Picks = make(map[string]int, len(s.Picks))
	for k, v := range s.Picks {
		out.Picks[k] = v
	}
	return out
}

// Fresh builds a new state for n questions. With shuffleOrder off the order is
// the source order.
func Fresh(n int, setID string, r Rand, shuffleOrder bool) State {
	order := identity(n)
	if shuffleOrder {
		order = Perm(r, n)
	}
	return State{
		Order: order,
		Picks: map[string]int{},
		Set:   setID,
		Seed:  drawSeed(r),
	}
}

func drawSeed(r Rand) uint64 {
	return uint64(r.IntN(math.MaxInt))
}

// Restore adopts a persisted state when it fits a set of n questions, and
// otherwise starts fresh. A persisted order fits when it is a permutation of
// [0, n) and was saved for the same set.
func Restore(n int, persisted ParseResult, setID string, r Rand, shuffleOrder bool) State {
	if persisted.Status != ParseValid || n <= 0 {
		return Fresh(n, setID, r, shuffleOrder)
	}
	saved := persisted.State
	if saved.Set != "" && saved.Set != setID {
		return Fresh(n, setID, r, shuffleOrder)
	}
	if !isPermutation(saved.Order, n) {
		return Fresh(n, setID, r, shuffleOrder)
	}
	st := saved.Clone()
	st.Set = setID
	st.Index = clamp(st.Index, 0, n-1)
	st.open = ""
	return st
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range order {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Pick records choice for question qid. It reports whether the state changed.
func (s *State) Pick(qid ID, choice int, policy PickPolicy) bool {
	if choice < 0 {
		return false
	}
	key := string(qid)
	if prev, ok := s.Picks[key]; ok {
		if policy != ChangeUntilNavigate || s.open != qid || prev == choice {
			return false
		}
	}
	if s.Picks == nil {
		s.Picks = map[string]int{}
	}
	s.Picks[key] = choice
	s.open = qid
	return true
}

// Advance moves to the next position, or marks the quiz finished when already
// on the last one.
func (s *State) Advance() {
	if len(s.Order) == 0 {
		return
	}
	s.open = ""
	if s.Index >= len(s.Order)-1 {
		s.Index = len(s.Order) - 1
		s.Finished = true
		return
	}
	s.Index++
	s.Finished = false
}

func (s *State) Retreat() {
	if len(s.Order) == 0 {
		return
	}
	s.open = ""
	s.Index = clamp(s.Index-1, 0, len(s.Order)-1)
	s.Finished = false
}

func (s *State) JumpTo(pos int) {
	if len(s.Order) == 0 {
		return
	}
	s.open = ""
	s.Index = clamp(pos, 0, len(s.Order)-1)
	s.Finished = false
}

// Reset clears picks and rewinds to the start, keeping the order.
func (s *State) Reset() {
	s.open = ""
	s.Picks = map[string]int{}
	s.Index = 0
	s.Finished = false
}

// Reshuffle replaces the state with a fresh one for n questions.
func (s *State) Reshuffle(n int, r Rand, shuffleOrder bool) {
	*s = Fresh(n, s.Set, r, shuffleOrder)
}

func (s State) Answered(qid ID) bool {
	_, ok := s.Picks[string(qid)]
	return ok
}

// Current returns the question at the current position. It reports false when
// there is none, which is how an empty set surfaces.
func (s State) Current(questions []Question) (Question, bool) {
	if s.Index < 0 || s.Index >= len(s.Order) {
		return Question{}, false
	}
	qi := s.Order[s.Index]
	if qi < 0 || qi >= len(questions) {
		return Question{}, false
	}
	return questions[qi], true
}

// Score counts correctly answered questions. It is computed on every call.
func (s State) Score(questions []Question) int {
	score := 0
	for _, qi := range s.Order {
		if qi < 0 || qi >= len(questions) {
			continue
		}
		q := questions[qi]
		if pick, ok := s.Picks[string(q.ID)]; ok && q.IsCorrect(pick) {
			score++
		}
	}
	return score
}

type ParseStatus int

const (
	ParseAbsent ParseStatus = iota
	ParseMalformed
	ParseValid
)

func (p ParseStatus) String() string {
	switch p {
	case ParseMalformed:
		return "malformed"
	case ParseValid:
		return "valid"
	default:
		return "absent"
	}
}

// ParseResult is the outcome of decoding a persisted blob. State is only
// meaningful when Status is ParseValid.
type ParseResult struct {
	Status ParseStatus
	State  State
}

// ParseState decodes a persisted progress blob without trusting any field.
// Fields of the wrong shape fall back to their zero value; a negative or
// non-numeric index becomes 0 and picks that are not non-negative integers
// are dropped. Order is kept as decoded and checked later against the set.
func ParseState(raw []byte, ok bool) ParseResult {
	raw = bytes.TrimSpace(raw)
	if !ok || len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ParseResult{Status: ParseAbsent}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ParseResult{Status: ParseMalformed}
	}

	st := State{Picks: map[string]int{}}

	var order []int
	if err := json.Unmarshal(fields["order"], &order); err == nil {
		st.Order = order
	}

	var idx float64
	if err := json.Unmarshal(fields["index"], &idx); err == nil {
		switch {
		case idx < 0:
			st.Index = 0
		case idx > math.MaxInt32:
			st.Index = math.MaxInt32
		default:
			st.Index = int(idx)
		}
	}

	var picks map[string]json.RawMessage
	if err := json.Unmarshal(fields["picks"], &picks); err == nil {
		for k, v := range picks {
			var f float64
			if err := json.Unmarshal(v, &f); err != nil {
				continue
			}
			if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
				continue
			}
			st.Picks[k] = int(f)
		}
	}

	var finished bool
	if err := json.Unmarshal(fields["finished"], &finished); err == nil {
		st.Finished = finished
	}

	var set string
	if err := json.Unmarshal(fields["set"], &set); err == nil {
		st.Set = set
	}

	var seed uint64
	if err := json.Unmarshal(fields["seed"], &seed); err == nil {
		st.Seed = seed
	}

	return ParseResult{Status: ParseValid, State: st}
}

// Encode serializes the state for persistence.
func (s State) Encode() ([]byte, error) {
	out := s
	if out.Order == nil {
		out.Order = []int{}
	}
	if out.Picks == nil {
		out.Picks = map[string]int{}
	}
	return json.Marshal(out)
}
