package quiz

import (
	"reflect"
	"slices"
	"testing"
)

func isPerm(order []int, n int) bool {
	s := slices.Clone(order)
	slices.Sort(s)
	return reflect.DeepEqual(s, identity(n))
}

func TestRestore_NoPersistedState(t *testing.T) {
	st := Restore(5, ParseResult{Status: ParseAbsent}, "", NewRand(1), true)

	if !isPerm(st.Order, 5) {
		t.Errorf("Order = %v, want permutation of [0,5)", st.Order)
	}
	if st.Index != 0 {
		t.Errorf("Index = %d, want 0", st.Index)
	}
	if len(st.Picks) != 0 || st.Picks == nil {
		t.Errorf("Picks = %v, want empty non-nil map", st.Picks)
	}
	if st.Finished {
		t.Errorf("Finished = true, want false")
	}
}

func TestRestore_ClampsIndex(t *testing.T) {
	res := ParseState([]byte(`{"order":[2,0,1],"index":7,"picks":{},"finished":false}`), true)
	st := Restore(3, res, "", NewRand(1), true)

	if !reflect.DeepEqual(st.Order, []int{2, 0, 1}) {
		t.Errorf("Order = %v, want [2 0 1]", st.Order)
	}
	if st.Index != 2 {
		t.Errorf("Index = %d, want 2", st.Index)
	}
}

func TestRestore_SizeMismatchDiscards(t *testing.T) {
	res := ParseState([]byte(`{"order":[0,1],"index":1,"picks":{"q0":1},"finished":true}`), true)
	st := Restore(3, res, "", NewRand(1), true)

	if !isPerm(st.Order, 3) {
		t.Errorf("Order = %v, want permutation of [0,3)", st.Order)
	}
	if st.Index != 0 || st.Finished || len(st.Picks) != 0 {
		t.Errorf("stale state leaked: %+v", st)
	}
}

func TestRestore_RejectsNonPermutation(t *testing.T) {
	tests := []string{
		`{"order":[0,0,1]}`,
		`{"order":[0,1,3]}`,
		`{"order":[-1,0,1]}`,
		`{"order":"012"}`,
	}
	for _, raw := range tests {
		st := Restore(3, ParseState([]byte(raw), true), "", NewRand(1), true)
		if !isPerm(st.Order, 3) {
			t.Errorf("Restore(%s).Order = %v, want a fresh permutation", raw, st.Order)
		}
	}
}

func TestRestore_OtherSetIsStale(t *testing.T) {
	res := ParseState([]byte(`{"order":[0,1,2],"index":2,"picks":{"a":1},"set":"lecture:1"}`), true)
	st := Restore(3, res, "lecture:2", NewRand(1), true)

	if st.Index != 0 || len(st.Picks) != 0 {
		t.Errorf("state from another set adopted: %+v", st)
	}
	if st.Set != "lecture:2" {
		t.Errorf("Set = %q, want lecture:2", st.Set)
	}
}

func TestRestore_UntaggedStateAdopted(t *testing.T) {
	res := ParseState([]byte(`{"order":[1,0],"index":1,"picks":{"a":0},"finished":true}`), true)
	st := Restore(2, res, "bundled", NewRand(1), true)

	if !reflect.DeepEqual(st.Order, []int{1, 0}) || st.Index != 1 || !st.Finished || st.Picks["a"] != 0 {
		t.Errorf("Restore = %+v, want saved state adopted", st)
	}
}

func TestRestore_UnshuffledOrder(t *testing.T) {
	st := Restore(4, ParseResult{}, "", NewRand(1), false)
	if !reflect.DeepEqual(st.Order, []int{0, 1, 2, 3}) {
		t.Errorf("Order = %v, want source order", st.Order)
	}
}

func TestRestore_EmptySet(t *testing.T) {
	st := Restore(0, ParseState([]byte(`{"order":[],"index":0}`), true), "", NewRand(1), true)
	if len(st.Order) != 0 {
		t.Errorf("Order = %v, want empty", st.Order)
	}
	if _, ok := st.Current(nil); ok {
		t.Errorf("Current on empty set reported a question")
	}
	if st.Phase() != PhaseUninitialized {
		t.Errorf("Phase = %v, want uninitialized", st.Phase())
	}
}

func TestParseState(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		ok     bool
		status ParseStatus
		index  int
		picks  map[string]int
	}{
		{name: "missing", raw: "", ok: false, status: ParseAbsent},
		{name: "empty", raw: "  ", ok: true, status: ParseAbsent},
		{name: "null", raw: "null", ok: true, status: ParseAbsent},
		{name: "corrupt", raw: "{order:", ok: true, status: ParseMalformed},
		{name: "array", raw: "[1,2]", ok: true, status: ParseMalformed},
		{name: "string index", raw: `{"order":[0],"index":"3"}`, ok: true, status: ParseValid, index: 0, picks: map[string]int{}},
		{name: "negative index", raw: `{"order":[0],"index":-4}`, ok: true, status: ParseValid, index: 0, picks: map[string]int{}},
		{name: "fractional index", raw: `{"order":[0,1],"index":1.7}`, ok: true, status: ParseValid, index: 1, picks: map[string]int{}},
		{
			name:   "bad picks dropped",
			raw:    `{"order":[0],"picks":{"a":1,"b":"x","c":-1,"d":1.5,"e":0}}`,
			ok:     true,
			status: ParseValid,
			picks:  map[string]int{"a": 1, "e": 0},
		},
		{name: "picks not an object", raw: `{"order":[0],"picks":[1]}`, ok: true, status: ParseValid, picks: map[string]int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseState([]byte(tt.raw), tt.ok)
			if got.Status != tt.status {
				t.Fatalf("ParseState(%q).Status = %v, want %v", tt.raw, got.Status, tt.status)
			}
			if tt.status != ParseValid {
				return
			}
			if got.State.Index != tt.index {
				t.Errorf("Index = %d, want %d", got.State.Index, tt.index)
			}
			if !reflect.DeepEqual(got.State.Picks, tt.picks) {
				t.Errorf("Picks = %v, want %v", got.State.Picks, tt.picks)
			}
		})
	}
}

func TestState_EncodeRoundTrip(t *testing.T) {
	st := State{Order: []int{1, 0, 2}, Index: 1, Picks: map[string]int{"q": 2}, Finished: true, Set: "s", Seed: 77}
	data, err := st.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got := ParseState(data, true)
	if got.Status != ParseValid {
		t.Fatalf("Status = %v, want valid", got.Status)
	}
	if !reflect.DeepEqual(got.State, st) {
		t.Errorf("round trip = %+v, want %+v", got.State, st)
	}
}

func TestPick_FirstAnswerWins(t *testing.T) {
	st := Fresh(3, "", NewRand(1), true)

	if !st.Pick("q1", 2, FirstAnswerWins) {
		t.Fatalf("first pick not recorded")
	}
	if st.Pick("q1", 0, FirstAnswerWins) {
		t.Errorf("second pick reported a change")
	}
	if st.Picks["q1"] != 2 {
		t.Errorf(`Picks["q1"] = %d, want 2`, st.Picks["q1"])
	}
}

func TestPick_ChangeUntilNavigate(t *testing.T) {
	st := Fresh(3, "", NewRand(1), true)

	st.Pick("q1", 2, ChangeUntilNavigate)
	if !st.Pick("q1", 0, ChangeUntilNavigate) {
		t.Fatalf("change before navigating was refused")
	}
	if st.Picks["q1"] != 0 {
		t.Errorf(`Picks["q1"] = %d, want 0`, st.Picks["q1"])
	}

	st.Advance()
	st.Retreat()
	if st.Pick("q1", 1, ChangeUntilNavigate) {
		t.Errorf("change after navigating was accepted")
	}
	if st.Picks["q1"] != 0 {
		t.Errorf(`Picks["q1"] = %d, want 0`, st.Picks["q1"])
	}
}

func TestPick_NegativeChoiceIgnored(t *testing.T) {
	st := Fresh(1, "", NewRand(1), true)
	if st.Pick("q", -1, FirstAnswerWins) {
		t.Errorf("negative pick recorded")
	}
	if st.Answered("q") {
		t.Errorf("Answered = true after negative pick")
	}
}

func TestAdvanceRetreat(t *testing.T) {
	st := State{Order: []int{0, 1, 2}, Index: 2, Picks: map[string]int{}}

	st.Advance()
	if !st.Finished || st.Index != 2 {
		t.Fatalf("Advance at end: Index=%d Finished=%v, want 2 true", st.Index, st.Finished)
	}
	if st.Phase() != PhaseFinished {
		t.Errorf("Phase = %v, want finished", st.Phase())
	}

	st.Retreat()
	if st.Finished || st.Index != 1 {
		t.Errorf("Retreat: Index=%d Finished=%v, want 1 false", st.Index, st.Finished)
	}

	st.Retreat()
	st.Retreat()
	if st.Index != 0 {
		t.Errorf("Retreat past start: Index=%d, want 0", st.Index)
	}

	st.Advance()
	if st.Index != 1 || st.Finished {
		t.Errorf("Advance: Index=%d Finished=%v, want 1 false", st.Index, st.Finished)
	}
}

func TestJumpTo(t *testing.T) {
	tests := []struct {
		pos  int
		want int
	}{
		{0, 0},
		{3, 3},
		{4, 4},
		{9, 4},
		{-2, 0},
	}
	for _, tt := range tests {
		st := State{Order: []int{0, 1, 2, 3, 4}, Finished: true}
		st.JumpTo(tt.pos)
		if st.Index != tt.want || st.Finished {
			t.Errorf("JumpTo(%d): Index=%d Finished=%v, want %d false", tt.pos, st.Index, st.Finished, tt.want)
		}
	}
}

func TestResetKeepsOrder(t *testing.T) {
	st := State{Order: []int{2, 0, 1}, Index: 2, Picks: map[string]int{"a": 1}, Finished: true}
	st.Reset()
	if !reflect.DeepEqual(st.Order, []int{2, 0, 1}) {
		t.Errorf("Order = %v, want unchanged", st.Order)
	}
	if st.Index != 0 || st.Finished || len(st.Picks) != 0 {
		t.Errorf("Reset left %+v", st)
	}
}

func TestReshuffle(t *testing.T) {
	st := State{Order: []int{0, 1, 2, 3}, Index: 3, Picks: map[string]int{"a": 1}, Finished: true, Set: "s"}
	st.Reshuffle(4, NewRand(8), true)

	if !isPerm(st.Order, 4) {
		t.Errorf("Order = %v, want permutation", st.Order)
	}
	if st.Index != 0 || st.Finished || len(st.Picks) != 0 {
		t.Errorf("Reshuffle left %+v", st)
	}
	if st.Set != "s" {
		t.Errorf("Set = %q, want s", st.Set)
	}
}

func TestScore(t *testing.T) {
	questions := []Question{
		{ID: "q0", Choices: []string{"a", "b"}, Answer: 1},
		{ID: "q1", Choices: []string{"a", "b"}, Answer: 0},
		{ID: "q2", Choices: []string{"a", "b"}, Answer: 1},
	}
	st := State{Order: []int{0, 1, 2}, Picks: map[string]int{"q0": 1, "q1": 1, "q2": 1}}

	if got := st.Score(questions); got != 2 {
		t.Errorf("Score = %d, want 2", got)
	}

	st.Picks["q1"] = 0
	if got := st.Score(questions); got != 3 {
		t.Errorf("Score after change = %d, want 3", got)
	}
}

func TestCurrent(t *testing.T) {
	questions := []Question{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	st := State{Order: []int{2, 0, 1}, Index: 0}

	q, ok := st.Current(questions)
	if !ok || q.ID != "c" {
		t.Errorf("Current = %v %v, want c true", q.ID, ok)
	}

	st.Order = []int{5}
	if _, ok := st.Current(questions); ok {
		t.Errorf("Current with out-of-range order entry reported a question")
	}
}

func TestParsePickPolicy(t *testing.T) {
	if ParsePickPolicy("change-until-navigate") != ChangeUntilNavigate {
		t.Errorf("change-until-navigate not recognized")
	}
	if ParsePickPolicy("anything") != FirstAnswerWins {
		t.Errorf("unknown policy did not fall back to first-answer-wins")
	}
}
