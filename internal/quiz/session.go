package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrSuperseded is returned when a quiz set arrives after a newer selection
// has started. The late result is discarded.
var ErrSuperseded = errors.New("quiz: superseded by a newer selection")

// Fetcher loads the quiz set for a lecture.
type Fetcher interface {
	FetchLecture(ctx context.Context, lectureID int64) (QuizSet, error)
}

type SessionConfig struct {
	KV      KV
	Key     string
	Rand    Rand
	Policy  PickPolicy
	Fetcher Fetcher
}

// Session owns the active quiz set and the progress store for it. Selections
// follow last-request-wins: only the most recently started one may apply.
type Session struct {
	mu  sync.Mutex
	cfg SessionConfig

	seq       uint64
	set       QuizSet
	questions []Question
	store     *Store
}

func NewSession(cfg SessionConfig) *Session {
	if cfg.Rand == nil {
		cfg.Rand = NewRandFromTime()
	}
	return &Session{cfg: cfg}
}

// Begin starts a new selection and returns its ticket. Any earlier ticket is
// superseded from this point on.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Complete applies the outcome of the selection identified by ticket. A
// superseded ticket is discarded with ErrSuperseded whatever its outcome; a
// fetch error leaves the current set in place.
func (s *Session) Complete(ticket uint64, set QuizSet, fetchErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.seq {
		return ErrSuperseded
	}
	if fetchErr != nil {
		return fetchErr
	}
	s.apply(set)
	return nil
}

// SelectLecture fetches a lecture's questions and makes them the active set.
func (s *Session) SelectLecture(ctx context.Context, lectureID int64) error {
	if s.cfg.Fetcher == nil {
		return fmt.Errorf("select lecture %d: no fetcher configured", lectureID)
	}
	ticket := s.Begin()
	set, err := s.cfg.Fetcher.FetchLecture(ctx, lectureID)
	if err != nil {
		err = fmt.Errorf("fetch lecture %d: %w", lectureID, err)
	}
	return s.Complete(ticket, set, err)
}

// LoadSet makes set the active set immediately, superseding any pending
// selection. Taking the ticket and applying the set happen under one lock so
// no selection can slip in between.
func (s *Session) LoadSet(set QuizSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.apply(set)
}

func (s *Session) apply(set QuizSet) {
	store := NewStore(s.cfg.KV, s.cfg.Key, s.cfg.Rand,
		WithPickPolicy(s.cfg.Policy),
		WithOrderShuffle(set.Meta.QuestionOrderShuffled()),
		WithSetID(set.ID),
	)
	store.Initialize(set.Len())
	s.set = set
	s.store = store
	s.present()
	if set.Len() == 0 {
		log.Printf("[quiz] set %q has no questions", set.ID)
	}
}

// present rebuilds the questions as shown to the learner. Choice layout is
// derived from the state's seed so it survives reloads.
func (s *Session) present() {
	if s.set.Meta.ShuffleChoices {
		s.questions = shuffleSetChoices(s.store.state.Seed, s.set.Questions)
		return
	}
	s.questions = append([]Question(nil), s.set.Questions...)
}

func (s *Session) Set() QuizSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return State{}
	}
	return s.store.State()
}

// Current returns the question on screen; false when no set is loaded or the
// set is empty.
func (s *Session) Current() (Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return Question{}, false
	}
	return s.store.Current(s.questions)
}

// PickCurrent records choice for the question on screen.
func (s *Session) PickCurrent(choice int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return false
	}
	q, ok := s.store.Current(s.questions)
	if !ok || choice >= len(q.Choices) {
		return false
	}
	return s.store.Pick(q.ID, choice)
}

func (s *Session) Pick(qid ID, choice int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return false
	}
	return s.store.Pick(qid, choice)
}

func (s *Session) Advance() {
	s.withStore(func(st *Store) { st.Advance() })
}

func (s *Session) Retreat() {
	s.withStore(func(st *Store) { st.Retreat() })
}

func (s *Session) JumpTo(pos int) {
	s.withStore(func(st *Store) { st.JumpTo(pos) })
}

func (s *Session) Reset() {
	s.withStore(func(st *Store) { st.Reset() })
}

// Reshuffle redraws the question order (and choice layout when enabled) and
// clears progress.
func (s *Session) Reshuffle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return
	}
	s.store.Reshuffle(s.set.Len())
	s.present()
}

func (s *Session) withStore(fn func(*Store)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return
	}
	fn(s.store)
}

func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return 0
	}
	return s.store.Score(s.questions)
}

func (s *Session) Answered(qid ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return false
	}
	return s.store.Answered(qid)
}

type Summary struct {
	Title    string
	Phase    Phase
	Position int
	Total    int
	Answered int
	Score    int
}

func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := Summary{Title: s.set.Meta.Title, Total: s.set.Len()}
	if s.store == nil {
		return sum
	}
	st := s.store.state
	sum.Phase = st.Phase()
	sum.Position = st.Index
	sum.Score = st.Score(s.questions)
	for _, qi := range st.Order {
		if qi >= 0 && qi < len(s.questions) && st.Answered(s.questions[qi].ID) {
			sum.Answered++
		}
	}
	return sum
}

// Result is one line of the end-of-quiz review.
type Result struct {
	Position int
	Question Question
	Picked   int // -1 when unanswered
	Correct  bool
}

// Results lists every question in presentation order with the learner's pick.
func (s *Session) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	st := s.store.state
	out := make([]Result, 0, len(st.Order))
	for pos, qi := range st.Order {
		if qi < 0 || qi >= len(s.questions) {
			continue
		}
		q := s.questions[qi]
		r := Result{Position: pos, Question: q, Picked: -1}
		if p, ok := st.Picks[string(q.ID)]; ok {
			r.Picked = p
			r.Correct = q.IsCorrect(p)
		}
		out = append(out, r)
	}
	return out
}
