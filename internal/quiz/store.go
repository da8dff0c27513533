package quiz

import (
	"log"
)

// DefaultStorageKey is the key progress is saved under.
const DefaultStorageKey = "quiz_state_v3"

// KV is the persistence layer progress is saved to.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// Store holds a State and saves it after every mutation. Persistence failures
// are logged and never surface to the caller.
type Store struct {
	kv           KV
	key          string
	rng          Rand
	policy       PickPolicy
	shuffleOrder bool
	setID        string

	state State
}

type Option func(*Store)

func WithPickPolicy(p PickPolicy) Option {
	return func(s *Store) { s.policy = p }
}

// WithOrderShuffle controls whether fresh orders are shuffled. Default on.
func WithOrderShuffle(on bool) Option {
	return func(s *Store) { s.shuffleOrder = on }
}

// WithSetID tags saved state with the quiz set it belongs to.
func WithSetID(id string) Option {
	return func(s *Store) { s.setID = id }
}

func NewStore(kv KV, key string, rng Rand, opts ...Option) *Store {
	if key == "" {
		key = DefaultStorageKey
	}
	s := &Store{
		kv:           kv,
		key:          key,
		rng:          rng,
		shuffleOrder: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads saved progress for a set of questionCount questions,
// falling back to a fresh state when it is missing, unreadable or stale.
func (s *Store) Initialize(questionCount int) State {
	s.state = Restore(questionCount, s.load(), s.setID, s.rng, s.shuffleOrder)
	s.save()
	return s.State()
}

func (s *Store) load() ParseResult {
	if s.kv == nil {
		return ParseResult{Status: ParseAbsent}
	}
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		log.Printf("[quiz] load %s: %v", s.key, err)
		return ParseResult{Status: ParseAbsent}
	}
	res := ParseState(raw, ok)
	if res.Status == ParseMalformed {
		log.Printf("[quiz] discarding malformed progress under %s", s.key)
	}
	return res
}

func (s *Store) save() {
	if s.kv == nil {
		return
	}
	data, err := s.state.Encode()
	if err != nil {
		log.Printf("[quiz] encode progress: %v", err)
		return
	}
	if err := s.kv.Set(s.key, data); err != nil {
		log.Printf("[quiz] save %s: %v", s.key, err)
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	return s.state.Clone()
}

func (s *Store) Policy() PickPolicy {
	return s.policy
}

func (s *Store) Pick(qid ID, choice int) bool {
	if !s.state.Pick(qid, choice, s.policy) {
		return false
	}
	s.save()
	return true
}

func (s *Store) Advance() {
	s.state.Advance()
	s.save()
}

func (s *Store) Retreat() {
	s.state.Retreat()
	s.save()
}

func (s *Store) JumpTo(pos int) {
	s.state.JumpTo(pos)
	s.save()
}

func (s *Store) Reset() {
	s.state.Reset()
	s.save()
}

func (s *Store) Reshuffle(questionCount int) {
	s.state.Set = s.setID
	s.state.Reshuffle(questionCount, s.rng, s.shuffleOrder)
	s.save()
}

func (s *Store) Score(questions []Question) int {
	return s.state.Score(questions)
}

func (s *Store) Answered(qid ID) bool {
	return s.state.Answered(qid)
}

func (s *Store) Current(questions []Question) (Question, bool) {
	return s.state.Current(questions)
}
