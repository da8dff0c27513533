package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/quiz-club/backend/internal/quiz"
)

var (
	_ quiz.KV = (*Memory)(nil)
	_ quiz.KV = (*SQLite)(nil)
)

type store interface {
	quiz.KV
	Delete(key string) error
}

func exercise(t *testing.T, s store) {
	t.Helper()

	if _, ok, err := s.Get("missing"); ok || err != nil {
		t.Fatalf("Get(missing) = ok %v, err %v; want absent", ok, err)
	}

	if err := s.Set("k", []byte(`{"index":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get("k")
	if err != nil || !ok || string(got) != `{"index":1}` {
		t.Fatalf("Get(k) = %q, %v, %v", got, ok, err)
	}

	if err := s.Set("k", []byte(`{"index":2}`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, _, _ = s.Get("k")
	if string(got) != `{"index":2}` {
		t.Errorf("Get after overwrite = %q", got)
	}

	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get("k"); ok {
		t.Errorf("key still present after Delete")
	}
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	m := NewMemory()
	m.Set("k", []byte("abc"))
	v, _, _ := m.Get("k")
	v[0] = 'z'
	if again, _, _ := m.Get("k"); string(again) != "abc" {
		t.Errorf("stored value mutated through Get: %q", again)
	}
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "state", "progress.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestSQLite_InMemory(t *testing.T) {
	s, err := OpenSQLite(context.Background(), "")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.db")
	ctx := context.Background()

	first, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	store := quiz.NewStore(first, "", quiz.NewRand(1))
	want := store.Initialize(6)
	store.Advance()
	first.Close()

	second, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	got := quiz.NewStore(second, "", quiz.NewRand(2)).Initialize(6)

	if got.Index != 1 {
		t.Errorf("Index after reopen = %d, want 1", got.Index)
	}
	for i := range want.Order {
		if got.Order[i] != want.Order[i] {
			t.Fatalf("Order after reopen = %v, want %v", got.Order, want.Order)
		}
	}
}
