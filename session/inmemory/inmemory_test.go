package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/rageebridwan/newsmind/internal/rag"
)

type stubEmbedder struct{}

func (stubEmbedder) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1}
	}
	return out, nil
}

func newTestStore() *Store {
	return NewStore(func() *rag.Pipeline {
		return rag.NewPipeline(stubEmbedder{}, nil)
	})
}

func TestEnsureSessionCreatesAndReuses(t *testing.T) {
	t.Parallel()
	store := newTestStore()

	sess, err := store.EnsureSession("", time.Hour)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sess.ID() == "" {
		t.Fatalf("expected generated session id")
	}

	again, err := store.EnsureSession(sess.ID(), time.Hour)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if again != sess {
		t.Fatalf("expected the same session for a known id")
	}

	other, err := store.EnsureSession("never-seen", time.Hour)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if other == sess || other.ID() == "never-seen" {
		t.Fatalf("expected a fresh session with a generated id for an unknown one")
	}
}

func TestGetSessionUnknown(t *testing.T) {
	t.Parallel()
	store := newTestStore()
	sess, err := store.GetSession("missing")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sess != nil {
		t.Fatalf("expected nil for unknown session, got %v", sess.ID())
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()
	store := newTestStore()
	sess, err := store.EnsureSession("", time.Hour)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	store.Delete(sess.ID())
	got, err := store.GetSession(sess.ID())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected deleted session gone")
	}
}

func TestPurgeExpired(t *testing.T) {
	t.Parallel()
	store := newTestStore()
	dead, err := store.EnsureSession("", -time.Second)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	alive, err := store.EnsureSession("", time.Hour)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if n := store.PurgeExpired(); n != 1 {
		t.Fatalf("expected 1 purged session, got %d", n)
	}
	if got, _ := store.GetSession(dead.ID()); got != nil {
		t.Fatalf("expected expired session purged")
	}
	if got, _ := store.GetSession(alive.ID()); got == nil {
		t.Fatalf("expected live session kept")
	}
}
