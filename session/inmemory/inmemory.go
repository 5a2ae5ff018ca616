package inmemory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rageebridwan/newsmind/internal/rag"
	"github.com/rageebridwan/newsmind/session"
)

type Store struct {
	sessions    map[string]*session.Session
	newPipeline func() *rag.Pipeline
	mu          sync.RWMutex
}

// NewStore creates an in-memory session store. newPipeline builds the
// retrieval pipeline for each fresh session.
func NewStore(newPipeline func() *rag.Pipeline) *Store {
	return &Store{
		sessions:    make(map[string]*session.Session),
		newPipeline: newPipeline,
	}
}

// EnsureSession returns the session with the given id, refreshing its TTL,
// or creates a fresh one when the id is empty or unknown.
func (store *Store) EnsureSession(id string, ttl time.Duration) (*session.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if id != "" {
		if sess, ok := store.sessions[id]; ok {
			sess.Expire(ttl)
			return sess, nil
		}
	}

	sess, err := session.New(uuid.NewString(), ttl, store.newPipeline())
	if err != nil {
		return nil, err
	}

	store.sessions[sess.ID()] = sess
	return sess, nil
}

// GetSession returns the session with the given id, or nil when unknown.
func (store *Store) GetSession(id string) (*session.Session, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	sess, ok := store.sessions[id]
	if !ok {
		return nil, nil
	}
	return sess, nil
}

func (store *Store) Delete(id string) {
	store.mu.Lock()
	delete(store.sessions, id)
	store.mu.Unlock()
}

// PurgeExpired drops sessions past their TTL and reports how many went.
func (store *Store) PurgeExpired() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	n := 0
	for id, sess := range store.sessions {
		if sess.Expired() {
			delete(store.sessions, id)
			n++
		}
	}
	return n
}
