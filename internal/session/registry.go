package session

import (
	"sync"

	"dindin/internal/logger"
	"dindin/internal/store"
)

// Registry tracks at most one live Session per identity. Sessions are
// keyed by user id, so two identities never share derived state, and a
// fresh login after logout starts from initial values.
type Registry struct {
	mu       sync.Mutex
	docs     *store.Store
	sessions map[string]*Session
}

// NewRegistry creates an empty registry over the document store.
func NewRegistry(docs *store.Store) *Registry {
	return &Registry{docs: docs, sessions: make(map[string]*Session)}
}

// Open returns the live session for an identity, acquiring the store
// subscription if none exists. An identity holds exactly one subscription
// no matter how many times it signs in.
func (r *Registry) Open(userID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[userID]; ok {
		return s, nil
	}

	s, err := open(r.docs, userID)
	if err != nil {
		return nil, err
	}
	r.sessions[userID] = s
	logger.Get().Infow("session opened", "user_id", userID)
	return s, nil
}

// Get returns the live session for an identity, if any.
func (r *Registry) Get(userID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// Close tears down an identity's session: the subscription is released and
// all derived state (transactions, summary, chat, view) is discarded.
func (r *Registry) Close(userID string) {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()

	if ok {
		s.Close()
		logger.Get().Infow("session closed", "user_id", userID)
	}
}

// CloseAll tears down every session. Called on server shutdown so no
// subscription outlives the process gracefully.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
