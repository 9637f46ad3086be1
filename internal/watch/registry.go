package watch

import (
	"fmt"
	"sync"
)

// Session is the common surface of the registry's entries.
type Session interface {
	// Key is the session's composite identity.
	Key() string
	// Close disposes the session: the polling loop is cancelled and the
	// registry entry removed. Safe to call more than once.
	Close()
}

// Registry tracks the live viewer sessions, at most one per key. It is an
// explicit object rather than a package-level map so the coordinator stays
// testable without process-wide state.
type Registry struct {
	mu      sync.Mutex
	entries map[string]Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Session)}
}

// get returns the live session for the key, if any.
func (r *Registry) get(key string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.entries[key]
	return s, ok
}

// insert registers a session under its key. The caller must have checked for
// an existing entry under the same lock-free open flow; a duplicate insert
// is a bug.
func (r *Registry) insert(s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[s.Key()]; exists {
		panic(fmt.Sprintf("watch: duplicate session for key %q", s.Key()))
	}
	r.entries[s.Key()] = s
}

// remove drops the entry for the key. Unknown keys are a no-op.
func (r *Registry) remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// CloseAll disposes every live session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := make([]Session, 0, len(r.entries))
	for _, s := range r.entries {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func statusKey(runID string) string {
	return "run:" + runID
}

func logKey(runID string, logID int) string {
	return fmt.Sprintf("run:%s:log:%d", runID, logID)
}
