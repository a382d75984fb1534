package datafeed

import (
	"sync"

	"github.com/google/uuid"
)

// RequestTracker remembers the latest request issued per key so that a
// slower, older response can be recognised and dropped.
type RequestTracker struct {
	mu     sync.Mutex
	latest map[string]string
}

func NewRequestTracker() *RequestTracker {
	return &RequestTracker{latest: make(map[string]string)}
}

// Begin issues a new request id for key and makes it the current one.
func (t *RequestTracker) Begin(key string) string {
	id := uuid.NewString()

	t.mu.Lock()
	t.latest[key] = id
	t.mu.Unlock()
	return id
}

// IsCurrent reports whether id is still the latest request for key.
func (t *RequestTracker) IsCurrent(key, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest[key] == id
}

// Finish forgets key if id is still current.
func (t *RequestTracker) Finish(key, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest[key] == id {
		delete(t.latest, key)
	}
}
