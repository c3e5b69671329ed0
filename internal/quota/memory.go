package quota

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps counters in process memory. Counters are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]Window
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]Window),
		now:     time.Now,
	}
}

func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.ResetAt) {
		w = Window{ResetAt: now.Add(window)}
	}
	w.Count++
	s.windows[key] = w
	return w, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (Window, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !s.now().Before(w.ResetAt) {
		return Window{}, false, nil
	}
	return w, true, nil
}

func (s *MemoryStore) Close() error { return nil }
