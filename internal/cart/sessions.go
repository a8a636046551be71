package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type sessionEntry struct {
	store    *Store
	lastUsed time.Time
}

// Sessions hands out one Store per visitor session, created on first use.
// Stores idle for longer than the sweep timeout are dropped; their persisted
// snapshot is read back on the next Get.
type Sessions struct {
	mu        sync.Mutex
	stores    map[string]*sessionEntry
	persister Persister
	logger    *zap.Logger
	now       func() time.Time
}

func NewSessions(persister Persister, logger *zap.Logger) *Sessions {
	return &Sessions{
		stores:    make(map[string]*sessionEntry),
		persister: persister,
		logger:    logger,
		now:       time.Now,
	}
}

// Get returns the session's store, loading its snapshot the first time.
// The load runs outside the registry lock so a slow backend only delays
// the session being loaded.
func (s *Sessions) Get(ctx context.Context, session string) *Store {
	if store, ok := s.lookup(session); ok {
		return store
	}

	loaded := NewStore(ctx, Key(session), s.persister, s.logger.With(zap.String("session", session)))

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have loaded the same session meanwhile.
	if entry, ok := s.stores[session]; ok {
		entry.lastUsed = s.now()
		return entry.store
	}
	s.stores[session] = &sessionEntry{store: loaded, lastUsed: s.now()}
	return loaded
}

func (s *Sessions) lookup(session string) (*Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.stores[session]
	if !ok {
		return nil, false
	}
	entry.lastUsed = s.now()
	return entry.store, true
}

// Len is the number of stores currently held in memory.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}

// Sweep drops the stores not used within idle and returns how many went.
func (s *Sessions) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	evicted := 0
	for session, entry := range s.stores {
		if entry.lastUsed.Before(cutoff) {
			delete(s.stores, session)
			evicted++
		}
	}
	return evicted
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Sessions) RunSweeper(ctx context.Context, interval, idle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(idle); n > 0 {
				s.logger.Debug("Idle carts evicted",
					zap.Int("evicted", n),
					zap.Int("remaining", s.Len()))
			}
		}
	}
}
