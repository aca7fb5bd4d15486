package console

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/enquiry-console/internal/logger"
)

// Session pairs a console with the flash queue its notices go to
type Session struct {
	ID      string
	Console *Console
	Flash   *Flash

	lastSeen time.Time
}

// Sessions manages one console per browser session
type Sessions struct {
	mu    sync.Mutex
	items map[string]*Session
	src   Source
	limit int
	now   func() time.Time
}

func NewSessions(src Source, limit int) *Sessions {
	return &Sessions{
		items: make(map[string]*Session),
		src:   src,
		limit: limit,
		now:   time.Now,
	}
}

// Get returns the session for id, creating a fresh one (with a new id) when
// id is empty or unknown.
func (s *Sessions) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.items[id]; ok && id != "" {
		sess.lastSeen = s.now()
		return sess
	}

	flash := &Flash{}
	sess := &Session{
		ID:       uuid.New().String(),
		Console:  New(s.src, flash, s.limit),
		Flash:    flash,
		lastSeen: s.now(),
	}
	s.items[sess.ID] = sess
	return sess
}

// Len reports the number of live sessions
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep drops sessions idle for longer than idle and returns how many went
func (s *Sessions) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cut := s.now().Add(-idle)
	n := 0
	for id, sess := range s.items {
		if sess.lastSeen.Before(cut) {
			delete(s.items, id)
			n++
		}
	}
	return n
}

// Run sweeps idle sessions until ctx is done
func (s *Sessions) Run(ctx context.Context, idle time.Duration) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()

	log := logger.Named("sessions")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(idle); n > 0 {
				log.Debug().Int("evicted", n).Int("live", s.Len()).Msg("idle console sessions evicted")
			}
		}
	}
}
