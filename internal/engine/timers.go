package engine

import (
	"sync"
	"time"
)

// TimerToken is a cancellation handle for one scheduled callback.
type TimerToken struct {
	mu        sync.Mutex
	timer     *time.Timer
	cancelled bool
}

// Cancel stops the timer. It is safe to call more than once and after the
// timer has fired.
func (t *TimerToken) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelled = true
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *TimerToken) isCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// TimerService schedules callbacks keyed by an owner id (an execution id)
// so that every outstanding timer for an owner can be cancelled when the
// owner pauses, cancels, or reaches a terminal state. A fired callback
// re-checks its token, so a cancelled timer can never resume its owner.
type TimerService struct {
	mu     sync.Mutex
	tokens map[string]map[*TimerToken]struct{}
}

func NewTimerService() *TimerService {
	return &TimerService{tokens: make(map[string]map[*TimerToken]struct{})}
}

// Schedule runs fn after d unless the returned token (or the owner) is
// cancelled first.
func (s *TimerService) Schedule(ownerID string, d time.Duration, fn func()) *TimerToken {
	token := &TimerToken{}

	s.mu.Lock()
	if s.tokens[ownerID] == nil {
		s.tokens[ownerID] = make(map[*TimerToken]struct{})
	}
	s.tokens[ownerID][token] = struct{}{}
	s.mu.Unlock()

	token.mu.Lock()
	token.timer = time.AfterFunc(d, func() {
		s.forget(ownerID, token)
		if token.isCancelled() {
			return
		}
		fn()
	})
	token.mu.Unlock()
	return token
}

// CancelAll cancels every outstanding timer for ownerID and returns how
// many were cancelled.
func (s *TimerService) CancelAll(ownerID string) int {
	s.mu.Lock()
	owned := s.tokens[ownerID]
	delete(s.tokens, ownerID)
	s.mu.Unlock()

	for token := range owned {
		token.Cancel()
	}
	return len(owned)
}

func (s *TimerService) forget(ownerID string, token *TimerToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owned, ok := s.tokens[ownerID]; ok {
		delete(owned, token)
		if len(owned) == 0 {
			delete(s.tokens, ownerID)
		}
	}
}
