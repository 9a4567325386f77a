package display

import (
	"sync"

	"poolrebalancer/internal/model"
)

// Session holds the operator inputs and the latest pool state. Every fetch
// is issued a token; only the result for the newest token is kept, so a slow
// response for a previous pool cannot overwrite the current one.
type Session struct {
	mu       sync.Mutex
	poolID   string
	target   string
	state    *model.PoolState
	fetchErr error
	token    uint64
}

func NewSession(poolID, target string) *Session {
	return &Session{poolID: poolID, target: target}
}

// Begin issues a token for a refresh of the current pool.
func (s *Session) Begin() (uint64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	return s.token, s.poolID
}

// SetPool switches to another pool and drops the previous state.
func (s *Session) SetPool(poolID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poolID = poolID
	s.state = nil
	s.fetchErr = nil
	s.token++
	return s.token
}

// SetTarget replaces the target text. No fetch is needed.
func (s *Session) SetTarget(text string) {
	s.mu.Lock()
	s.target = text
	s.mu.Unlock()
}

// Resolve applies a fetch result and reports whether it was current.
func (s *Session) Resolve(token uint64, state model.PoolState, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		return false
	}
	if err != nil {
		s.state = nil
		s.fetchErr = err
		return true
	}
	s.state = &state
	s.fetchErr = nil
	return true
}

// Snapshot returns a copy safe to use without the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		PoolID:     s.poolID,
		TargetText: s.target,
		State:      s.state,
		FetchErr:   s.fetchErr,
	}
}
