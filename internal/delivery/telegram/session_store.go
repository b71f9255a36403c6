package telegram

import (
	"sync"
	"time"

	"github.com/yourusername/breakdown-bot/internal/lookup"
	"github.com/yourusername/breakdown-bot/internal/usecase"
)

// chatSession one chat's interaction state. mu is held for the whole time
// an update from that chat is being handled, so updates of one chat run
// one after another while different chats run in parallel.
type chatSession struct {
	mu          sync.Mutex
	state       usecase.InteractionState
	suggestions []lookup.Suggestion
	lastSeen    time.Time
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*chatSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[int64]*chatSession)}
}

// acquire returns the chat's session locked; call release when done.
func (s *sessionStore) acquire(chatID int64) *chatSession {
	for {
		sess := s.lookupOrCreate(chatID)
		sess.mu.Lock()
		// sweep may have dropped the session before it was locked
		s.mu.RLock()
		current := s.sessions[chatID]
		s.mu.RUnlock()
		if current == sess {
			sess.lastSeen = time.Now()
			return sess
		}
		sess.mu.Unlock()
	}
}

func (s *sessionStore) lookupOrCreate(chatID int64) *chatSession {
	s.mu.RLock()
	sess, ok := s.sessions[chatID]
	s.mu.RUnlock()
	if ok {
		return sess
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok = s.sessions[chatID]
	if !ok {
		sess = &chatSession{state: usecase.NewInteractionState()}
		s.sessions[chatID] = sess
	}
	return sess
}

func (sess *chatSession) release() {
	sess.lastSeen = time.Now()
	sess.mu.Unlock()
}

// sweep drops sessions idle for longer than timeout. Busy sessions are
// skipped.
func (s *sessionStore) sweep(now time.Time, timeout time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for chatID, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if now.Sub(sess.lastSeen) > timeout {
			delete(s.sessions, chatID)
			removed++
		}
		sess.mu.Unlock()
	}
	return removed
}

func (s *sessionStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
