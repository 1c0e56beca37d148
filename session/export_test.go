package session

import (
	"time"

	"github.com/poegate/poegate"
)

// SetNow overrides the store clock for tests.
func (s *Store) SetNow(now func() time.Time) {
	s.now = now
}

// Seed appends a message with a raw, unnormalized role, bypassing Update.
// Histories recorded by older builds can carry such labels.
func (s *Store) Seed(id string, role poegate.Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.Messages = append(sess.Messages, poegate.Message{Role: role, Content: content})
	}
}
