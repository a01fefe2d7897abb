// services/session.go
package services

import "sync"

// Session is the identity handed to us by whatever signed the user in.
// The sync core only cares whether someone is identified and which token to send.
type Session struct {
	mu     sync.RWMutex
	token  string
	userID string
}

func NewSession(token, userID string) *Session {
	return &Session{token: token, userID: userID}
}

// Identified reports whether a user is currently signed in. A nil session never is.
func (s *Session) Identified() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *Session) Set(token, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.userID = userID
}

func (s *Session) Clear() {
	s.Set("", "")
}
