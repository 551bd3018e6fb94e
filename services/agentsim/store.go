// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// storedMessage is one conversation turn held server-side.
type storedMessage struct {
	Role    string
	Content string
	At      time.Time
}

// sessionStore keeps conversation history in memory, keyed by session
// identifier. Sessions are created implicitly on first append.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]storedMessage
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string][]storedMessage)}
}

// Resolve returns the given session ID, or a freshly generated one
// when empty.
func (s *sessionStore) Resolve(sessionID string) string {
	if sessionID == "" {
		return uuid.NewString()
	}
	return sessionID
}

// Append records a user/assistant exchange under the session.
func (s *sessionStore) Append(sessionID, query, answer string) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID],
		storedMessage{Role: "user", Content: query, At: now},
		storedMessage{Role: "assistant", Content: answer, At: now},
	)
}

// Count returns the number of stored messages and whether the session
// exists.
func (s *sessionStore) Count(sessionID string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs, ok := s.sessions[sessionID]
	return len(msgs), ok
}

// Delete removes a session. Returns false when it does not exist.
func (s *sessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return false
	}
	delete(s.sessions, sessionID)
	return true
}

// History returns a copy of the session's messages.
func (s *sessionStore) History(sessionID string) []storedMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.sessions[sessionID]
	out := make([]storedMessage, len(msgs))
	copy(out, msgs)
	return out
}
