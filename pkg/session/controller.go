// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package session owns conversation state: the message history, the
// session identifier shared with the agent service, and the pending
// flag that admits at most one outstanding query.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trialtalk/trialtalk/pkg/agent"
	"github.com/trialtalk/trialtalk/pkg/logging"
	"github.com/trialtalk/trialtalk/pkg/trace"
)

// apologyMessage is appended as the assistant turn when a query fails.
// It carries no trace so the UI renders it as a plain error bubble.
const apologyMessage = "Sorry, I hit a problem reaching the research agent. Please try again."

var (
	// ErrEmptyQuery rejects queries that are empty after trimming.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrQueryPending rejects a submission while another query is
	// outstanding. Submissions are rejected, never queued.
	ErrQueryPending = errors.New("a query is already pending")
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the conversation.
type Message struct {
	// ID uniquely identifies the message within the history.
	ID string

	Role    Role
	Content string

	// Steps is the raw reasoning trace attached to an assistant
	// answer. Nil for user messages and error turns. Kept raw here;
	// normalization happens at display time.
	Steps []trace.RawStep

	Time time.Time
}

// AgentClient is the slice of the agent API the controller needs.
// *agent.Client satisfies it.
type AgentClient interface {
	Query(ctx context.Context, query, sessionID string) (*agent.QueryResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Controller manages one conversation with the agent service.
//
// # Description
//
// The controller appends the user message optimistically before the
// network round trip, admits a single pending query at a time, and
// reconciles only the assistant side with the network result. A
// response that arrives after the session changed underneath it is
// discarded by comparing the session identifier captured at dispatch
// time against the live one.
//
// # Thread Safety
//
// All methods are safe for concurrent use. The lock is not held
// across the network round trips.
type Controller struct {
	client AgentClient
	logger *logging.Logger

	mu        sync.Mutex
	sessionID string
	history   []Message
	pending   bool
}

// NewController creates a controller with a fresh session.
func NewController(client AgentClient, logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.Default()
	}
	return &Controller{
		client:    client,
		logger:    logger,
		sessionID: newSessionID(),
	}
}

// newSessionID generates a practically unique session identifier.
func newSessionID() string {
	return uuid.NewString()
}

// SubmitQuery sends one user query and integrates the outcome into
// history.
//
// # Description
//
// The trimmed query is appended as a user message immediately, then
// exactly one request goes to the agent service. On success the
// answer and its raw trace are appended as an assistant message. On
// failure a fixed apology is appended instead, with no trace, and no
// error escapes; the conversation stays usable. If the session was
// replaced while the request was in flight, the response is discarded
// and the new session's state is left untouched.
//
// # Inputs
//   - ctx: bounds the network round trip.
//   - text: the user's query; rejected if empty after trimming.
//
// # Outputs
//   - *Message: the appended assistant turn, nil when the response
//     was discarded as stale.
//   - error: ErrEmptyQuery or ErrQueryPending; nil otherwise.
func (c *Controller) SubmitQuery(ctx context.Context, text string) (*Message, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return nil, ErrQueryPending
	}
	c.pending = true
	c.history = append(c.history, Message{
		ID:      uuid.NewString(),
		Role:    RoleUser,
		Content: query,
		Time:    time.Now(),
	})
	dispatched := c.sessionID
	c.mu.Unlock()

	resp, err := c.client.Query(ctx, query, dispatched)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionID != dispatched {
		// The session was replaced mid-flight; the response belongs
		// to a conversation that no longer exists.
		c.logger.Debug("discarding stale agent response",
			"dispatched_session", dispatched,
			"current_session", c.sessionID)
		return nil, nil
	}
	defer func() { c.pending = false }()

	var reply Message
	if err != nil {
		c.logger.Warn("agent query failed", "error", err, "session_id", dispatched)
		reply = Message{ID: uuid.NewString(), Role: RoleAssistant, Content: apologyMessage, Time: time.Now()}
	} else {
		reply = Message{
			ID:      uuid.NewString(),
			Role:    RoleAssistant,
			Content: resp.Response,
			Steps:   resp.ThinkingSteps,
			Time:    time.Now(),
		}
	}
	c.history = append(c.history, reply)
	return &reply, nil
}

// StartNewConversation discards the history and assigns a fresh
// session identifier. Never fails. Safe to call while a query is in
// flight; the late response for the old session will be discarded.
func (c *Controller) StartNewConversation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = newSessionID()
	c.history = nil
	c.pending = false
}

// ClearSession asks the agent service to delete the server-side
// session state, then resets locally. On failure nothing changes:
// history and session identifier stay exactly as they were, so the
// user is never silently desynchronized from the server.
func (c *Controller) ClearSession(ctx context.Context) error {
	c.mu.Lock()
	id := c.sessionID
	c.mu.Unlock()

	if err := c.client.DeleteSession(ctx, id); err != nil {
		c.logger.Warn("session clear failed", "error", err, "session_id", id)
		return err
	}
	c.StartNewConversation()
	return nil
}

// SessionID returns the current session identifier.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Pending reports whether a query is outstanding.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// History returns a copy of the conversation so far.
func (c *Controller) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.history))
	copy(out, c.history)
	return out
}

// LastMessage returns the most recent message, if any.
func (c *Controller) LastMessage() (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.history) == 0 {
		return Message{}, false
	}
	return c.history[len(c.history)-1], true
}

// Turns returns the number of completed user/assistant exchanges.
func (c *Controller) Turns() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history) / 2
}
