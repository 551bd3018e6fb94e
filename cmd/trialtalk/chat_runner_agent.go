// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package main contains the AgentChatRunner implementation.
//
// The runner coordinates between the session controller (state and
// agent communication), the ChatUI (display), the progress narrator,
// and user input. Control flow lives here; everything else is
// delegated.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/trialtalk/trialtalk/pkg/agent"
	"github.com/trialtalk/trialtalk/pkg/logging"
	"github.com/trialtalk/trialtalk/pkg/session"
	"github.com/trialtalk/trialtalk/pkg/trace"
	"github.com/trialtalk/trialtalk/pkg/ux"
)

// ConversationController is the slice of the session controller the
// runner needs. *session.Controller satisfies it.
type ConversationController interface {
	SubmitQuery(ctx context.Context, text string) (*session.Message, error)
	StartNewConversation()
	ClearSession(ctx context.Context) error
	Turns() int
}

// AgentChatRunner implements ChatRunner for conversations with the
// clinical-trials agent.
//
// # Fields
//
//   - controller: conversation state plus agent dispatch
//   - ui: display formatting (from pkg/ux)
//   - input: user input source (injectable for testing)
//   - narrator: progress phrases while a query is in flight
//
// # Thread Safety
//
// Run is single-use and not reentrant. Close is safe from any
// goroutine and idempotent.
type AgentChatRunner struct {
	controller ConversationController
	ui         ux.ChatUI
	input      InputReader
	narrator   *ux.Narrator
	logger     *logging.Logger
	agentURL   string

	closed bool
	mu     sync.Mutex
}

// NewAgentChatRunner creates a runner with production dependencies:
// a real agent client, terminal UI, and interactive stdin reader.
func NewAgentChatRunner(baseURL string, logger *logging.Logger) ChatRunner {
	if logger == nil {
		logger = logging.Default()
	}
	client := agent.NewClientWithTimeout(baseURL, agentTimeout())
	return &AgentChatRunner{
		controller: session.NewController(client, logger),
		ui:         ux.NewChatUI(),
		input:      NewInteractiveInputReader(50), // keep last 50 prompts in history
		narrator:   ux.NewNarrator(),
		logger:     logger,
		agentURL:   baseURL,
	}
}

// NewAgentChatRunnerWithDeps creates a runner with injected
// dependencies. Used by tests.
func NewAgentChatRunnerWithDeps(
	controller ConversationController,
	ui ux.ChatUI,
	input InputReader,
	narrator *ux.Narrator,
) *AgentChatRunner {
	return &AgentChatRunner{
		controller: controller,
		ui:         ui,
		input:      input,
		narrator:   narrator,
		logger:     logging.Default(),
	}
}

// Run executes the interactive chat loop.
//
// # Description
//
// The loop displays the header, then repeatedly reads input and
// dispatches it. Besides queries it understands:
//   - "exit"/"quit": end the session
//   - "/new": start a fresh conversation (local reset only)
//   - "/clear": delete server-side session state, then reset
//
// Query failures surface as an apology turn from the controller and
// never end the loop. Context cancellation returns context.Canceled.
func (r *AgentChatRunner) Run(ctx context.Context) error {
	r.ui.Header(r.agentURL)

	for {
		select {
		case <-ctx.Done():
			return r.handleShutdown(ctx)
		default:
		}

		// If the reader handles prompts (interactive mode), set it;
		// otherwise print manually
		if p, ok := r.input.(PromptingInputReader); ok {
			p.SetPrompt(r.ui.Prompt())
		} else {
			fmt.Print(r.ui.Prompt())
		}
		input, err := r.input.ReadLine()
		if err != nil {
			if err == io.EOF {
				r.ui.SessionEnd(r.controller.Turns())
				return nil
			}
			r.logger.Error("failed to read input", "error", err)
			return fmt.Errorf("read input: %w", err)
		}

		if input == "" {
			continue
		}

		// Bubbletea clears its rendering area on exit, so restore the
		// visual line for interactive readers
		if _, isInteractive := r.input.(*InteractiveInputReader); isInteractive {
			fmt.Printf("%s%s\n", r.ui.Prompt(), input)
		}

		if isExitCommand(input) {
			r.ui.SessionEnd(r.controller.Turns())
			return nil
		}

		switch input {
		case "/new":
			r.controller.StartNewConversation()
			r.ui.SessionNew()
			continue
		case "/clear":
			if err := r.controller.ClearSession(ctx); err != nil {
				r.ui.Failure("Could not clear the session on the server; nothing was changed. Try again in a moment.")
			} else {
				r.ui.SessionNew()
			}
			continue
		}

		if err := r.handleMessage(ctx, input); err != nil {
			if ctx.Err() != nil {
				return r.handleShutdown(ctx)
			}
			r.ui.Failure(err.Error())
		}
	}
}

// handleMessage submits one query and renders the outcome. The
// narrator runs for exactly the duration of the round trip.
func (r *AgentChatRunner) handleMessage(ctx context.Context, input string) error {
	r.narrator.Start()
	reply, err := r.controller.SubmitQuery(ctx, input)
	r.narrator.Stop()

	if err != nil {
		if errors.Is(err, session.ErrQueryPending) {
			r.ui.Notice("Still working on the previous question.")
			return nil
		}
		if errors.Is(err, session.ErrEmptyQuery) {
			return nil
		}
		return err
	}
	if reply == nil {
		// Response discarded after a mid-flight session reset
		return nil
	}

	r.ui.Trace(trace.NormalizeAll(reply.Steps))
	r.ui.Response(reply.Content)
	return nil
}

// handleShutdown finishes the session after context cancellation.
func (r *AgentChatRunner) handleShutdown(ctx context.Context) error {
	r.narrator.Stop()
	r.logger.Info("chat session interrupted", "turns", r.controller.Turns())
	r.ui.SessionEnd(r.controller.Turns())
	return ctx.Err()
}

// Close releases the runner's resources. Safe to call multiple times.
func (r *AgentChatRunner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.narrator.Stop()
	return nil
}
