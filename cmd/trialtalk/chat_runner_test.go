// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/trialtalk/trialtalk/pkg/session"
	"github.com/trialtalk/trialtalk/pkg/trace"
	"github.com/trialtalk/trialtalk/pkg/ux"
)

// mockController is a scriptable ConversationController.
type mockController struct {
	submitFunc  func(ctx context.Context, text string) (*session.Message, error)
	clearErr    error
	submissions []string
	newCalls    int
	clearCalls  int
}

func (m *mockController) SubmitQuery(ctx context.Context, text string) (*session.Message, error) {
	m.submissions = append(m.submissions, text)
	if m.submitFunc != nil {
		return m.submitFunc(ctx, text)
	}
	return &session.Message{Role: session.RoleAssistant, Content: "ok"}, nil
}

func (m *mockController) StartNewConversation() { m.newCalls++ }

func (m *mockController) ClearSession(ctx context.Context) error {
	m.clearCalls++
	return m.clearErr
}

func (m *mockController) Turns() int { return len(m.submissions) }

func newTestRunner(t *testing.T, ctrl *mockController, inputs []string) (*AgentChatRunner, *bytes.Buffer) {
	t.Helper()
	prev := ux.GetPersonality()
	ux.SetPersonality(ux.PersonalityStandard)
	t.Cleanup(func() { ux.SetPersonality(prev) })

	var buf bytes.Buffer
	runner := NewAgentChatRunnerWithDeps(
		ctrl,
		ux.NewChatUIWithWriter(&buf),
		NewMockInputReader(inputs),
		ux.NewNarratorWithDeps([]string{"working"}, time.Second, io.Discard),
	)
	return runner, &buf
}

func TestAgentChatRunner_ExitCommand(t *testing.T) {
	ctrl := &mockController{}
	runner, _ := newTestRunner(t, ctrl, []string{"exit"})
	defer runner.Close()

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ctrl.submissions) != 0 {
		t.Errorf("exit must not reach the controller: %v", ctrl.submissions)
	}
}

func TestAgentChatRunner_SubmitsQueryAndRendersReply(t *testing.T) {
	ctrl := &mockController{
		submitFunc: func(_ context.Context, text string) (*session.Message, error) {
			return &session.Message{
				Role:    session.RoleAssistant,
				Content: "Found 12 studies.",
				Steps: []trace.RawStep{
					trace.StructuredStep("tool_start", map[string]any{
						"tool": "search_clinical_trials", "input": "lung cancer",
					}),
				},
			}, nil
		},
	}
	runner, buf := newTestRunner(t, ctrl, []string{"Find Phase 3 trials for lung cancer", "exit"})
	defer runner.Close()

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ctrl.submissions) != 1 || ctrl.submissions[0] != "Find Phase 3 trials for lung cancer" {
		t.Errorf("submissions = %v", ctrl.submissions)
	}
	out := buf.String()
	if !strings.Contains(out, "Found 12 studies.") {
		t.Errorf("output missing answer: %q", out)
	}
	if !strings.Contains(out, "Calling search_clinical_trials") {
		t.Errorf("output missing trace: %q", out)
	}
}

func TestAgentChatRunner_NewCommand(t *testing.T) {
	ctrl := &mockController{}
	runner, buf := newTestRunner(t, ctrl, []string{"/new", "exit"})
	defer runner.Close()

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ctrl.newCalls != 1 {
		t.Errorf("newCalls = %d, want 1", ctrl.newCalls)
	}
	if !strings.Contains(buf.String(), "fresh conversation") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestAgentChatRunner_ClearFailureKeepsSession(t *testing.T) {
	ctrl := &mockController{clearErr: errors.New("server unavailable")}
	runner, buf := newTestRunner(t, ctrl, []string{"/clear", "still here?", "exit"})
	defer runner.Close()

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ctrl.clearCalls != 1 {
		t.Errorf("clearCalls = %d, want 1", ctrl.clearCalls)
	}
	if !strings.Contains(buf.String(), "nothing was changed") {
		t.Errorf("output missing clear failure notice: %q", buf.String())
	}
	// The loop keeps going after a failed clear
	if len(ctrl.submissions) != 1 {
		t.Errorf("submissions = %v, want the follow-up question", ctrl.submissions)
	}
}

func TestAgentChatRunner_PendingRejectionShowsNotice(t *testing.T) {
	ctrl := &mockController{
		submitFunc: func(_ context.Context, _ string) (*session.Message, error) {
			return nil, session.ErrQueryPending
		},
	}
	runner, buf := newTestRunner(t, ctrl, []string{"too eager", "exit"})
	defer runner.Close()

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(buf.String(), "Still working") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestAgentChatRunner_EOFEndsSession(t *testing.T) {
	ctrl := &mockController{}
	runner, buf := newTestRunner(t, ctrl, nil)
	defer runner.Close()

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(buf.String(), "Ended after") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestAgentChatRunner_ContextCancellation(t *testing.T) {
	ctrl := &mockController{}
	runner, _ := newTestRunner(t, ctrl, []string{"never read"})
	defer runner.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := runner.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run err = %v, want context.Canceled", err)
	}
}

func TestAgentChatRunner_CloseIdempotent(t *testing.T) {
	runner, _ := newTestRunner(t, &mockController{}, nil)
	if err := runner.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := runner.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestMockInputReader(t *testing.T) {
	r := NewMockInputReader([]string{"a", "b"})
	if line, _ := r.ReadLine(); line != "a" {
		t.Errorf("first = %q", line)
	}
	if line, _ := r.ReadLine(); line != "b" {
		t.Errorf("second = %q", line)
	}
	if _, err := r.ReadLine(); err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestIsExitCommand(t *testing.T) {
	for input, want := range map[string]bool{
		"exit":  true,
		"quit":  true,
		"EXIT":  false,
		"hello": false,
		"":      false,
	} {
		if got := isExitCommand(input); got != want {
			t.Errorf("isExitCommand(%q) = %v, want %v", input, got, want)
		}
	}
}
