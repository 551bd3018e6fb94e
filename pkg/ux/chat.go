// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/trialtalk/trialtalk/pkg/trace"
)

// starterQueries are shown in the full-personality header to help a
// first-time user get going.
var starterQueries = []string{
	"What phase 3 trials are recruiting for type 2 diabetes?",
	"Summarize eligibility criteria for NCT04852770",
	"Which sponsors run the most immunotherapy studies?",
}

// ChatUI renders the conversational surface of the CLI.
//
// # Description
//
// Implementations decide how much decoration to emit based on the
// current personality level. The terminal implementation writes
// styled text; tests substitute a buffer-backed writer.
type ChatUI interface {
	// Header prints the session banner shown when chat starts.
	Header(agentURL string)

	// Prompt returns the input prompt string for the reader.
	Prompt() string

	// Response prints the agent's answer.
	Response(text string)

	// Trace prints the normalized reasoning steps behind an answer.
	Trace(steps []trace.NormalizedStep)

	// Notice prints a transient informational message.
	Notice(text string)

	// Failure prints an error message.
	Failure(text string)

	// SessionNew announces that a fresh conversation has started.
	SessionNew()

	// SessionEnd prints the goodbye footer.
	SessionEnd(turns int)
}

// terminalChatUI is the standard ChatUI writing styled text to a
// single writer.
type terminalChatUI struct {
	writer io.Writer
}

// NewChatUI returns a ChatUI writing to stdout.
func NewChatUI() ChatUI {
	return &terminalChatUI{writer: os.Stdout}
}

// NewChatUIWithWriter returns a ChatUI writing to w. Used by tests.
func NewChatUIWithWriter(w io.Writer) ChatUI {
	return &terminalChatUI{writer: w}
}

func (ui *terminalChatUI) write(format string, args ...any) {
	fmt.Fprintf(ui.writer, format, args...)
}

func (ui *terminalChatUI) writeln(format string, args ...any) {
	fmt.Fprintf(ui.writer, format+"\n", args...)
}

// ============================================================================
// Header
// ============================================================================

func (ui *terminalChatUI) Header(agentURL string) {
	switch GetPersonality() {
	case PersonalityMachine:
		ui.writeln("chat session started agent=%s", agentURL)
	case PersonalityMinimal:
		ui.writeln("TrialTalk chat. Type 'exit' to quit.")
	case PersonalityFull:
		ui.headerFull(agentURL)
	default:
		ui.writeln("%s", Styles.Header.Render("TrialTalk"))
		ui.writeln("%s", Styles.Subtle.Render("Connected to "+agentURL+". Type 'exit' to quit, '/new' for a fresh conversation."))
		ui.writeln("")
	}
}

func (ui *terminalChatUI) headerFull(agentURL string) {
	ui.writeln("%s", Styles.Header.Render("TrialTalk — clinical trials, conversationally"))
	ui.writeln("%s", Styles.Subtle.Render("Connected to "+agentURL))
	ui.writeln("")
	ui.writeln("%s", Styles.Bold.Render("Try asking:"))
	for _, q := range starterQueries {
		ui.writeln("  %s %s", Styles.Accent.Render(IconStep.Render()), q)
	}
	ui.writeln("")
	ui.writeln("%s", Styles.Subtle.Render("Commands: /new starts a fresh conversation, /clear wipes the session, exit quits."))
	ui.writeln("")
}

// ============================================================================
// Conversation
// ============================================================================

func (ui *terminalChatUI) Prompt() string {
	if GetPersonality() == PersonalityMachine {
		return ""
	}
	return Styles.Prompt.Render("you") + " > "
}

func (ui *terminalChatUI) Response(text string) {
	if GetPersonality() == PersonalityMachine {
		ui.writeln("%s", text)
		return
	}
	ui.writeln("")
	ui.writeln("%s %s", Styles.Header.Render("trialtalk"), text)
	ui.writeln("")
}

func (ui *terminalChatUI) Trace(steps []trace.NormalizedStep) {
	if len(steps) == 0 {
		return
	}
	if GetPersonality() == PersonalityMachine {
		for _, s := range steps {
			ui.writeln("step category=%s title=%q", s.Category, s.Title)
		}
		return
	}
	if GetPersonality() == PersonalityMinimal {
		return
	}

	ui.writeln("%s", Styles.Subtle.Render(fmt.Sprintf("reasoning (%d steps)", len(steps))))
	for _, s := range steps {
		icon := categoryIcon(s.Category)
		ui.writeln("  %s %s", icon.Render(), Styles.StepTitle.Render(s.Title))
		if s.Body != "" {
			for _, line := range strings.Split(s.Body, "\n") {
				ui.writeln("%s", Styles.StepBody.Render(line))
			}
		}
	}
	ui.writeln("")
}

func (ui *terminalChatUI) Notice(text string) {
	if GetPersonality() == PersonalityMachine {
		ui.writeln("notice %s", text)
		return
	}
	ui.writeln("%s", Styles.Subtle.Render(text))
}

func (ui *terminalChatUI) Failure(text string) {
	if GetPersonality() == PersonalityMachine {
		ui.writeln("error %s", text)
		return
	}
	ui.writeln("%s %s", Styles.Error.Render(IconError.Render()), text)
}

func (ui *terminalChatUI) SessionNew() {
	switch GetPersonality() {
	case PersonalityMachine:
		ui.writeln("session reset")
	case PersonalityMinimal:
		ui.writeln("New conversation.")
	default:
		ui.writeln("%s Started a fresh conversation.", Styles.Success.Render(IconSuccess.Render()))
	}
}

func (ui *terminalChatUI) SessionEnd(turns int) {
	switch GetPersonality() {
	case PersonalityMachine:
		ui.writeln("chat session ended turns=%d", turns)
	case PersonalityMinimal:
		ui.writeln("Bye.")
	default:
		ui.writeln("")
		ui.writeln("%s", Styles.Subtle.Render(fmt.Sprintf("Ended after %s. Take care.", pluralTurns(turns))))
	}
}

// categoryIcon maps a step category to its display glyph.
func categoryIcon(c trace.Category) Icon {
	switch c {
	case trace.CategorySearch:
		return IconSearch
	case trace.CategoryDatabase:
		return IconDatabase
	case trace.CategoryAnswer:
		return IconAnswer
	case trace.CategoryTool:
		return IconTool
	case trace.CategoryObservation:
		return IconObservation
	default:
		return IconStep
	}
}

func pluralTurns(n int) string {
	if n == 1 {
		return "1 exchange"
	}
	return fmt.Sprintf("%d exchanges", n)
}
