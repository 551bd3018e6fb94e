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
	"sync"
	"time"
)

// defaultNarratorInterval is how long each progress phrase stays on
// screen before the narrator advances to the next one.
const defaultNarratorInterval = 2 * time.Second

// defaultPhrases cycle while a query is pending. They describe work
// plausibly in progress without claiming knowledge of the agent's
// actual state.
var defaultPhrases = []string{
	"Consulting the trial registry...",
	"Reading study protocols...",
	"Comparing eligibility criteria...",
	"Checking enrollment status...",
	"Cross-referencing interventions...",
	"Weighing the evidence...",
	"Drafting an answer...",
}

// Narrator displays a cycling sequence of progress phrases while a
// long-running query is in flight.
//
// # Description
//
// Start launches a goroutine that rewrites the current terminal line
// with the next phrase on a fixed interval, wrapping around when the
// list is exhausted. Stop clears the line and waits for the goroutine
// to exit. In machine personality the narrator prints a single status
// line once and never animates.
//
// # Thread Safety
//
// Start and Stop are safe to call from any goroutine. Stop is
// idempotent.
type Narrator struct {
	phrases  []string
	interval time.Duration
	writer   io.Writer

	mu      sync.Mutex
	running bool
	index   int
	stop    chan struct{}
	done    chan struct{}
}

// NewNarrator creates a narrator with the default phrase list and
// interval, writing to stdout.
func NewNarrator() *Narrator {
	return &Narrator{
		phrases:  defaultPhrases,
		interval: defaultNarratorInterval,
		writer:   os.Stdout,
	}
}

// NewNarratorWithDeps creates a narrator with explicit phrases,
// interval, and writer. Used by tests and callers with custom phrase
// sets. Empty phrases or a non-positive interval fall back to the
// defaults.
func NewNarratorWithDeps(phrases []string, interval time.Duration, w io.Writer) *Narrator {
	if len(phrases) == 0 {
		phrases = defaultPhrases
	}
	if interval <= 0 {
		interval = defaultNarratorInterval
	}
	if w == nil {
		w = os.Stdout
	}
	return &Narrator{phrases: phrases, interval: interval, writer: w}
}

// Phrase returns the phrase for the nth display tick. The sequence is
// cyclic: tick n maps to phrase n modulo the list length.
func (n *Narrator) Phrase(tick int) string {
	if tick < 0 {
		tick = 0
	}
	return n.phrases[tick%len(n.phrases)]
}

// Advance moves to the next phrase and returns it. It drives the same
// cursor the animation goroutine uses, so tests can step the narrator
// deterministically without timers.
func (n *Narrator) Advance() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	phrase := n.Phrase(n.index)
	n.index++
	return phrase
}

// Start begins the phrase animation. Calling Start on a running
// narrator is a no-op.
func (n *Narrator) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.running {
		return
	}

	if GetPersonality() == PersonalityMachine {
		// Single status line, no animation
		fmt.Fprintln(n.writer, "working...")
		n.running = true
		n.stop = nil
		n.done = nil
		return
	}

	n.running = true
	n.index = 0
	n.stop = make(chan struct{})
	n.done = make(chan struct{})
	go n.animate(n.stop, n.done)
}

// Stop halts the animation and clears the current line. Safe to call
// multiple times.
func (n *Narrator) Stop() {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return
	}
	n.running = false
	stop, done := n.stop, n.done
	n.stop, n.done = nil, nil
	n.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (n *Narrator) animate(stop, done chan struct{}) {
	defer close(done)

	n.render(n.Advance())
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			n.clearLine()
			return
		case <-ticker.C:
			n.render(n.Advance())
		}
	}
}

func (n *Narrator) render(phrase string) {
	fmt.Fprintf(n.writer, "\r\033[K%s", Styles.Subtle.Render(phrase))
}

func (n *Narrator) clearLine() {
	fmt.Fprint(n.writer, "\r\033[K")
}
