// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// PersonalityLevel controls how much decoration the CLI emits.
type PersonalityLevel string

const (
	// PersonalityFull enables all decoration: headers, colors, icons,
	// and the progress narrator.
	PersonalityFull PersonalityLevel = "full"

	// PersonalityStandard enables colors and icons but trims headers.
	PersonalityStandard PersonalityLevel = "standard"

	// PersonalityMinimal keeps output terse with no decoration.
	PersonalityMinimal PersonalityLevel = "minimal"

	// PersonalityMachine emits plain, parseable output for pipes and
	// scripts. ASCII icons, no colors, no animation.
	PersonalityMachine PersonalityLevel = "machine"
)

var (
	personalityMu sync.RWMutex
	personality   = PersonalityStandard
)

// GetPersonality returns the current personality level.
func GetPersonality() PersonalityLevel {
	personalityMu.RLock()
	defer personalityMu.RUnlock()
	return personality
}

// SetPersonality sets the personality level for the process.
func SetPersonality(level PersonalityLevel) {
	personalityMu.Lock()
	defer personalityMu.Unlock()
	personality = level
}

// ParsePersonalityLevel parses a user-supplied personality name.
func ParsePersonalityLevel(s string) (PersonalityLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full":
		return PersonalityFull, nil
	case "standard", "":
		return PersonalityStandard, nil
	case "minimal":
		return PersonalityMinimal, nil
	case "machine":
		return PersonalityMachine, nil
	default:
		return "", fmt.Errorf("unknown personality level %q (valid: full, standard, minimal, machine)", s)
	}
}

// InitPersonality resolves the effective personality at startup.
//
// Precedence: the explicit flag value, then the TRIALTALK_PERSONALITY
// environment variable, then the config default. Non-terminal stdout
// forces machine mode regardless of the requested level.
func InitPersonality(flagValue, configDefault string) error {
	requested := flagValue
	if requested == "" {
		requested = os.Getenv("TRIALTALK_PERSONALITY")
	}
	if requested == "" {
		requested = configDefault
	}

	level, err := ParsePersonalityLevel(requested)
	if err != nil {
		return err
	}
	if !isTerminal() {
		level = PersonalityMachine
	}
	SetPersonality(level)
	return nil
}

func isTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
