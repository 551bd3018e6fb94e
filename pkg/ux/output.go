// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides the terminal presentation layer: styled output,
// the personality system, the chat surface, and the progress narrator.
package ux

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// ============================================================================
// Color Palette
// ============================================================================

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#0550AE", Dark: "#58A6FF"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"}
	colorError   = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6E7781", Dark: "#8B949E"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#8250DF", Dark: "#BC8CFF"}
)

// Styles holds the shared lipgloss styles used across the CLI.
var Styles = struct {
	Header    lipgloss.Style
	Subtle    lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Info      lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
	Bold      lipgloss.Style
	StepTitle lipgloss.Style
	StepBody  lipgloss.Style
	Prompt    lipgloss.Style
}{
	Header:    lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
	Subtle:    lipgloss.NewStyle().Foreground(colorMuted),
	Success:   lipgloss.NewStyle().Foreground(colorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(colorWarning),
	Error:     lipgloss.NewStyle().Foreground(colorError),
	Info:      lipgloss.NewStyle().Foreground(colorPrimary),
	Muted:     lipgloss.NewStyle().Foreground(colorMuted),
	Accent:    lipgloss.NewStyle().Foreground(colorAccent),
	Bold:      lipgloss.NewStyle().Bold(true),
	StepTitle: lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	StepBody:  lipgloss.NewStyle().Foreground(colorMuted).PaddingLeft(4),
	Prompt:    lipgloss.NewStyle().Bold(true).Foreground(colorSuccess),
}

// ============================================================================
// Icons
// ============================================================================

// Icon is a small glyph with a unicode form and an ASCII fallback.
type Icon struct {
	Unicode string
	ASCII   string
}

var (
	IconSuccess     = Icon{"✓", "[OK]"}
	IconWarning     = Icon{"⚠", "[WARN]"}
	IconError       = Icon{"✗", "[ERR]"}
	IconInfo        = Icon{"ℹ", "[INFO]"}
	IconSearch      = Icon{"🔍", "[SEARCH]"}
	IconDatabase    = Icon{"🗄", "[DB]"}
	IconAnswer      = Icon{"💬", "[ANSWER]"}
	IconTool        = Icon{"🔧", "[TOOL]"}
	IconObservation = Icon{"👁", "[OBS]"}
	IconStep        = Icon{"•", "*"}
)

// Render returns the icon in the form appropriate for the current
// personality: ASCII in machine mode, unicode otherwise.
func (i Icon) Render() string {
	if GetPersonality() == PersonalityMachine {
		return i.ASCII
	}
	return i.Unicode
}

// ============================================================================
// Print Helpers
// ============================================================================

// Success prints a green success line to stdout.
func Success(format string, args ...any) {
	printStatus(Styles.Success, IconSuccess, format, args...)
}

// Warning prints a yellow warning line to stdout.
func Warning(format string, args ...any) {
	printStatus(Styles.Warning, IconWarning, format, args...)
}

// Error prints a red error line to stderr.
func Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if GetPersonality() == PersonalityMachine {
		fmt.Fprintf(os.Stderr, "%s %s\n", IconError.ASCII, msg)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", Styles.Error.Render(IconError.Render()), msg)
}

// Info prints an informational line to stdout.
func Info(format string, args ...any) {
	printStatus(Styles.Info, IconInfo, format, args...)
}

// Muted prints a dimmed line to stdout. Suppressed in machine mode.
func Muted(format string, args ...any) {
	if GetPersonality() == PersonalityMachine {
		return
	}
	fmt.Println(Styles.Muted.Render(fmt.Sprintf(format, args...)))
}

func printStatus(style lipgloss.Style, icon Icon, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if GetPersonality() == PersonalityMachine {
		fmt.Printf("%s %s\n", icon.ASCII, msg)
		return
	}
	fmt.Printf("%s %s\n", style.Render(icon.Render()), msg)
}
