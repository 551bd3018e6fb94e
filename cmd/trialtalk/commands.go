// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/trialtalk/trialtalk/cmd/trialtalk/config"
	"github.com/trialtalk/trialtalk/pkg/agent"
	"github.com/trialtalk/trialtalk/pkg/ux"
)

// --- Global Command Variables ---
var (
	agentURL         string // CLI override for agent.base_url
	personalityLevel string // UX personality level (full/standard/minimal/machine)
	showTrace        bool

	rootCmd = &cobra.Command{
		Use:   "trialtalk",
		Short: "A conversational front-end for a clinical-trials research agent",
		Long: `TrialTalk lets you explore clinical trial registries in plain
				language. It talks to a reasoning agent service that searches
				trial data, and shows you both the answers and the steps the
				agent took to reach them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return err
			}
			return ux.InitPersonality(personalityLevel, config.Global.UX.Personality)
		},
	}

	// --- Chat ---
	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation with the research agent",
		Run:   runChatCommand, // Defined in cmd_chat.go
	}

	// --- Ask ---
	askCmd = &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAskCommand, // Defined in cmd_ask.go
	}

	// --- Sessions ---
	sessionCmd = &cobra.Command{
		Use:   "session",
		Short: "Inspect and manage server-side conversation sessions",
	}
	showSessionCmd = &cobra.Command{
		Use:   "show [session_id]",
		Short: "Show metadata for a session",
		Args:  cobra.ExactArgs(1),
		Run:   runShowSession, // Defined in cmd_session.go
	}
	deleteSessionCmd = &cobra.Command{
		Use:   "delete [session_id]",
		Short: "Delete a session and its server-side history",
		Args:  cobra.ExactArgs(1),
		Run:   runDeleteSession, // Defined in cmd_session.go
	}

	// --- Health ---
	healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Check that the agent service is up and ready",
		Run:   runHealthCommand, // Defined in cmd_health.go
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().StringVar(&personalityLevel, "personality", "",
		"Output style: full, standard (default), minimal, or machine (scripting)")
	rootCmd.PersistentFlags().StringVar(&agentURL, "agent-url", "",
		"Agent service URL (overrides config and TRIALTALK_AGENT_URL)")

	rootCmd.AddCommand(chatCmd)

	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&showTrace, "trace", false, "Show the agent's reasoning steps with the answer")

	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(showSessionCmd)
	sessionCmd.AddCommand(deleteSessionCmd)

	rootCmd.AddCommand(healthCmd)
}

// resolveAgentURL applies flag precedence over the loaded config.
func resolveAgentURL() string {
	if agentURL != "" {
		return agentURL
	}
	return config.Global.Agent.BaseURL
}

// agentTimeout returns the configured per-request timeout.
func agentTimeout() time.Duration {
	return time.Duration(config.Global.Agent.TimeoutSeconds) * time.Second
}

// newAgentClient builds a client from the resolved URL and the
// configured timeout.
func newAgentClient() *agent.Client {
	return agent.NewClientWithTimeout(resolveAgentURL(), agentTimeout())
}
