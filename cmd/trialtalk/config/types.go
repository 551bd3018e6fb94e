// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the CLI configuration from the user's home
// directory, creating a commented default on first run.
package config

type TrialTalkConfig struct {
	// Agent: where the clinical-trials agent service lives
	Agent AgentConfig `yaml:"agent" validate:"required"`

	// UX: default presentation settings
	UX UXConfig `yaml:"ux"`

	// Logging: CLI log destination and verbosity
	Logging LoggingConfig `yaml:"logging"`
}

type AgentConfig struct {
	BaseURL        string `yaml:"base_url" validate:"required,url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gte=0,lte=600"`
}

type UXConfig struct {
	// Personality can be "full", "standard", "minimal", or "machine"
	Personality string `yaml:"personality" validate:"omitempty,oneof=full standard minimal machine"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Dir   string `yaml:"dir"`
}

func DefaultConfig() TrialTalkConfig {
	return TrialTalkConfig{
		Agent: AgentConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 60,
		},
		UX: UXConfig{
			Personality: "standard",
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "~/.trialtalk/logs",
		},
	}
}
