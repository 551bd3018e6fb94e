// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trialtalk/trialtalk/cmd/trialtalk/config"
	"github.com/trialtalk/trialtalk/pkg/logging"
	"github.com/trialtalk/trialtalk/pkg/ux"
)

// newCLILogger builds the process logger from the loaded config.
// Terminal output stays quiet so log lines never interleave with the
// chat UI; everything goes to the log file.
func newCLILogger() *logging.Logger {
	level := logging.LevelInfo
	switch config.Global.Logging.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}

	return logging.New(logging.Config{
		Level:   level,
		LogDir:  config.Global.Logging.Dir,
		Service: "trialtalk",
		Quiet:   true,
	})
}

func runChatCommand(cmd *cobra.Command, args []string) {
	logger := newCLILogger()
	defer logger.Close()

	runner := NewAgentChatRunner(resolveAgentURL(), logger)
	defer runner.Close()

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		ux.Error("chat session failed: %v", err)
		os.Exit(1)
	}
}
