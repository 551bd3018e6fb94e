// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trialtalk/trialtalk/pkg/session"
	"github.com/trialtalk/trialtalk/pkg/trace"
	"github.com/trialtalk/trialtalk/pkg/ux"
)

// runAskCommand sends a single question, prints the answer, and
// exits. With --trace the reasoning steps are shown too.
func runAskCommand(cmd *cobra.Command, args []string) {
	logger := newCLILogger()
	defer logger.Close()

	question := strings.Join(args, " ")
	controller := session.NewController(newAgentClient(), logger)

	narrator := ux.NewNarrator()
	narrator.Start()
	reply, err := controller.SubmitQuery(context.Background(), question)
	narrator.Stop()

	if err != nil {
		ux.Error("%v", err)
		os.Exit(1)
	}

	ui := ux.NewChatUI()
	if showTrace {
		ui.Trace(trace.NormalizeAll(reply.Steps))
	}
	ui.Response(reply.Content)
}
