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
	"time"

	"github.com/spf13/cobra"

	"github.com/trialtalk/trialtalk/pkg/ux"
)

// healthTimeout keeps the health probe snappy. A health endpoint that
// takes longer than this usually means the agent is struggling.
const healthTimeout = 5 * time.Second

func runHealthCommand(cmd *cobra.Command, args []string) {
	client := newAgentClient()

	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	status, err := client.Health(ctx)
	if err != nil {
		ux.Error("agent service unreachable at %s: %v", resolveAgentURL(), err)
		os.Exit(1)
	}
	if !status.AgentReady {
		ux.Warning("service is up but the agent is not ready yet (status: %s)", status.Status)
		os.Exit(1)
	}
	ux.Success("agent service is %s and ready", status.Status)
}
