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

	"github.com/spf13/cobra"

	"github.com/trialtalk/trialtalk/pkg/ux"
)

func runShowSession(cmd *cobra.Command, args []string) {
	client := newAgentClient()

	info, err := client.GetSession(context.Background(), args[0])
	if err != nil {
		ux.Error("could not fetch session: %v", err)
		os.Exit(1)
	}
	ux.Info("session %s holds %d messages", info.SessionID, info.MessageCount)
}

func runDeleteSession(cmd *cobra.Command, args []string) {
	client := newAgentClient()

	if err := client.DeleteSession(context.Background(), args[0]); err != nil {
		ux.Error("could not delete session: %v", err)
		os.Exit(1)
	}
	ux.Success("session %s deleted", args[0])
}
