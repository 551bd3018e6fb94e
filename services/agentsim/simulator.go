// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/trialtalk/trialtalk/pkg/trace"
)

// simulator fabricates agent answers and reasoning traces. Output is
// deterministic in the query text so tests and demos are repeatable.
type simulator struct{}

func newSimulator() *simulator {
	return &simulator{}
}

// Answer produces a canned response and a trace shaped like the real
// agent's: a tool invocation pair around a freeform thought, closed by
// a final-answer action.
func (s *simulator) Answer(query string) (string, []trace.RawStep) {
	n := studyCount(query)
	condition := extractCondition(query)

	answer := fmt.Sprintf("Found %d studies matching your question about %s. "+
		"The most relevant are actively recruiting; ask me about eligibility or locations to narrow down.",
		n, condition)

	steps := []trace.RawStep{
		trace.StructuredStep("tool_start", map[string]any{
			"tool":  "search_clinical_trials",
			"input": map[string]any{"query": query},
		}),
		trace.FreeformStep(fmt.Sprintf("Reviewing %d candidate studies for relevance", n+3)),
		trace.StructuredStep("tool_end", map[string]any{
			"tool":   "search_clinical_trials",
			"output": fmt.Sprintf("%d studies after filtering", n),
		}),
	}
	final := trace.StructuredStep("agent_action", nil)
	final.Action = "Final Answer"
	steps = append(steps, final)
	return answer, steps
}

// studyCount derives a stable pseudo-result-count from the query.
func studyCount(query string) int {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(query))))
	return int(h.Sum32()%40) + 3
}

// extractCondition pulls a condition-ish phrase out of the query for
// echo-back, falling back to a generic label.
func extractCondition(query string) string {
	lower := strings.ToLower(query)
	for _, cond := range []string{
		"lung cancer", "breast cancer", "melanoma", "diabetes",
		"alzheimer", "hypertension", "asthma", "leukemia",
	} {
		if strings.Contains(lower, cond) {
			return cond
		}
	}
	return "your condition of interest"
}
