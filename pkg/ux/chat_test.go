// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"bytes"
	"strings"
	"testing"

	"github.com/trialtalk/trialtalk/pkg/trace"
)

func TestChatUI_HeaderByPersonality(t *testing.T) {
	cases := []struct {
		level PersonalityLevel
		want  string
	}{
		{PersonalityMachine, "chat session started agent=http://localhost:8000"},
		{PersonalityMinimal, "TrialTalk chat"},
		{PersonalityStandard, "Connected to http://localhost:8000"},
		{PersonalityFull, "Try asking:"},
	}
	for _, tc := range cases {
		t.Run(string(tc.level), func(t *testing.T) {
			withPersonality(t, tc.level)
			var buf bytes.Buffer
			NewChatUIWithWriter(&buf).Header("http://localhost:8000")
			if !strings.Contains(buf.String(), tc.want) {
				t.Errorf("header = %q, missing %q", buf.String(), tc.want)
			}
		})
	}
}

func TestChatUI_FullHeaderListsStarterQueries(t *testing.T) {
	withPersonality(t, PersonalityFull)
	var buf bytes.Buffer
	NewChatUIWithWriter(&buf).Header("http://localhost:8000")
	for _, q := range starterQueries {
		if !strings.Contains(buf.String(), q) {
			t.Errorf("header missing starter query %q", q)
		}
	}
}

func TestChatUI_Response(t *testing.T) {
	withPersonality(t, PersonalityStandard)
	var buf bytes.Buffer
	NewChatUIWithWriter(&buf).Response("Found 12 studies.")
	if !strings.Contains(buf.String(), "Found 12 studies.") {
		t.Errorf("response not rendered: %q", buf.String())
	}
}

func TestChatUI_ResponseMachineIsPlain(t *testing.T) {
	withPersonality(t, PersonalityMachine)
	var buf bytes.Buffer
	NewChatUIWithWriter(&buf).Response("Found 12 studies.")
	if got := buf.String(); got != "Found 12 studies.\n" {
		t.Errorf("machine response = %q, want bare text", got)
	}
}

func TestChatUI_TraceRendersTitlesAndBodies(t *testing.T) {
	withPersonality(t, PersonalityStandard)
	var buf bytes.Buffer
	steps := []trace.NormalizedStep{
		{Category: trace.CategoryTool, Title: "Calling search_clinical_trials", Body: "search_clinical_trials\nline two"},
		{Category: trace.CategoryAnswer, Title: "Final Answer"},
	}
	NewChatUIWithWriter(&buf).Trace(steps)

	out := buf.String()
	for _, want := range []string{"reasoning (2 steps)", "Calling search_clinical_trials", "line two", "Final Answer"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace output missing %q: %q", want, out)
		}
	}
}

func TestChatUI_TraceSuppressedInMinimal(t *testing.T) {
	withPersonality(t, PersonalityMinimal)
	var buf bytes.Buffer
	NewChatUIWithWriter(&buf).Trace([]trace.NormalizedStep{{Title: "x"}})
	if buf.Len() != 0 {
		t.Errorf("minimal trace output = %q, want none", buf.String())
	}
}

func TestChatUI_TraceEmptyIsSilent(t *testing.T) {
	withPersonality(t, PersonalityStandard)
	var buf bytes.Buffer
	NewChatUIWithWriter(&buf).Trace(nil)
	if buf.Len() != 0 {
		t.Errorf("empty trace output = %q, want none", buf.String())
	}
}

func TestChatUI_SessionEnd(t *testing.T) {
	withPersonality(t, PersonalityStandard)
	var buf bytes.Buffer
	NewChatUIWithWriter(&buf).SessionEnd(1)
	if !strings.Contains(buf.String(), "1 exchange") {
		t.Errorf("session end = %q", buf.String())
	}

	buf.Reset()
	NewChatUIWithWriter(&buf).SessionEnd(3)
	if !strings.Contains(buf.String(), "3 exchanges") {
		t.Errorf("session end = %q", buf.String())
	}
}

func TestCategoryIcon(t *testing.T) {
	cases := []struct {
		category trace.Category
		want     Icon
	}{
		{trace.CategorySearch, IconSearch},
		{trace.CategoryDatabase, IconDatabase},
		{trace.CategoryAnswer, IconAnswer},
		{trace.CategoryTool, IconTool},
		{trace.CategoryObservation, IconObservation},
		{trace.CategoryGeneric, IconStep},
	}
	for _, tc := range cases {
		if got := categoryIcon(tc.category); got != tc.want {
			t.Errorf("categoryIcon(%v) = %v, want %v", tc.category, got, tc.want)
		}
	}
}

func TestParsePersonalityLevel(t *testing.T) {
	for in, want := range map[string]PersonalityLevel{
		"full":     PersonalityFull,
		"STANDARD": PersonalityStandard,
		" minimal": PersonalityMinimal,
		"machine":  PersonalityMachine,
		"":         PersonalityStandard,
	} {
		got, err := ParsePersonalityLevel(in)
		if err != nil || got != want {
			t.Errorf("ParsePersonalityLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParsePersonalityLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
