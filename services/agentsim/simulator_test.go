// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trialtalk/trialtalk/pkg/trace"
)

func TestSimulator_TraceShape(t *testing.T) {
	_, steps := newSimulator().Answer("melanoma immunotherapy trials")

	require.Len(t, steps, 4)
	assert.Equal(t, "tool_start", steps[0].Type)
	assert.Equal(t, "search_clinical_trials", steps[0].Data["tool"])
	assert.Equal(t, trace.StepFreeform, steps[1].Kind)
	assert.Equal(t, "tool_end", steps[2].Type)
	assert.Equal(t, "Final Answer", steps[3].Action)
}

func TestSimulator_NormalizesCleanly(t *testing.T) {
	_, steps := newSimulator().Answer("asthma studies")

	normalized := trace.NormalizeAll(steps)
	require.Len(t, normalized, 4)
	assert.Equal(t, "Calling search_clinical_trials", normalized[0].Title)
	assert.Equal(t, "Result from search_clinical_trials", normalized[2].Title)
	assert.Equal(t, trace.CategoryAnswer, normalized[3].Category)
}

func TestSimulator_Deterministic(t *testing.T) {
	sim := newSimulator()
	a1, _ := sim.Answer("diabetes")
	a2, _ := sim.Answer("diabetes")
	assert.Equal(t, a1, a2)
}

func TestSimulator_EchoesCondition(t *testing.T) {
	answer, _ := newSimulator().Answer("recruiting breast cancer trials in phase 2")
	assert.Contains(t, answer, "breast cancer")

	answer, _ = newSimulator().Answer("anything else entirely")
	assert.Contains(t, answer, "your condition of interest")
}

func TestStudyCount_Range(t *testing.T) {
	for _, q := range []string{"a", "b", "long query about many things", ""} {
		n := studyCount(q)
		assert.GreaterOrEqual(t, n, 3)
		assert.LessOrEqual(t, n, 42)
	}
}
