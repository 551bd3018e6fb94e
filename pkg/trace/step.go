// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package trace normalizes the heterogeneous reasoning-step records the
// agent service returns alongside its answers.
//
// The agent reports its intermediate work as an ordered list of step
// records. A step may be a structured event (a "type" discriminator plus
// a "data" payload, e.g. a tool invocation), a freeform string, or an
// arbitrary object the client has never seen before. The package models
// that union explicitly so the normalizer's branches are exhaustive, and
// guarantees that decoding and normalization never fail: a payload the
// client cannot interpret degrades to readable text, never to an error.
package trace

import (
	"encoding/json"
)

// StepKind discriminates the shapes a raw step record can take.
type StepKind int

const (
	// StepStructured is an object carrying a "type" discriminator.
	StepStructured StepKind = iota

	// StepFreeform is a bare string.
	StepFreeform

	// StepUnknown is an object without a recognized discriminator.
	StepUnknown
)

// RawStep is one unit of the reasoning trace exactly as the agent
// service returned it.
//
// # Description
//
// RawStep is a tagged union over the three wire shapes. Exactly one
// of the payload field groups is populated, selected by Kind:
//
//   - StepStructured: Type and Data (plus Action if the record had one)
//   - StepFreeform: Text
//   - StepUnknown: Fields
//
// Decoding never fails. Anything that is not a JSON object or string
// (numbers, arrays, null) is kept verbatim as freeform text.
//
// # Thread Safety
//
// RawStep is a value type; treat it as immutable after decoding.
type RawStep struct {
	Kind StepKind

	// Type is the discriminator of a structured record, e.g.
	// "tool_start", "tool_end", "agent_action".
	Type string

	// Action is the record's declared action label, when present.
	Action string

	// Data is the payload of a structured record.
	Data map[string]any

	// Text is the content of a freeform record.
	Text string

	// Fields holds an unrecognized object record in full.
	Fields map[string]any
}

// UnmarshalJSON decodes a raw step from any of the three wire shapes.
// It never returns an error: undecodable input is preserved as freeform
// text so the trace is always renderable.
func (s *RawStep) UnmarshalJSON(b []byte) error {
	var text string
	if err := json.Unmarshal(b, &text); err == nil {
		*s = RawStep{Kind: StepFreeform, Text: text}
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err != nil {
		// Not an object or string; keep the raw bytes readable
		*s = RawStep{Kind: StepFreeform, Text: string(b)}
		return nil
	}

	step := RawStep{Kind: StepUnknown, Fields: obj}
	if typ, ok := obj["type"].(string); ok && typ != "" {
		step.Kind = StepStructured
		step.Type = typ
		if data, ok := obj["data"].(map[string]any); ok {
			step.Data = data
		}
	}
	if action, ok := obj["action"].(string); ok {
		step.Action = action
	}
	*s = step
	return nil
}

// MarshalJSON re-encodes the step in its original wire shape.
func (s RawStep) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.record())
}

// record returns the step's original wire representation.
func (s RawStep) record() any {
	switch s.Kind {
	case StepStructured:
		rec := map[string]any{"type": s.Type}
		if s.Data != nil {
			rec["data"] = s.Data
		}
		if s.Action != "" {
			rec["action"] = s.Action
		}
		return rec
	case StepUnknown:
		return s.Fields
	default:
		return s.Text
	}
}

// FreeformStep builds a freeform step from plain text. Used by tests
// and by callers that synthesize traces locally.
func FreeformStep(text string) RawStep {
	return RawStep{Kind: StepFreeform, Text: text}
}

// StructuredStep builds a structured step from a discriminator and
// payload. Used by tests and by the agent simulator.
func StructuredStep(typ string, data map[string]any) RawStep {
	return RawStep{Kind: StepStructured, Type: typ, Data: data}
}
