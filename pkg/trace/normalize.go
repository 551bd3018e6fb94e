// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package trace

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ============================================================================
// Categories
// ============================================================================

// Category is the semantic bucket a normalized step belongs to. The
// terminal UI keys its step icons and styling off this value.
type Category int

const (
	// CategoryGeneric is the fallback for steps that match no keyword.
	CategoryGeneric Category = iota

	// CategorySearch covers retrieval and lookup actions.
	CategorySearch

	// CategoryDatabase covers database and SQL actions.
	CategoryDatabase

	// CategoryAnswer covers final-answer composition.
	CategoryAnswer

	// CategoryTool covers tool execution and processing.
	CategoryTool

	// CategoryObservation covers result inspection.
	CategoryObservation
)

// String returns the lowercase name of the category.
func (c Category) String() string {
	switch c {
	case CategorySearch:
		return "search"
	case CategoryDatabase:
		return "database"
	case CategoryAnswer:
		return "answer"
	case CategoryTool:
		return "tool"
	case CategoryObservation:
		return "observation"
	default:
		return "generic"
	}
}

// categoryRule maps a set of substrings to a category. Rules are
// checked in order; the first rule with any matching substring wins.
type categoryRule struct {
	keywords []string
	category Category
}

var categoryRules = []categoryRule{
	{[]string{"search"}, CategorySearch},
	{[]string{"database", "sql"}, CategoryDatabase},
	{[]string{"final", "answer"}, CategoryAnswer},
	{[]string{"tool", "process"}, CategoryTool},
	{[]string{"observation", "view"}, CategoryObservation},
}

// Classify maps an action label to its category by case-insensitive
// substring search. Labels that match nothing are CategoryGeneric.
func Classify(action string) Category {
	lower := strings.ToLower(action)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return CategoryGeneric
}

// ============================================================================
// Normalization
// ============================================================================

// NormalizedStep is the display-ready form of one reasoning step.
type NormalizedStep struct {
	// Category selects the step's icon and styling in the UI.
	Category Category

	// Title is the short headline, e.g. "Calling search_clinical_trials".
	Title string

	// Body is the longer detail text. May be empty.
	Body string
}

// Normalize converts a raw step into its display form.
//
// # Description
//
// Normalize never fails. Structured tool events get purpose-built
// titles ("Calling {tool}", "Result from {tool}") with pretty-printed
// payloads in the body. Every other shape falls back to the step's
// action label as the title and readable text as the body: the
// record's "details" or "thought" field when present, otherwise the
// whole record pretty-printed. Freeform text that happens to contain a
// serialized record is re-parsed before that fallback; text that does
// not parse is shown verbatim.
//
// The category is derived from the action label alone, so it is stable
// whether or not the payload was interpretable.
//
// # Inputs
//   - step: the raw step as decoded from the agent response.
//
// # Outputs
//   - NormalizedStep: always valid, never an error.
func Normalize(step RawStep) NormalizedStep {
	action := actionLabel(step)
	out := NormalizedStep{
		Category: Classify(action),
		Title:    action,
	}

	rec := step
	if step.Kind == StepFreeform {
		// The text may itself be a serialized record
		var reparsed RawStep
		if err := json.Unmarshal([]byte(step.Text), &reparsed); err == nil && reparsed.Kind != StepFreeform {
			rec = reparsed
		} else {
			out.Body = step.Text
			return out
		}
	}

	if rec.Kind == StepStructured {
		switch rec.Type {
		case "tool_start":
			if tool, ok := rec.Data["tool"].(string); ok && tool != "" {
				out.Title = "Calling " + tool
				out.Body = toolBody(tool, rec.Data["input"])
				return out
			}
		case "tool_end":
			if tool, ok := rec.Data["tool"].(string); ok && tool != "" {
				out.Title = "Result from " + tool
				out.Body = toolBody(tool, rec.Data["output"])
				return out
			}
		}
	}

	out.Body = detailText(rec)
	return out
}

// NormalizeAll normalizes a full trace in order.
func NormalizeAll(steps []RawStep) []NormalizedStep {
	if len(steps) == 0 {
		return nil
	}
	out := make([]NormalizedStep, len(steps))
	for i, s := range steps {
		out[i] = Normalize(s)
	}
	return out
}

// actionLabel derives the step's action label: the explicit "action"
// field when present, then the type discriminator, then a generic
// placeholder.
func actionLabel(step RawStep) string {
	if step.Action != "" {
		return step.Action
	}
	if step.Type != "" {
		return step.Type
	}
	return "Processing"
}

// detailText extracts the most readable detail text from a record:
// a "details" field, then a "thought" field, then the whole record
// pretty-printed.
func detailText(step RawStep) string {
	for _, key := range []string{"details", "thought"} {
		if v := fieldString(step, key); v != "" {
			return v
		}
	}
	return prettyPrint(step.record())
}

// fieldString looks up a string field in the record's payload.
func fieldString(step RawStep, key string) string {
	if v, ok := step.Data[key].(string); ok {
		return v
	}
	if v, ok := step.Fields[key].(string); ok {
		return v
	}
	return ""
}

// toolBody renders a tool name with its pretty-printed payload.
func toolBody(tool string, payload any) string {
	if payload == nil {
		return tool
	}
	return tool + "\n" + prettyPrint(payload)
}

// prettyPrint renders a value as indented JSON, degrading to the Go
// default formatting when the value cannot be marshaled.
func prettyPrint(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
