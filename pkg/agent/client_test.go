// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// mockHTTPClient records the last request and returns canned
// responses.
type mockHTTPClient struct {
	response *http.Response
	err      error

	lastMethod      string
	lastURL         string
	lastContentType string
	lastBody        string
}

func (m *mockHTTPClient) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	m.lastMethod = http.MethodPost
	m.lastURL = url
	m.lastContentType = contentType
	if body != nil {
		b, _ := io.ReadAll(body)
		m.lastBody = string(b)
	}
	return m.response, m.err
}

func (m *mockHTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	m.lastMethod = http.MethodGet
	m.lastURL = url
	return m.response, m.err
}

func (m *mockHTTPClient) Delete(ctx context.Context, url string) (*http.Response, error) {
	m.lastMethod = http.MethodDelete
	m.lastURL = url
	return m.response, m.err
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestClient_Query(t *testing.T) {
	mock := &mockHTTPClient{
		response: jsonResponse(200, `{
			"response": "Found 12 studies.",
			"session_id": "abc-123",
			"thinking_steps": [
				{"type":"tool_start","data":{"tool":"search_clinical_trials","input":"diabetes"}},
				"reviewing results"
			]
		}`),
	}
	c := NewClientWithDeps("http://localhost:8000/", mock)

	out, err := c.Query(context.Background(), "phase 3 diabetes trials", "")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if out.Response != "Found 12 studies." {
		t.Errorf("response = %q", out.Response)
	}
	if out.SessionID != "abc-123" {
		t.Errorf("session_id = %q", out.SessionID)
	}
	if len(out.ThinkingSteps) != 2 {
		t.Fatalf("thinking_steps len = %d, want 2", len(out.ThinkingSteps))
	}
	if out.ThinkingSteps[0].Type != "tool_start" {
		t.Errorf("step 0 type = %q", out.ThinkingSteps[0].Type)
	}

	if mock.lastURL != "http://localhost:8000/query" {
		t.Errorf("url = %q (trailing slash not trimmed?)", mock.lastURL)
	}
	if mock.lastContentType != "application/json" {
		t.Errorf("content type = %q", mock.lastContentType)
	}
	if !strings.Contains(mock.lastBody, `"query":"phase 3 diabetes trials"`) {
		t.Errorf("body = %q", mock.lastBody)
	}
	if strings.Contains(mock.lastBody, "session_id") {
		t.Errorf("empty session id should be omitted: %q", mock.lastBody)
	}
}

func TestClient_QueryCarriesSessionID(t *testing.T) {
	mock := &mockHTTPClient{response: jsonResponse(200, `{"response":"ok","session_id":"s1"}`)}
	c := NewClientWithDeps("http://localhost:8000", mock)

	if _, err := c.Query(context.Background(), "follow up", "s1"); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !strings.Contains(mock.lastBody, `"session_id":"s1"`) {
		t.Errorf("body = %q", mock.lastBody)
	}
}

func TestClient_QueryTransportError(t *testing.T) {
	mock := &mockHTTPClient{err: errors.New("connection refused")}
	c := NewClientWithDeps("http://localhost:8000", mock)

	if _, err := c.Query(context.Background(), "q", ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestClient_QueryServerError(t *testing.T) {
	mock := &mockHTTPClient{response: jsonResponse(500, `{"detail":"agent not initialized"}`)}
	c := NewClientWithDeps("http://localhost:8000", mock)

	_, err := c.Query(context.Background(), "q", "")
	if err == nil {
		t.Fatal("expected error for 500")
	}
	if !strings.Contains(err.Error(), "agent not initialized") {
		t.Errorf("error missing body excerpt: %v", err)
	}
}

func TestClient_GetSession(t *testing.T) {
	mock := &mockHTTPClient{response: jsonResponse(200, `{"session_id":"s1","message_count":4}`)}
	c := NewClientWithDeps("http://localhost:8000", mock)

	info, err := c.GetSession(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if info.MessageCount != 4 {
		t.Errorf("message_count = %d", info.MessageCount)
	}
	if mock.lastURL != "http://localhost:8000/sessions/s1" {
		t.Errorf("url = %q", mock.lastURL)
	}
}

func TestClient_DeleteSession(t *testing.T) {
	mock := &mockHTTPClient{response: jsonResponse(200, `{"status":"deleted"}`)}
	c := NewClientWithDeps("http://localhost:8000", mock)

	if err := c.DeleteSession(context.Background(), "s1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if mock.lastMethod != http.MethodDelete {
		t.Errorf("method = %q", mock.lastMethod)
	}
	if mock.lastURL != "http://localhost:8000/sessions/s1" {
		t.Errorf("url = %q", mock.lastURL)
	}
}

func TestClient_DeleteSessionNotFound(t *testing.T) {
	mock := &mockHTTPClient{response: jsonResponse(404, `{"detail":"session not found"}`)}
	c := NewClientWithDeps("http://localhost:8000", mock)

	if err := c.DeleteSession(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestClient_Health(t *testing.T) {
	mock := &mockHTTPClient{response: jsonResponse(200, `{"status":"healthy","agent_ready":true}`)}
	c := NewClientWithDeps("http://localhost:8000", mock)

	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Status != "healthy" || !h.AgentReady {
		t.Errorf("health = %+v", h)
	}
	if mock.lastURL != "http://localhost:8000/health" {
		t.Errorf("url = %q", mock.lastURL)
	}
}

func TestNewClientWithTimeout(t *testing.T) {
	c := NewClientWithTimeout("http://localhost:8000", 300*time.Second)
	std, ok := c.http.(*stdHTTPClient)
	if !ok {
		t.Fatal("expected the standard transport")
	}
	if std.client.Timeout != 300*time.Second {
		t.Errorf("timeout = %v, want 300s", std.client.Timeout)
	}

	c = NewClientWithTimeout("http://localhost:8000", 0)
	if std = c.http.(*stdHTTPClient); std.client.Timeout != defaultTimeout {
		t.Errorf("timeout = %v, want default %v", std.client.Timeout, defaultTimeout)
	}
}
