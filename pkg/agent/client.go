// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package agent is the HTTP client for the clinical-trials agent
// service. It speaks the service's JSON API and knows nothing about
// terminal presentation or conversation state.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/trialtalk/trialtalk/pkg/trace"
)

// defaultTimeout bounds a single agent request. Agent queries fan out
// to retrieval tools and can legitimately run for tens of seconds.
const defaultTimeout = 60 * time.Second

// HTTPClient abstracts the HTTP transport so tests can substitute a
// mock without a live server.
type HTTPClient interface {
	Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error)
	Get(ctx context.Context, url string) (*http.Response, error)
	Delete(ctx context.Context, url string) (*http.Response, error)
}

// stdHTTPClient is the production HTTPClient over net/http.
type stdHTTPClient struct {
	client *http.Client
}

func (c *stdHTTPClient) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.client.Do(req)
}

func (c *stdHTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

func (c *stdHTTPClient) Delete(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

// ============================================================================
// Wire Types
// ============================================================================

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// QueryResponse is the agent's answer to a query.
type QueryResponse struct {
	Response      string          `json:"response"`
	SessionID     string          `json:"session_id"`
	ThinkingSteps []trace.RawStep `json:"thinking_steps"`
}

// SessionInfo describes a server-side conversation session.
type SessionInfo struct {
	SessionID    string `json:"session_id"`
	MessageCount int    `json:"message_count"`
}

// HealthStatus is the service's liveness report.
type HealthStatus struct {
	Status     string `json:"status"`
	AgentReady bool   `json:"agent_ready"`
}

// ============================================================================
// Client
// ============================================================================

// Client calls the agent service.
//
// # Description
//
// All methods honor the passed context and return explicit errors for
// transport failures and non-2xx responses. The client holds no
// conversation state; session identity travels in the request and
// response bodies.
//
// # Thread Safety
//
// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    HTTPClient
}

// NewClient creates a client for the agent service at baseURL using
// the default transport and timeout.
func NewClient(baseURL string) *Client {
	return NewClientWithTimeout(baseURL, defaultTimeout)
}

// NewClientWithTimeout creates a client with an explicit per-request
// timeout. A non-positive timeout falls back to the default.
func NewClientWithTimeout(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewClientWithDeps(baseURL, &stdHTTPClient{
		client: &http.Client{Timeout: timeout},
	})
}

// NewClientWithDeps creates a client with an explicit transport. Used
// by tests.
func NewClientWithDeps(baseURL string, httpClient HTTPClient) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// BaseURL returns the configured service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Query sends a user query, continuing the given session when
// sessionID is non-empty.
func (c *Client) Query(ctx context.Context, query, sessionID string) (*QueryResponse, error) {
	body, err := json.Marshal(QueryRequest{Query: query, SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("encoding query request: %w", err)
	}

	resp, err := c.http.Post(ctx, c.baseURL+"/query", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("querying agent: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var out QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding query response: %w", err)
	}
	return &out, nil
}

// GetSession fetches metadata for a session.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/sessions/"+sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetching session: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var out SessionInfo
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding session info: %w", err)
	}
	return &out, nil
}

// DeleteSession removes a server-side session and its history.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	resp, err := c.http.Delete(ctx, c.baseURL+"/sessions/"+sessionID)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// Health checks whether the service is up and its agent initialized.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/health")
	if err != nil {
		return nil, fmt.Errorf("checking health: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var out HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding health response: %w", err)
	}
	return &out, nil
}

// checkStatus converts a non-2xx response into an error carrying a
// short body excerpt for diagnosis.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(excerpt))
	if msg == "" {
		return fmt.Errorf("agent service returned %s", resp.Status)
	}
	return fmt.Errorf("agent service returned %s: %s", resp.Status, msg)
}
