// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trialtalk/trialtalk/pkg/trace"
)

// queryRequest matches the CLI's POST /query body.
type queryRequest struct {
	Query     string `json:"query" binding:"required"`
	SessionID string `json:"session_id"`
}

// queryResponse matches the agent's answer shape.
type queryResponse struct {
	Response      string          `json:"response"`
	SessionID     string          `json:"session_id"`
	ThinkingSteps []trace.RawStep `json:"thinking_steps"`
}

type handlers struct {
	store   *sessionStore
	sim     *simulator
	metrics *simulatorMetrics
}

func newHandlers(store *sessionStore, sim *simulator, metrics *simulatorMetrics) *handlers {
	return &handlers{store: store, sim: sim, metrics: metrics}
}

func (h *handlers) handleQuery(c *gin.Context) {
	start := time.Now()

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RequestsTotal.WithLabelValues("query", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	sessionID := h.store.Resolve(req.SessionID)
	answer, steps := h.sim.Answer(req.Query)
	h.store.Append(sessionID, req.Query, answer)

	h.metrics.RequestsTotal.WithLabelValues("query", "success").Inc()
	h.metrics.QueryDurationSeconds.Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, queryResponse{
		Response:      answer,
		SessionID:     sessionID,
		ThinkingSteps: steps,
	})
}

func (h *handlers) handleGetSession(c *gin.Context) {
	id := c.Param("id")
	count, ok := h.store.Count(id)
	if !ok {
		h.metrics.RequestsTotal.WithLabelValues("get_session", "not_found").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	h.metrics.RequestsTotal.WithLabelValues("get_session", "success").Inc()
	c.JSON(http.StatusOK, gin.H{
		"session_id":    id,
		"message_count": count,
	})
}

func (h *handlers) handleDeleteSession(c *gin.Context) {
	id := c.Param("id")
	if !h.store.Delete(id) {
		h.metrics.RequestsTotal.WithLabelValues("delete_session", "not_found").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	h.metrics.RequestsTotal.WithLabelValues("delete_session", "success").Inc()
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "session_id": id})
}

func (h *handlers) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"agent_ready": true,
	})
}
