// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_RejectsBeyondBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	// 1 rps with burst 2: third immediate request must be rejected
	router.Use(rateLimiter(newClientLimiters(1, 2)))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}

func TestClientLimiters_PerClient(t *testing.T) {
	limiters := newClientLimiters(1, 1)
	a := limiters.get("10.0.0.1")
	b := limiters.get("10.0.0.2")
	assert.NotSame(t, a, b, "each client gets its own bucket")
	assert.Same(t, a, limiters.get("10.0.0.1"), "bucket is reused per client")
}

func TestSessionStore_Lifecycle(t *testing.T) {
	store := newSessionStore()

	id := store.Resolve("")
	assert.NotEmpty(t, id)
	assert.Equal(t, "fixed", store.Resolve("fixed"))

	store.Append(id, "q1", "a1")
	store.Append(id, "q2", "a2")
	count, ok := store.Count(id)
	assert.True(t, ok)
	assert.Equal(t, 4, count)

	history := store.History(id)
	assert.Len(t, history, 4)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "q1", history[0].Content)

	assert.True(t, store.Delete(id))
	assert.False(t, store.Delete(id))
}
