// Copyright (C) 2025 TrialTalk Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// agentsim is a stand-in for the clinical-trials agent service.
//
// It speaks the same JSON API as the real agent (POST /query, session
// endpoints, /health) but fabricates answers and reasoning traces
// deterministically, so the CLI can be developed, demoed, and
// integration-tested without a model backend.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	port := os.Getenv("AGENTSIM_PORT")
	if port == "" {
		port = "8000"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	store := newSessionStore()
	metrics := newSimulatorMetrics(prometheus.DefaultRegisterer)
	handlers := newHandlers(store, newSimulator(), metrics)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(rateLimiter(newClientLimiters(5, 10)))

	router.POST("/query", handlers.handleQuery)
	router.GET("/sessions/:id", handlers.handleGetSession)
	router.DELETE("/sessions/:id", handlers.handleDeleteSession)
	router.GET("/health", handlers.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("agent simulator listening", "port", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
