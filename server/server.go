// Copyright (c) Microsoft. All rights reserved.

// Package server exposes the Weather Agent over HTTP.
//
// Routes:
//
//	POST /api/chat            run one conversational exchange
//	GET  /api/sessions/{id}   stored transcript for a session
//	GET  /health              liveness probe
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

// Server routes chat requests to an agent and keeps transcripts in a store.
type Server struct {
	agent  af.Generator
	store  af.TranscriptStore
	log    *logrus.Logger
	router *mux.Router
}

// New creates a Server. A nil store gets a fresh [af.InMemoryStore]; a nil
// logger gets logrus' standard logger.
func New(agent af.Generator, store af.TranscriptStore, log *logrus.Logger) *Server {
	if store == nil {
		store = af.NewInMemoryStore()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		agent:  agent,
		store:  store,
		log:    log,
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(LoggingMiddleware(s.log))

	s.router.HandleFunc("/api/chat", s.handleChat).Methods(http.MethodPost)
	s.router.HandleFunc("/api/sessions/{id}", s.handleSession).Methods(http.MethodGet)
	s.router.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, giving in-flight exchanges up to ten seconds to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("chat server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down chat server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
