// Copyright (c) Microsoft. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

const (
	msgMessagesRequired = "Messages are required"
	msgUnexpected       = "Sorry, I encountered an unexpected error while processing your request."
)

type chatRequest struct {
	Messages []af.Message `json:"messages"`
}

type sessionResponse struct {
	SessionID string       `json:"sessionId"`
	Messages  []af.Message `json:"messages"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Messages) == 0 {
		writeText(w, http.StatusBadRequest, msgMessagesRequired)
		return
	}
	for i, m := range req.Messages {
		if err := m.Validate(); err != nil {
			writeText(w, http.StatusBadRequest, fmt.Sprintf("Invalid message %d: %v", i, err))
			return
		}
	}

	sessionID := SessionID(r)
	log := s.log.WithFields(logrus.Fields{"session": sessionID, "messages": len(req.Messages)})

	latest := req.Messages[len(req.Messages)-1]
	resp, err := af.NewSession(sessionID, s.store).Exchange(r.Context(), s.agent, latest)
	if err != nil {
		log.WithError(err).Error("chat exchange failed")
		writeText(w, http.StatusInternalServerError, errorBody(err))
		return
	}

	log.WithFields(logrus.Fields{
		"steps": resp.Steps,
		"tools": resp.ToolNames(),
	}).Debug("chat exchange completed")

	if err := writeTextChunk(w, resp.Text); err != nil {
		log.WithError(err).Warn("write chat response")
	}
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	msgs, err := s.store.Load(r.Context(), id)
	switch {
	case errors.Is(err, af.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	case err != nil:
		s.log.WithError(err).WithField("session", id).Error("load transcript")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, Messages: msgs})
}

// errorBody renders err as the 500 response body.
func errorBody(err error) string {
	if err == nil || err.Error() == "" {
		return msgUnexpected
	}
	return "Error: " + err.Error()
}
