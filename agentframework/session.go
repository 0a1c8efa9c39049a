// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Generator produces the agent's next turns for a transcript. [*Agent]
// implements it.
type Generator interface {
	Generate(ctx context.Context, transcript []Message, opts ...RunOption) (*AgentResponse, error)
}

// Session binds a session ID to a [TranscriptStore] and performs
// conversation exchanges against it.
type Session struct {
	id    string
	store TranscriptStore
}

// NewSession returns the session with the given ID backed by store.
func NewSession(id string, store TranscriptStore) *Session {
	return &Session{id: id, store: store}
}

// ID returns the session's identifier.
func (s *Session) ID() string { return s.id }

// Transcript returns the stored transcript, or nil for a new session.
func (s *Session) Transcript(ctx context.Context) ([]Message, error) {
	msgs, err := s.store.Load(ctx, s.id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return msgs, err
}

// Exchange runs one conversational turn under the session lock:
//
//  1. if latest is a user message it is appended to the transcript;
//  2. gen is called with the full transcript;
//  3. the turns gen reports are appended, or a single assistant message
//     carrying resp.Text when it reports none.
//
// A user message appended in step 1 stays in the transcript when gen fails.
func (s *Session) Exchange(ctx context.Context, gen Generator, latest Message, opts ...RunOption) (*AgentResponse, error) {
	unlock := s.store.Lock(s.id)
	defer unlock()

	transcript, err := s.Transcript(ctx)
	if err != nil {
		return nil, err
	}

	if latest.Role == RoleUser {
		if latest.ID == "" {
			latest.ID = uuid.NewString()
		}
		if err := s.store.Append(ctx, s.id, latest); err != nil {
			return nil, err
		}
		transcript = append(transcript, latest)
	}

	resp, err := gen.Generate(ctx, transcript, opts...)
	if err != nil {
		return nil, err
	}

	turns := resp.Messages
	if len(turns) == 0 {
		turns = []Message{NewAssistantMessage(resp.Text)}
	}
	if err := s.store.Append(ctx, s.id, turns...); err != nil {
		return nil, err
	}
	return resp, nil
}
