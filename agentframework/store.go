// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"fmt"
	"sync"
)

// TranscriptStore holds conversation transcripts keyed by session ID.
//
// Load and Append are individually atomic. A read-modify-write sequence
// across them is not; callers that need one hold the session's lock from
// [TranscriptStore.Lock] for its duration.
type TranscriptStore interface {
	// Load returns a copy of the session's transcript. It returns an error
	// wrapping [ErrNotFound] if the session has no transcript yet.
	Load(ctx context.Context, sessionID string) ([]Message, error)

	// Append adds messages to the end of the session's transcript, creating
	// it if needed.
	Append(ctx context.Context, sessionID string, msgs ...Message) error

	// Lock acquires the session's exclusive lock and returns its release func.
	Lock(sessionID string) (unlock func())
}

// InMemoryStore is a process-local [TranscriptStore]. Transcripts live for
// the lifetime of the process; nothing is evicted.
type InMemoryStore struct {
	mu          sync.RWMutex
	transcripts map[string][]Message

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

var _ TranscriptStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty [InMemoryStore].
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		transcripts: make(map[string][]Message),
		locks:       make(map[string]*sync.Mutex),
	}
}

func (s *InMemoryStore) Load(_ context.Context, sessionID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs, ok := s.transcripts[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: session %q", ErrNotFound, sessionID)
	}
	cp := make([]Message, len(msgs))
	copy(cp, msgs)
	return cp, nil
}

func (s *InMemoryStore) Append(_ context.Context, sessionID string, msgs ...Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts[sessionID] = append(s.transcripts[sessionID], msgs...)
	return nil
}

func (s *InMemoryStore) Lock(sessionID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	s.locksMu.Unlock()

	l.Lock()
	return l.Unlock
}

// Len returns the number of messages stored for the session.
func (s *InMemoryStore) Len(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transcripts[sessionID])
}
