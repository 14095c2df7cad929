package agent

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/supplierx/poagent/dialogue"
)

// StateReadWriter provides read/write access to per-session conversation
// state using the context for routing.
type StateReadWriter interface {
	Read(ctx context.Context) (*dialogue.ConversationState, error)
	Write(ctx context.Context, state *dialogue.ConversationState) error
	Remove(ctx context.Context) error
}

type sessionKeyContext struct{}

const defaultSessionKey = "default"

// WithSessionKey sets a routing key for state storage in the context.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyContext{}, key)
}

// SessionKeyFromContext gets the routing key from the context.
func SessionKeyFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(sessionKeyContext{})
	if value == nil {
		return "", false
	}
	key, ok := value.(string)
	return key, ok
}

func sessionKeyOrDefault(ctx context.Context) string {
	key, ok := SessionKeyFromContext(ctx)
	if ok && key != "" {
		return key
	}
	return defaultSessionKey
}

// NewSessionKey returns a fresh routing key for a new session.
func NewSessionKey() string {
	return uuid.NewString()
}

// MemoryStateReadWriter is an in-memory implementation for testing and local
// usage. A missing session reads as a fresh conversation.
type MemoryStateReadWriter struct {
	mu     sync.RWMutex
	states map[string]*dialogue.ConversationState
}

func NewMemoryStateReadWriter() *MemoryStateReadWriter {
	return &MemoryStateReadWriter{
		states: make(map[string]*dialogue.ConversationState),
	}
}

func (m *MemoryStateReadWriter) Read(ctx context.Context) (*dialogue.ConversationState, error) {
	m.mu.RLock()
	state, ok := m.states[sessionKeyOrDefault(ctx)]
	m.mu.RUnlock()
	if ok {
		return state, nil
	}
	return dialogue.NewConversationState(), nil
}

func (m *MemoryStateReadWriter) Write(ctx context.Context, state *dialogue.ConversationState) error {
	m.mu.Lock()
	m.states[sessionKeyOrDefault(ctx)] = state
	m.mu.Unlock()
	return nil
}

func (m *MemoryStateReadWriter) Remove(ctx context.Context) error {
	m.mu.Lock()
	delete(m.states, sessionKeyOrDefault(ctx))
	m.mu.Unlock()
	return nil
}
