package repository

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hwangtech/linebot-backend/internal/entity"
)

// ConversationMemory keeps per-user histories in process memory.
// Entries expire after the configured idle TTL; every append refreshes
// the expiration. Nothing survives a restart, which is the documented
// default for this backend.
type ConversationMemory struct {
	cache    *gocache.Cache
	maxTurns int

	// guards the read-modify-write in Append; go-cache only makes the
	// individual Get/Set calls safe.
	mu sync.Mutex
}

// NewConversationMemory creates an in-memory store bounded at maxTurns
// per user.
func NewConversationMemory(maxTurns int, idleTTL time.Duration) *ConversationMemory {
	if maxTurns < 1 {
		maxTurns = entity.DefaultMaxTurns
	}
	return &ConversationMemory{
		cache:    gocache.New(idleTTL, 2*idleTTL),
		maxTurns: maxTurns,
	}
}

// Get returns a copy of the user's history, empty if absent.
func (s *ConversationMemory) Get(_ context.Context, userID string) (entity.History, error) {
	v, ok := s.cache.Get(userID)
	if !ok {
		return entity.History{}, nil
	}

	stored := v.(entity.History)
	history := make(entity.History, len(stored))
	copy(history, stored)
	return history, nil
}

// Append adds a turn to the user's history, evicting the oldest turn
// once the bound is reached.
func (s *ConversationMemory) Append(_ context.Context, userID string, turn entity.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var history entity.History
	if v, ok := s.cache.Get(userID); ok {
		history = v.(entity.History)
	}

	history = append(history, turn)
	if len(history) > s.maxTurns {
		history = history[len(history)-s.maxTurns:]
	}

	s.cache.SetDefault(userID, history)
	return nil
}

// Clear drops the user's history.
func (s *ConversationMemory) Clear(_ context.Context, userID string) error {
	s.cache.Delete(userID)
	return nil
}
