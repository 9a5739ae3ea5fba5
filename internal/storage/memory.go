package storage

import (
	"context"
	"sync"

	"github.com/kakaalameda/telegram-rolebot/internal/models"
)

// MemoryStorage keeps conversation turns in process memory. Histories are
// created lazily on first append and live for the process lifetime.
type MemoryStorage struct {
	mu    sync.RWMutex
	cap   int
	turns map[models.ConversationID][]models.Turn
}

func NewMemoryStorage(cap int) *MemoryStorage {
	if cap < 2 {
		cap = 2
	}
	return &MemoryStorage{
		cap:   cap,
		turns: make(map[models.ConversationID][]models.Turn),
	}
}

func (s *MemoryStorage) AppendTurn(ctx context.Context, conversation models.ConversationID, turn models.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.turns[conversation], turn)
	for len(history) > s.cap {
		history = history[1:]
	}
	s.turns[conversation] = history
	return nil
}

func (s *MemoryStorage) RecentTurns(ctx context.Context, conversation models.ConversationID) ([]models.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.turns[conversation]
	limit := s.cap - 1
	if len(history) > limit {
		history = history[len(history)-limit:]
	}

	out := make([]models.Turn, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
