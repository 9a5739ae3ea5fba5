package storage

import (
	"context"

	"github.com/kakaalameda/telegram-rolebot/internal/models"
)

// Store keeps the bounded per-conversation turn history used to build
// continuation context. Implementations evict oldest-first once a
// conversation holds cap turns.
type Store interface {
	// AppendTurn adds one turn to the conversation's history, evicting the
	// oldest turns if the history would exceed the cap.
	AppendTurn(ctx context.Context, conversation models.ConversationID, turn models.Turn) error

	// RecentTurns returns up to cap-1 most recent turns, oldest first. The
	// missing slot leaves room for the system prompt and the new user turn
	// when a request is assembled.
	RecentTurns(ctx context.Context, conversation models.ConversationID) ([]models.Turn, error)

	Close() error
}
