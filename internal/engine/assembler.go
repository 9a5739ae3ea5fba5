package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/kakaalameda/telegram-rolebot/internal/models"
	"github.com/kakaalameda/telegram-rolebot/internal/storage"
)

const (
	translateViTemplate = "Dịch đoạn văn sau sang tiếng Việt, chỉ trả về bản dịch:\n\n%s"
	translateEnTemplate = "Dịch đoạn văn sau sang tiếng Anh, chỉ trả về bản dịch:\n\n%s"
)

// Assembler builds the ordered message list for a completion call: persona
// first, stored turns only for bot-reply continuations, the new user turn
// last.
type Assembler struct {
	personas map[models.PrivilegeTier]string
	store    storage.Store
}

func NewAssembler(cfg Config, store storage.Store) *Assembler {
	return &Assembler{
		personas: map[models.PrivilegeTier]string{
			models.TierStandard: cfg.StandardPersona,
			models.TierElevated: cfg.ElevatedPersona,
		},
		store: store,
	}
}

func (a *Assembler) Assemble(ctx context.Context, tier models.PrivilegeTier, conversation models.ConversationID, outcome models.RoutingOutcome) ([]models.Turn, error) {
	if strings.TrimSpace(outcome.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	turns := []models.Turn{{Role: models.RoleSystem, Content: a.personas[tier]}}

	if outcome.Kind == models.OutcomeContinueFromBotReply {
		recent, err := a.store.RecentTurns(ctx, conversation)
		if err != nil {
			return nil, fmt.Errorf("reading conversation memory: %w", err)
		}
		turns = append(turns, recent...)
	}

	content := outcome.Prompt
	switch outcome.Kind {
	case models.OutcomeTranslateToVietnamese:
		content = fmt.Sprintf(translateViTemplate, outcome.Prompt)
	case models.OutcomeTranslateToEnglish:
		content = fmt.Sprintf(translateEnTemplate, outcome.Prompt)
	}

	return append(turns, models.Turn{Role: models.RoleUser, Content: content}), nil
}
