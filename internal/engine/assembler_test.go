package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kakaalameda/telegram-rolebot/internal/models"
	"github.com/kakaalameda/telegram-rolebot/internal/storage"
)

func TestAssemble_PersonaFirstUserLast(t *testing.T) {
	store := storage.NewMemoryStorage(4)
	a := NewAssembler(testConfig(), store)

	turns, err := a.Assemble(context.Background(), models.TierStandard, 1,
		models.RoutingOutcome{Kind: models.OutcomeDirectAsk, Prompt: "xin chào"})
	require.NoError(t, err)

	require.Len(t, turns, 2)
	assert.Equal(t, models.Turn{Role: models.RoleSystem, Content: "standard persona"}, turns[0])
	assert.Equal(t, models.Turn{Role: models.RoleUser, Content: "xin chào"}, turns[1])
}

func TestAssemble_ElevatedPersona(t *testing.T) {
	store := storage.NewMemoryStorage(4)
	a := NewAssembler(testConfig(), store)

	turns, err := a.Assemble(context.Background(), models.TierElevated, 1,
		models.RoutingOutcome{Kind: models.OutcomeDirectAsk, Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "elevated persona", turns[0].Content)
}

func TestAssemble_EmptyPrompt(t *testing.T) {
	store := storage.NewMemoryStorage(4)
	a := NewAssembler(testConfig(), store)

	for _, prompt := range []string{"", "   ", "\n\t"} {
		_, err := a.Assemble(context.Background(), models.TierStandard, 1,
			models.RoutingOutcome{Kind: models.OutcomeDirectAsk, Prompt: prompt})
		assert.ErrorIs(t, err, ErrEmptyPrompt)
	}
}

func TestAssemble_ContinuationIncludesMemory(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage(4)
	require.NoError(t, store.AppendTurn(ctx, 1, models.Turn{Role: models.RoleUser, Content: "q"}))
	require.NoError(t, store.AppendTurn(ctx, 1, models.Turn{Role: models.RoleAssistant, Content: "a"}))

	a := NewAssembler(testConfig(), store)
	turns, err := a.Assemble(ctx, models.TierStandard, 1,
		models.RoutingOutcome{Kind: models.OutcomeContinueFromBotReply, Prompt: "tiếp đi"})
	require.NoError(t, err)

	require.Len(t, turns, 4)
	assert.Equal(t, models.RoleSystem, turns[0].Role)
	assert.Equal(t, "q", turns[1].Content)
	assert.Equal(t, "a", turns[2].Content)
	assert.Equal(t, models.Turn{Role: models.RoleUser, Content: "tiếp đi"}, turns[3])
}

func TestAssemble_MemoryScopedByConversation(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage(4)
	require.NoError(t, store.AppendTurn(ctx, 2, models.Turn{Role: models.RoleUser, Content: "other chat"}))

	a := NewAssembler(testConfig(), store)
	turns, err := a.Assemble(ctx, models.TierStandard, 1,
		models.RoutingOutcome{Kind: models.OutcomeContinueFromBotReply, Prompt: "hỏi tiếp"})
	require.NoError(t, err)
	require.Len(t, turns, 2, "another conversation's memory must not leak in")
}

func TestAssemble_TranslationTemplates(t *testing.T) {
	store := storage.NewMemoryStorage(4)
	a := NewAssembler(testConfig(), store)

	vi, err := a.Assemble(context.Background(), models.TierStandard, 1,
		models.RoutingOutcome{Kind: models.OutcomeTranslateToVietnamese, Prompt: "Hello there"})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf(translateViTemplate, "Hello there"), vi[len(vi)-1].Content)

	en, err := a.Assemble(context.Background(), models.TierStandard, 1,
		models.RoutingOutcome{Kind: models.OutcomeTranslateToEnglish, Prompt: "xin chào"})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf(translateEnTemplate, "xin chào"), en[len(en)-1].Content)

	// Translation requests never read memory.
	require.Len(t, vi, 2)
}
