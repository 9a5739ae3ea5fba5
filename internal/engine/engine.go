package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kakaalameda/telegram-rolebot/internal/models"
	"github.com/kakaalameda/telegram-rolebot/internal/storage"
)

const (
	msgEmptyPrompt      = "Vui lòng nhập câu hỏi sau %s."
	msgCompletionFailed = "❌ Đã xảy ra lỗi khi gọi OpenAI. Vui lòng thử lại sau."
)

// Completer turns an assembled message list into generated text for the
// given privilege tier.
type Completer interface {
	Complete(ctx context.Context, tier models.PrivilegeTier, turns []models.Turn) (string, error)
}

// Config holds the routing settings the engine reads. A zero RestrictedChat
// means every conversation is served.
type Config struct {
	RestrictedChat     models.ConversationID
	BotID              models.SenderID
	CommandMarker      string
	WakeKeyword        string
	TranslateViKeyword string
	TranslateEnKeyword string
	StandardPersona    string
	ElevatedPersona    string
}

// Engine is the conversation routing core. It owns the admin set and the
// per-conversation locks; memory and completion are injected.
type Engine struct {
	cfg        Config
	admins     *AdminSet
	classifier *Classifier
	assembler  *Assembler
	store      storage.Store
	completer  Completer
	logger     *zap.Logger

	lockMu sync.Mutex
	locks  map[models.ConversationID]*sync.Mutex
}

func New(cfg Config, admins *AdminSet, store storage.Store, completer Completer, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:        cfg,
		admins:     admins,
		classifier: NewClassifier(cfg),
		assembler:  NewAssembler(cfg, store),
		store:      store,
		completer:  completer,
		logger:     logger,
		locks:      make(map[models.ConversationID]*sync.Mutex),
	}
}

// Admins exposes the engine-owned admin set for privilege lookups.
func (e *Engine) Admins() *AdminSet { return e.admins }

// Authorized reports whether an origin may use the bot. With a restricted
// chat configured, only that chat and admins (anywhere) pass.
func (e *Engine) Authorized(conversation models.ConversationID, sender models.SenderID) bool {
	if e.cfg.RestrictedChat == 0 {
		return true
	}
	return conversation == e.cfg.RestrictedChat || e.admins.Contains(sender)
}

// Route processes one inbound event end to end and returns the reply text.
// send is false when the event is ignored or its origin is unauthorized;
// unauthorized origins get no reply at all, not even an error.
func (e *Engine) Route(ctx context.Context, ev models.InboundEvent) (reply string, send bool) {
	if !e.Authorized(ev.Conversation, ev.Sender) {
		e.logger.Debug("Dropping event from unauthorized origin",
			zap.Int64("chat_id", int64(ev.Conversation)),
			zap.Int64("sender_id", int64(ev.Sender)))
		return "", false
	}

	outcome := e.classifier.Classify(ev)
	if outcome.Kind == models.OutcomeIgnore {
		return "", false
	}

	tier := e.admins.Tier(ev.Sender)
	e.logger.Info("Routing event",
		zap.String("outcome", outcome.Kind.String()),
		zap.String("tier", tier.String()),
		zap.Int64("chat_id", int64(ev.Conversation)),
		zap.Int64("sender_id", int64(ev.Sender)))

	// One exchange at a time per conversation, so the read-then-append of
	// memory cannot interleave turns from concurrent exchanges.
	unlock := e.lockConversation(ev.Conversation)
	defer unlock()

	turns, err := e.assembler.Assemble(ctx, tier, ev.Conversation, outcome)
	if errors.Is(err, ErrEmptyPrompt) {
		return fmt.Sprintf(msgEmptyPrompt, e.cfg.CommandMarker), true
	}
	if err != nil {
		e.logger.Error("Failed to assemble prompt",
			zap.Error(err),
			zap.Int64("chat_id", int64(ev.Conversation)))
		return msgCompletionFailed, true
	}

	answer, err := e.completer.Complete(ctx, tier, turns)
	if err != nil {
		e.logger.Error("Completion call failed",
			zap.Error(err),
			zap.Int64("chat_id", int64(ev.Conversation)),
			zap.String("outcome", outcome.Kind.String()))
		return msgCompletionFailed, true
	}

	// Record the exchange even for memory-less outcomes so a later reply to
	// this answer can continue the thread.
	userTurn := turns[len(turns)-1]
	if err := e.store.AppendTurn(ctx, ev.Conversation, userTurn); err != nil {
		e.logger.Error("Failed to store user turn",
			zap.Error(err),
			zap.Int64("chat_id", int64(ev.Conversation)))
	}
	assistantTurn := models.Turn{Role: models.RoleAssistant, Content: answer}
	if err := e.store.AppendTurn(ctx, ev.Conversation, assistantTurn); err != nil {
		e.logger.Error("Failed to store assistant turn",
			zap.Error(err),
			zap.Int64("chat_id", int64(ev.Conversation)))
	}

	return answer, true
}

// ElevationResult distinguishes a fresh elevation from a repeated one.
type ElevationResult int

const (
	ElevationAdded ElevationResult = iota
	ElevationAlreadyAdmin
)

// Elevate grants the target admin privileges. The explicit target wins over
// the replied-to author when both are present; explicit == 0 means none was
// given. Re-elevating an existing admin succeeds without growing the set.
func (e *Engine) Elevate(ev models.InboundEvent, explicit models.SenderID) (models.SenderID, ElevationResult, error) {
	if !e.Authorized(ev.Conversation, ev.Sender) {
		return 0, 0, ErrUnauthorized
	}
	if e.admins.Tier(ev.Sender) != models.TierElevated {
		return 0, 0, ErrPermissionDenied
	}

	target := explicit
	if target == 0 {
		if ev.RepliedTo == nil {
			return 0, 0, ErrNoTarget
		}
		if ev.RepliedTo.FromBot {
			return 0, 0, ErrBotTarget
		}
		target = ev.RepliedTo.Author
	}
	if target == e.cfg.BotID {
		return 0, 0, ErrBotTarget
	}

	if !e.admins.Add(target) {
		return target, ElevationAlreadyAdmin, nil
	}
	e.logger.Info("Elevated sender to admin",
		zap.Int64("target_id", int64(target)),
		zap.Int64("requester_id", int64(ev.Sender)))
	return target, ElevationAdded, nil
}

func (e *Engine) lockConversation(id models.ConversationID) func() {
	e.lockMu.Lock()
	mu, ok := e.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[id] = mu
	}
	e.lockMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
