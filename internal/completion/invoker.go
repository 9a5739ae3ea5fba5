package completion

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kakaalameda/telegram-rolebot/internal/models"
)

// Error wraps any failure of the completion API. Callers report it to the
// user as a single generic failure; the cause is kept for logs.
type Error struct {
	Err error
}

func (e *Error) Error() string { return "completion failed: " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

type Config struct {
	APIKey        string
	StandardModel string
	ElevatedModel string
	MaxTokens     int
	Temperature   float64
}

// Invoker calls the OpenAI chat completion API. Model grade is chosen here,
// and only here, from the caller's privilege tier. One attempt per call, no
// retries.
type Invoker struct {
	client *openai.Client
	cfg    Config
	logger *zap.Logger
}

func NewInvoker(cfg Config, logger *zap.Logger) *Invoker {
	return &Invoker{
		client: openai.NewClient(cfg.APIKey),
		cfg:    cfg,
		logger: logger,
	}
}

func (i *Invoker) Complete(ctx context.Context, tier models.PrivilegeTier, turns []models.Turn) (string, error) {
	messages := make([]openai.ChatCompletionMessage, len(turns))
	for n, t := range turns {
		messages[n] = openai.ChatCompletionMessage{Role: t.Role, Content: t.Content}
	}

	model := i.modelFor(tier)
	resp, err := i.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   i.cfg.MaxTokens,
		Temperature: float32(i.cfg.Temperature),
	})
	if err != nil {
		i.logger.Error("Chat completion request failed",
			zap.Error(err),
			zap.String("model", model))
		return "", &Error{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Err: errors.New("response contained no choices")}
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (i *Invoker) modelFor(tier models.PrivilegeTier) string {
	if tier == models.TierElevated {
		return i.cfg.ElevatedModel
	}
	return i.cfg.StandardModel
}
