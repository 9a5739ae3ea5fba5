package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kakaalameda/telegram-rolebot/internal/engine"
	"github.com/kakaalameda/telegram-rolebot/internal/models"
)

// Bot is the Telegram collaborator around the routing engine: it polls
// updates, extracts inbound events (sender, chat, reply linkage) and sends
// the engine's replies back to the originating chat.
type Bot struct {
	api    *tgbotapi.BotAPI
	engine *engine.Engine
	logger *zap.Logger
}

func New(api *tgbotapi.BotAPI, eng *engine.Engine, logger *zap.Logger) *Bot {
	return &Bot{
		api:    api,
		engine: eng,
		logger: logger,
	}
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("Bot started", zap.String("username", b.api.Self.UserName))

	for update := range updates {
		if update.Message == nil {
			continue
		}

		go b.handleMessage(update.Message)
	}

	return nil
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()
	logger := b.logger.With(zap.String("event_id", uuid.New().String()))

	if message.IsCommand() {
		switch message.Command() {
		case "start", "help":
			b.handleHelp(message)
			return
		case "getid":
			b.handleGetID(message)
			return
		case "addadmin":
			b.handleAddAdmin(logger, message)
			return
		}
		// Anything else, /ask included, is classified from the raw text.
	}

	ev := b.buildEvent(message)
	reply, send := b.engine.Route(ctx, ev)
	if !send {
		return
	}

	b.sendReply(message.Chat.ID, message.MessageID, reply)
}

// buildEvent extracts the routing view of a Telegram message.
func (b *Bot) buildEvent(message *tgbotapi.Message) models.InboundEvent {
	ev := models.InboundEvent{
		Conversation: models.ConversationID(message.Chat.ID),
		Sender:       models.SenderID(message.From.ID),
		Text:         messageText(message),
	}

	if r := message.ReplyToMessage; r != nil && r.From != nil {
		ev.RepliedTo = &models.ReplyRef{
			Author:  models.SenderID(r.From.ID),
			Text:    messageText(r),
			FromBot: r.From.ID == b.api.Self.ID,
		}
	}

	return ev
}

func messageText(message *tgbotapi.Message) string {
	if message.Caption != "" {
		return message.Caption
	}
	return message.Text
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Xin chào! Tôi là chatbot sử dụng OpenAI API.
Cách dùng:
• /ask <câu hỏi> – Đặt câu hỏi cho tôi.
• keng <câu hỏi> – Gọi tôi bằng từ khóa.
• Reply tin nhắn của tôi để hỏi tiếp.
• Reply một tin nhắn và gõ "keng dịch" để dịch sang tiếng Việt.
• /getid – Lấy ID Telegram của bạn (hoặc nhóm hiện tại).
• /addadmin <user_id> – (Chỉ admin) Thêm một admin mới bằng ID.`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleGetID(message *tgbotapi.Message) {
	text := fmt.Sprintf("User ID của bạn: `%d`\nChat ID: `%d`", message.From.ID, message.Chat.ID)
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send id message",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

func (b *Bot) handleAddAdmin(logger *zap.Logger, message *tgbotapi.Message) {
	var explicit models.SenderID
	if args := strings.TrimSpace(message.CommandArguments()); args != "" {
		id, err := strconv.ParseInt(strings.Fields(args)[0], 10, 64)
		if err != nil {
			b.sendMessage(message.Chat.ID, "❗ Vui lòng cung cấp ID người dùng hợp lệ (số).")
			return
		}
		explicit = models.SenderID(id)
	}

	ev := b.buildEvent(message)
	target, result, err := b.engine.Elevate(ev, explicit)
	switch {
	case errors.Is(err, engine.ErrUnauthorized):
		return
	case errors.Is(err, engine.ErrPermissionDenied):
		b.sendMessage(message.Chat.ID, "🚫 Bạn không có quyền sử dụng lệnh này.")
	case errors.Is(err, engine.ErrNoTarget):
		b.sendMessage(message.Chat.ID, "Cách dùng: /addadmin <ID người dùng>\n(Bạn cũng có thể reply tin nhắn của người cần thêm quyền admin.)")
	case errors.Is(err, engine.ErrBotTarget):
		b.sendMessage(message.Chat.ID, "❌ Không thể thêm bot làm admin.")
	case err != nil:
		logger.Error("Elevation failed", zap.Error(err))
		b.sendMessage(message.Chat.ID, "❌ Không thể thêm admin. Vui lòng thử lại sau.")
	case result == engine.ElevationAlreadyAdmin:
		b.sendMessage(message.Chat.ID, fmt.Sprintf("ℹ️ Người dùng %d đã có quyền admin.", target))
	default:
		logger.Info("Admin added",
			zap.Int64("target_id", int64(target)),
			zap.Int64("requester_id", message.From.ID))
		b.sendMessage(message.Chat.ID, fmt.Sprintf("✅ Đã thêm người dùng %d làm admin.", target))
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendReply(chatID int64, replyToID int, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyToID
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send reply",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
