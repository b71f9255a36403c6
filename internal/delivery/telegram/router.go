package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Start polls Telegram until ctx is done.
func (h *BotHandler) Start(ctx context.Context) error {
	h.workerPool.start(ctx)
	go h.cleanupSessions(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := h.bot.GetUpdatesChan(u)

	defer h.workerPool.shutdown()
	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			chat := update.FromChat()
			if chat == nil {
				continue
			}
			h.workerPool.submit(&updateRequest{ctx: ctx, chatID: chat.ID, update: update})
		}
	}
}

// processUpdate runs on a worker.
func (h *BotHandler) processUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}
	chatID := message.Chat.ID

	sess := h.sessions.acquire(chatID)
	defer sess.release()

	if message.IsCommand() || strings.HasPrefix(strings.TrimSpace(message.Text), "/") {
		h.log.Debug("command",
			zap.Int64("chat_id", chatID),
			zap.String("command", extractCommand(message)))
		h.handleCommand(ctx, sess, message)
		return
	}
	if strings.TrimSpace(message.Text) == "" {
		return
	}
	h.handleTextMessage(ctx, sess, chatID, message)
}

func actorName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.UserName != "" {
		return u.UserName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
