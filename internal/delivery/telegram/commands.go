package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yourusername/breakdown-bot/internal/domain/constants"
)

// handleCommand dispatches slash commands
func (h *BotHandler) handleCommand(ctx context.Context, sess *chatSession, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	switch extractCommand(message) {
	case "start", "help":
		h.sendMessage(chatID, helpMessage)
	case "add":
		sess.state = h.entryUseCase.BeginForm(sess.state)
		h.askNextField(sess, chatID)
	case "skip":
		if !sess.state.FormActive {
			h.sendMessage(chatID, "No form in progress. Use /add to start one.")
			return
		}
		h.handleFormInput(sess, chatID, "")
	case "clear":
		h.handleClearCommand(sess, chatID)
	case "cancel":
		if !sess.state.FormActive && !sess.state.ConfirmPending {
			h.sendMessage(chatID, "Nothing to cancel.")
			return
		}
		sess.state = resetForm(h.entryUseCase, sess.state)
		h.sendMessage(chatID, "Cancelled. The row was not added.")
	case "download":
		h.handleDownloadCommand(ctx, chatID)
	case "columns":
		h.sendMessage(chatID, formatColumns(h.entryUseCase.Columns()))
	case "history":
		h.handleHistoryCommand(ctx, chatID)
	default:
		h.sendMessage(chatID, "Unknown command. /help for the list.")
	}
}

// handleClearCommand empties the form; a running form starts over.
func (h *BotHandler) handleClearCommand(sess *chatSession, chatID int64) {
	active := sess.state.FormActive || sess.state.ConfirmPending
	sess.state = h.entryUseCase.ClearForm(h.entryUseCase.CancelAdd(sess.state))
	h.sendMessage(chatID, "Form cleared.")
	if active {
		sess.state = h.entryUseCase.BeginForm(sess.state)
		h.askNextField(sess, chatID)
	}
}

func (h *BotHandler) handleDownloadCommand(ctx context.Context, chatID int64) {
	wb, err := h.entryUseCase.Workbook(ctx)
	if err != nil {
		h.log.Error("export failed", zap.Error(err))
		h.sendMessage(chatID, "Could not export the dataset.")
		return
	}
	h.sendDocument(chatID, constants.ExportFileName, wb)
}

func (h *BotHandler) handleHistoryCommand(ctx context.Context, chatID int64) {
	entries, err := h.entryUseCase.History(ctx, constants.JournalHistoryLimit)
	if err != nil {
		h.log.Error("history failed", zap.Error(err))
		h.sendMessage(chatID, "Could not load the history.")
		return
	}
	h.sendMessage(chatID, formatHistory(entries))
}

// extractCommand returns the command name even without a Telegram command
// entity.
func extractCommand(msg *tgbotapi.Message) string {
	if msg == nil {
		return ""
	}
	if msg.IsCommand() {
		return strings.ToLower(msg.Command())
	}
	txt := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(txt, "/") {
		return ""
	}
	first := strings.TrimPrefix(strings.Fields(txt)[0], "/")
	parts := strings.SplitN(first, "@", 2)
	return strings.ToLower(parts[0])
}
