package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yourusername/breakdown-bot/internal/domain/constants"
	"github.com/yourusername/breakdown-bot/internal/lookup"
	"github.com/yourusername/breakdown-bot/internal/usecase"
)

const (
	callbackSuggestion = "sug"
	callbackAdd        = "add"
)

// parseCallback splits "kind|arg" callback data.
func parseCallback(data string) (kind, arg string) {
	kind, arg, _ = strings.Cut(data, "|")
	return kind, arg
}

func (h *BotHandler) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	if _, err := h.bot.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		h.log.Debug("callback answer failed", zap.Error(err))
	}

	sess := h.sessions.acquire(chatID)
	defer sess.release()

	kind, arg := parseCallback(cq.Data)
	switch kind {
	case callbackSuggestion:
		idx, err := strconv.Atoi(arg)
		if err != nil || idx < 0 || idx >= len(sess.suggestions) {
			h.sendMessage(chatID, "That suggestion has expired. Please search again.")
			return
		}
		picked := sess.suggestions[idx]
		h.runSearch(ctx, sess, chatID, func(state usecase.InteractionState) (usecase.InteractionState, usecase.SearchOutcome, error) {
			return h.lookupUseCase.PickSuggestion(ctx, state, picked)
		})
	case callbackAdd:
		h.clearInlineButtons(cq)
		if arg == "yes" {
			h.confirmAdd(ctx, sess, chatID, actorName(cq.From))
			return
		}
		sess.state = h.entryUseCase.CancelAdd(sess.state)
		h.sendMessage(chatID, "Cancelled. The row was not added. /add to start again.")
	default:
		h.log.Warn("unknown callback", zap.String("data", cq.Data))
	}
}

func (h *BotHandler) confirmAdd(ctx context.Context, sess *chatSession, chatID int64, actor string) {
	next, res, err := h.entryUseCase.ConfirmAdd(ctx, sess.state, actor)
	if errors.Is(err, usecase.ErrNoPendingAdd) {
		h.sendMessage(chatID, "Nothing to confirm. Use /add to enter a row.")
		return
	}
	if err != nil {
		h.log.Error("append failed", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendMessage(chatID, fmt.Sprintf("Failed to add the row: %v", err))
		return
	}
	sess.state = next

	h.sendMessage(chatID, "Row added successfully!")
	h.sendPre(chatID, fmt.Sprintf("Last %d rows (%d total):", len(res.Tail), res.RowCount), lookup.RenderRecords(res.Tail))
	if len(res.Workbook) > 0 {
		h.sendDocument(chatID, constants.ExportFileName, res.Workbook)
	}
}
