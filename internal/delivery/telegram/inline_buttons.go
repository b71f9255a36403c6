package telegram

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yourusername/breakdown-bot/internal/lookup"
)

// suggestionKeyboard one button per suggestion, data "sug|<index>"
func suggestionKeyboard(suggestions []lookup.Suggestion) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(suggestions))
	for i, s := range suggestions {
		data := callbackSuggestion + "|" + strconv.Itoa(i)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(s.Text, data)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Yes", callbackAdd+"|yes"),
		tgbotapi.NewInlineKeyboardButtonData("Cancel", callbackAdd+"|no"),
	))
}

func (h *BotHandler) clearInlineButtons(cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(cq.Message.Chat.ID, cq.Message.MessageID,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	if _, err := h.bot.Request(edit); err != nil {
		h.log.Debug("inline keyboard clear failed", zap.Error(err))
	}
}
