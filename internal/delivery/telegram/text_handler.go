package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
	"github.com/yourusername/breakdown-bot/internal/usecase"
)

// searchFunc one of the search entry points of the lookup use case
type searchFunc func(state usecase.InteractionState) (usecase.InteractionState, usecase.SearchOutcome, error)

// handleTextMessage plain text: a form answer while a form runs, a search
// otherwise.
func (h *BotHandler) handleTextMessage(ctx context.Context, sess *chatSession, chatID int64, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)

	if sess.state.FormActive {
		h.handleFormInput(sess, chatID, text)
		return
	}
	if sess.state.ConfirmPending {
		h.sendMessage(chatID, "Please confirm the new row with the buttons above, or /cancel.")
		return
	}

	h.runSearch(ctx, sess, chatID, func(state usecase.InteractionState) (usecase.InteractionState, usecase.SearchOutcome, error) {
		return h.lookupUseCase.Search(ctx, state, text)
	})
}

func (h *BotHandler) runSearch(ctx context.Context, sess *chatSession, chatID int64, search searchFunc) {
	h.sendTyping(chatID)

	next, out, err := search(sess.state)
	if err != nil {
		if usecase.IsSchemaError(err) {
			h.sendMessage(chatID, fmt.Sprintf("Dataset error: %v", err))
			return
		}
		h.log.Error("search failed", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendMessage(chatID, "Search failed. Please try again.")
		return
	}
	sess.state = next
	sess.suggestions = out.Suggestions

	if len(out.Suggestions) > 0 {
		h.sendText(chatID, "Suggestions:", "", suggestionKeyboard(out.Suggestions))
	}

	switch out.Status {
	case usecase.OutcomeInactive:
		h.sendMessage(chatID, "Type a machine name or a problem to search.")
	case usecase.OutcomeNoMatches:
		h.sendMessage(chatID, "No matches found.")
	case usecase.OutcomeMatches:
		h.sendPre(chatID, formatMatchesHeader(len(out.Matches)), out.Table)
		h.sendMessage(chatID, formatExplanation(out))
	}
}

func (h *BotHandler) handleFormInput(sess *chatSession, chatID int64, value string) {
	col, ok := h.entryUseCase.CurrentField(sess.state)
	if !ok {
		h.submitForm(sess, chatID)
		return
	}
	next, err := h.entryUseCase.SetField(sess.state, col, value)
	if err != nil {
		h.sendMessage(chatID, fmt.Sprintf("Could not set %s: %v", col, err))
		return
	}
	sess.state = next
	h.askNextField(sess, chatID)
}

// askNextField prompts for the next column or submits a finished form.
func (h *BotHandler) askNextField(sess *chatSession, chatID int64) {
	col, ok := h.entryUseCase.CurrentField(sess.state)
	if !ok {
		h.submitForm(sess, chatID)
		return
	}
	h.sendMessage(chatID, formatFieldPrompt(col, sess.state.FormField, len(h.entryUseCase.Columns())))
}

func (h *BotHandler) submitForm(sess *chatSession, chatID int64) {
	next, err := h.entryUseCase.RequestAdd(sess.state)
	if errors.Is(err, entity.ErrEmptyRecord) {
		sess.state = resetForm(h.entryUseCase, sess.state)
		h.sendMessage(chatID, "All fields are empty, nothing to add.")
		return
	}
	if err != nil {
		h.sendMessage(chatID, fmt.Sprintf("Could not submit the row: %v", err))
		return
	}
	sess.state = next
	text := formatRowSummary(h.entryUseCase.Columns(), next.Form) +
		"\n\nAre you sure you want to add this row?"
	h.sendText(chatID, text, "", confirmKeyboard())
}

// resetForm leaves form mode with an empty form.
func resetForm(entry usecase.EntryUseCase, state usecase.InteractionState) usecase.InteractionState {
	next := entry.ClearForm(entry.CancelAdd(state))
	next.FormActive = false
	next.FormCleared = false
	return next
}
