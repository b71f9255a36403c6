package telegram

import (
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yourusername/breakdown-bot/internal/domain/constants"
)

// sendText sends one message with an optional parse mode and reply markup.
func (h *BotHandler) sendText(chatID int64, text, parseMode string, replyMarkup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	if _, err := h.bot.Send(msg); err != nil {
		h.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// sendMessage plain text, split to fit the Telegram limit
func (h *BotHandler) sendMessage(chatID int64, text string) {
	if strings.TrimSpace(text) == "" {
		h.log.Warn("empty message skipped", zap.Int64("chat_id", chatID))
		return
	}
	for _, chunk := range splitIntoChunks(text, constants.MaxMessageLength) {
		h.sendText(chatID, chunk, "", nil)
	}
}

// sendPre sends a title followed by monospaced text.
func (h *BotHandler) sendPre(chatID int64, title, body string) {
	blocks := preBlocks(body, constants.MaxMessageLength-utf8.RuneCountInString(title)-1)
	if len(blocks) == 0 {
		h.sendMessage(chatID, title)
		return
	}
	for i, block := range blocks {
		if i == 0 && title != "" {
			block = tgbotapi.EscapeText(tgbotapi.ModeHTML, title) + "\n" + block
		}
		h.sendText(chatID, block, tgbotapi.ModeHTML, nil)
	}
}

func (h *BotHandler) sendDocument(chatID int64, name string, data []byte) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := h.bot.Send(doc); err != nil {
		h.log.Warn("document send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *BotHandler) sendTyping(chatID int64) {
	if _, err := h.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		h.log.Debug("typing action failed", zap.Error(err))
	}
}

// splitIntoChunks splits s into pieces of at most limit runes.
func splitIntoChunks(s string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return []string{s}
	}
	var chunks []string
	var current strings.Builder
	n := 0
	for _, r := range s {
		current.WriteRune(r)
		n++
		if n == limit {
			chunks = append(chunks, current.String())
			current.Reset()
			n = 0
		}
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

const (
	preOpen  = "<pre>"
	preClose = "</pre>"
)

// preBlocks HTML-escapes text and wraps it in <pre> blocks of at most limit
// runes each, breaking on line boundaries where possible.
func preBlocks(text string, limit int) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	budget := limit - len(preOpen) - len(preClose)
	if budget < 1 {
		budget = 1
	}

	var blocks []string
	var cur strings.Builder
	n := 0
	flush := func() {
		if n > 0 {
			blocks = append(blocks, preOpen+cur.String()+preClose)
			cur.Reset()
			n = 0
		}
	}
	for _, line := range strings.Split(text, "\n") {
		escaped := tgbotapi.EscapeText(tgbotapi.ModeHTML, line)
		size := utf8.RuneCountInString(escaped)
		sep := 0
		if n > 0 {
			sep = 1
		}
		if n+sep+size > budget {
			flush()
			sep = 0
		}
		if size > budget {
			for _, part := range splitEscaped(line, budget) {
				blocks = append(blocks, preOpen+part+preClose)
			}
			continue
		}
		if sep == 1 {
			cur.WriteByte('\n')
		}
		cur.WriteString(escaped)
		n += sep + size
	}
	flush()
	return blocks
}

// splitEscaped escapes line and cuts it into parts of at most limit runes
// without breaking an HTML entity.
func splitEscaped(line string, limit int) []string {
	var parts []string
	var cur strings.Builder
	n := 0
	for _, r := range line {
		esc := tgbotapi.EscapeText(tgbotapi.ModeHTML, string(r))
		size := utf8.RuneCountInString(esc)
		if n > 0 && n+size > limit {
			parts = append(parts, cur.String())
			cur.Reset()
			n = 0
		}
		cur.WriteString(esc)
		n += size
	}
	if n > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}
