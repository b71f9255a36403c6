package telegram

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yourusername/breakdown-bot/internal/domain/constants"
	"github.com/yourusername/breakdown-bot/internal/usecase"
	"github.com/yourusername/breakdown-bot/pkg/logger"
)

// botAPI the part of *tgbotapi.BotAPI the handler uses
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Options tuning knobs for the bot
type Options struct {
	WorkerCount     int
	IdleTimeout     time.Duration
	CleanupInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.WorkerCount <= 0 {
		o.WorkerCount = constants.DefaultWorkerCount
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = constants.SessionIdleTimeout
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = constants.SessionCleanupInterval
	}
	return o
}

// BotHandler Telegram bot handler
type BotHandler struct {
	bot           botAPI
	lookupUseCase usecase.LookupUseCase
	entryUseCase  usecase.EntryUseCase
	sessions      *sessionStore
	workerPool    *workerPool
	opts          Options
	log           *zap.Logger

	botStartedAt time.Time
}

// NewBotHandler connects to Telegram and builds the handler.
func NewBotHandler(
	token string,
	lookupUseCase usecase.LookupUseCase,
	entryUseCase usecase.EntryUseCase,
	opts Options,
) (*BotHandler, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	h := newBotHandler(bot, lookupUseCase, entryUseCase, opts)
	h.log.Info("authorized", zap.String("username", bot.Self.UserName))
	return h, nil
}

func newBotHandler(bot botAPI, lookupUseCase usecase.LookupUseCase, entryUseCase usecase.EntryUseCase, opts Options) *BotHandler {
	opts = opts.withDefaults()
	h := &BotHandler{
		bot:           bot,
		lookupUseCase: lookupUseCase,
		entryUseCase:  entryUseCase,
		sessions:      newSessionStore(),
		opts:          opts,
		log:           logger.Named("telegram"),
		botStartedAt:  time.Now(),
	}
	h.workerPool = newWorkerPool(h, opts.WorkerCount)
	return h
}
