package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/breakdown-bot/internal/delivery/telegram"
	"github.com/yourusername/breakdown-bot/internal/domain/constants"
	"github.com/yourusername/breakdown-bot/pkg/logger"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the dataset watcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if err := cfg.RequireTelegram(); err != nil {
				return err
			}
			log := logger.Named("serve")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer a.Close()

			var bot *telegram.BotHandler
			if cfg.TelegramToken == "" {
				log.Warn("TELEGRAM_BOT_TOKEN is empty; the bot stays offline until it is set")
			} else {
				bot, err = telegram.NewBotHandler(cfg.TelegramToken, a.lookup, a.entry, telegram.Options{
					WorkerCount: cfg.WorkerCount,
				})
				if err != nil {
					return err
				}
			}

			g, gctx := errgroup.WithContext(ctx)
			if cfg.WatchDataset {
				g.Go(func() error {
					return a.dataset.Watch(gctx, constants.WatchDebounce)
				})
			}
			if bot != nil {
				g.Go(func() error {
					if err := bot.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
						return err
					}
					return nil
				})
			}

			log.Info("running, press Ctrl+C to stop")
			g.Go(func() error {
				<-gctx.Done()
				return nil
			})
			err = g.Wait()
			log.Info("stopped")
			return err
		},
	}
}
