package telegram

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// cleanupSessions drops idle chat sessions until ctx is done.
func (h *BotHandler) cleanupSessions(ctx context.Context) {
	ticker := time.NewTicker(h.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := h.sessions.sweep(time.Now(), h.opts.IdleTimeout)
			if removed > 0 {
				h.log.Info("session cleanup",
					zap.Int("removed", removed),
					zap.Int("active", h.sessions.len()))
			}
		}
	}
}
