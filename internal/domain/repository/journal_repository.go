package repository

import (
	"context"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
)

// JournalRepository audit trail of appended records
type JournalRepository interface {
	Save(ctx context.Context, entry entity.JournalEntry) error
	Recent(ctx context.Context, limit int) ([]entity.JournalEntry, error)
	Close() error
}
