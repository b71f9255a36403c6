package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
	"github.com/yourusername/breakdown-bot/internal/domain/repository"
	"github.com/yourusername/breakdown-bot/pkg/logger"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS breakdown_journal (
	id UUID PRIMARY KEY,
	actor TEXT,
	values_json TEXT NOT NULL,
	row_count INTEGER NOT NULL,
	created_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_breakdown_journal_time ON breakdown_journal (created_at DESC);
`

type postgresJournalRepository struct {
	db *sql.DB
}

// NewPostgresJournalRepository connects, creates the table and returns the
// journal.
func NewPostgresJournalRepository(ctx context.Context, dsn string) (repository.JournalRepository, error) {
	db, err := openPostgresWithRetry(ctx, dsn, 5, postgresConnectDelayDefault)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, journalSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create breakdown_journal table: %w", err)
	}
	return &postgresJournalRepository{db: db}, nil
}

func (p *postgresJournalRepository) Save(ctx context.Context, entry entity.JournalEntry) error {
	payload, err := json.Marshal(entry.Values)
	if err != nil {
		return fmt.Errorf("encode journal values: %w", err)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO breakdown_journal (id, actor, values_json, row_count, created_at) VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.Actor, string(payload), entry.RowCount, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

func (p *postgresJournalRepository) Recent(ctx context.Context, limit int) ([]entity.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, COALESCE(actor, ''), values_json, row_count, created_at
		 FROM breakdown_journal ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []entity.JournalEntry
	for rows.Next() {
		var (
			e       entity.JournalEntry
			payload string
		)
		if err := rows.Scan(&e.ID, &e.Actor, &payload, &e.RowCount, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &e.Values); err != nil {
			return nil, fmt.Errorf("decode journal values %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *postgresJournalRepository) Close() error {
	return p.db.Close()
}

// NewJournalRepository picks Postgres when dsn is set and falls back to
// memory when it is empty or unreachable.
func NewJournalRepository(ctx context.Context, dsn string) repository.JournalRepository {
	log := logger.Named("journal")
	if strings.TrimSpace(dsn) == "" {
		return NewMemoryJournalRepository(1000)
	}
	repo, err := NewPostgresJournalRepository(ctx, dsn)
	if err != nil {
		log.Warn("postgres journal unavailable, using memory", zap.Error(err))
		return NewMemoryJournalRepository(1000)
	}
	log.Info("postgres journal ready")
	return repo
}
