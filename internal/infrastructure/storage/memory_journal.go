package storage

import (
	"context"
	"sync"
	"time"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
	"github.com/yourusername/breakdown-bot/internal/domain/repository"
)

type memoryJournalRepository struct {
	mu      sync.RWMutex
	entries []entity.JournalEntry
	maxSize int
}

// NewMemoryJournalRepository in-memory journal keeping at most maxSize
// entries (0 keeps everything).
func NewMemoryJournalRepository(maxSize int) repository.JournalRepository {
	return &memoryJournalRepository{
		entries: make([]entity.JournalEntry, 0, 64),
		maxSize: maxSize,
	}
}

// Save appends an entry
func (m *memoryJournalRepository) Save(ctx context.Context, entry entity.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.Values = copyValues(entry.Values)
	m.entries = append(m.entries, entry)

	if m.maxSize > 0 && len(m.entries) > m.maxSize {
		m.entries = m.entries[len(m.entries)-m.maxSize:]
	}
	return nil
}

// Recent newest entries first
func (m *memoryJournalRepository) Recent(ctx context.Context, limit int) ([]entity.JournalEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.entries)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]entity.JournalEntry, 0, n)
	for i := len(m.entries) - 1; i >= 0 && len(out) < n; i-- {
		e := m.entries[i]
		e.Values = copyValues(e.Values)
		out = append(out, e)
	}
	return out, nil
}

func (m *memoryJournalRepository) Close() error { return nil }

// IsMemory reports whether repo lives only in this process.
func IsMemory(repo repository.JournalRepository) bool {
	_, ok := repo.(*memoryJournalRepository)
	return ok
}

func copyValues(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
