package repository

import (
	"context"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
)

// DatasetRepository append-only store of breakdown records
type DatasetRepository interface {
	// Load reads the dataset from its backing file
	Load(ctx context.Context) (*entity.Dataset, error)

	// Snapshot returns the dataset currently held in memory
	Snapshot() *entity.Dataset

	// Append adds one record and persists the whole dataset
	Append(ctx context.Context, record entity.Record) (*entity.Dataset, error)

	// Export returns the dataset as workbook bytes
	Export(ctx context.Context) ([]byte, error)
}
