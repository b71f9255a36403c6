package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
)

type stubAIRepo struct {
	resp       string
	err        error
	called     bool
	lastPrompt string
}

func (s *stubAIRepo) Explain(ctx context.Context, prompt string) (string, error) {
	s.called = true
	s.lastPrompt = prompt
	return s.resp, s.err
}

func (s *stubAIRepo) Name() string { return "stub" }

type stubDatasetRepo struct {
	ds        *entity.Dataset
	appendErr error
	appended  []entity.Record
}

func (s *stubDatasetRepo) Load(ctx context.Context) (*entity.Dataset, error) { return s.ds, nil }
func (s *stubDatasetRepo) Snapshot() *entity.Dataset                         { return s.ds }
func (s *stubDatasetRepo) Append(ctx context.Context, rec entity.Record) (*entity.Dataset, error) {
	if s.appendErr != nil {
		return nil, s.appendErr
	}
	s.appended = append(s.appended, rec)
	s.ds = s.ds.Append(rec)
	return s.ds, nil
}
func (s *stubDatasetRepo) Export(ctx context.Context) ([]byte, error) {
	return []byte(fmt.Sprintf("xlsx:%d", s.ds.Len())), nil
}

type stubJournalRepo struct {
	saved []entity.JournalEntry
	err   error
}

func (s *stubJournalRepo) Save(ctx context.Context, e entity.JournalEntry) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, e)
	return nil
}
func (s *stubJournalRepo) Recent(ctx context.Context, limit int) ([]entity.JournalEntry, error) {
	return s.saved, nil
}
func (s *stubJournalRepo) Close() error { return nil }

var errBoom = errors.New("boom")

func pressDataset() *entity.Dataset {
	return entity.NewDataset([]string{"Machine Name", "Problem"}, [][]string{
		{"Press-1", "Overheat"},
		{"Press-1", "Jam"},
		{"Lathe-2", "Overheat"},
	})
}
