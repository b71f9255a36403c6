package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/breakdown-bot/internal/domain/constants"
	"github.com/yourusername/breakdown-bot/internal/domain/entity"
	"github.com/yourusername/breakdown-bot/internal/domain/repository"
	"github.com/yourusername/breakdown-bot/pkg/logger"
)

var (
	// ErrUnknownColumn a form value was set for a column the dataset lacks
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNoPendingAdd ConfirmAdd was called without RequestAdd
	ErrNoPendingAdd = errors.New("no row waiting for confirmation")
)

// AppendResult what a confirmed append produced
type AppendResult struct {
	Record    entity.Record
	RowCount  int
	Tail      []entity.Record
	Workbook  []byte
	JournalID string
}

// EntryUseCase manual data entry side of the tool
type EntryUseCase interface {
	// Columns the dataset columns the form asks for, in order
	Columns() []string
	// BeginForm starts a field-by-field form from the first column
	BeginForm(state InteractionState) InteractionState
	// CurrentField column the form is asking for, false when all are filled
	CurrentField(state InteractionState) (string, bool)
	// SetField stores one value and advances a running form
	SetField(state InteractionState, column, value string) (InteractionState, error)
	// RequestAdd marks the form as submitted and awaiting confirmation
	RequestAdd(state InteractionState) (InteractionState, error)
	// ConfirmAdd appends the pending row and resets the form
	ConfirmAdd(ctx context.Context, state InteractionState, actor string) (InteractionState, AppendResult, error)
	// CancelAdd drops the confirmation, keeping the values
	CancelAdd(state InteractionState) InteractionState
	// ClearForm empties every field
	ClearForm(state InteractionState) InteractionState
	// History recent appended rows
	History(ctx context.Context, limit int) ([]entity.JournalEntry, error)
	// Workbook the current dataset as an .xlsx file
	Workbook(ctx context.Context) ([]byte, error)
}

type entryUseCase struct {
	datasetRepo repository.DatasetRepository
	journalRepo repository.JournalRepository
	log         *zap.Logger
}

// NewEntryUseCase builds the entry use case. journalRepo may be nil.
func NewEntryUseCase(datasetRepo repository.DatasetRepository, journalRepo repository.JournalRepository) EntryUseCase {
	return &entryUseCase{
		datasetRepo: datasetRepo,
		journalRepo: journalRepo,
		log:         logger.Named("entry"),
	}
}

func (u *entryUseCase) Columns() []string {
	ds := u.datasetRepo.Snapshot()
	if ds == nil {
		return nil
	}
	return append([]string(nil), ds.Columns...)
}

func (u *entryUseCase) BeginForm(state InteractionState) InteractionState {
	next := state.Clone()
	next.Form = make(map[string]string, len(u.Columns()))
	next.FormField = 0
	next.FormActive = true
	next.ConfirmPending = false
	next.FormCleared = false
	return next.touched()
}

func (u *entryUseCase) CurrentField(state InteractionState) (string, bool) {
	cols := u.Columns()
	if !state.FormActive || state.FormField < 0 || state.FormField >= len(cols) {
		return "", false
	}
	return cols[state.FormField], true
}

func (u *entryUseCase) SetField(state InteractionState, column, value string) (InteractionState, error) {
	cols := u.Columns()
	idx := indexOf(cols, column)
	if idx < 0 {
		return state, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	next := state.Clone()
	next.Form[column] = value
	next.FormCleared = false
	if next.FormActive && idx == next.FormField {
		next.FormField++
	}
	return next.touched(), nil
}

func (u *entryUseCase) RequestAdd(state InteractionState) (InteractionState, error) {
	rec := entity.NewRecord(u.Columns(), state.Form)
	if rec.IsEmpty() {
		return state, entity.ErrEmptyRecord
	}
	next := state.Clone()
	next.ConfirmPending = true
	next.FormActive = false
	return next.touched(), nil
}

func (u *entryUseCase) ConfirmAdd(ctx context.Context, state InteractionState, actor string) (InteractionState, AppendResult, error) {
	var res AppendResult
	if !state.ConfirmPending {
		return state, res, ErrNoPendingAdd
	}
	rec := entity.NewRecord(u.Columns(), state.Form)
	if rec.IsEmpty() {
		return state, res, entity.ErrEmptyRecord
	}

	ds, err := u.datasetRepo.Append(ctx, rec)
	if err != nil {
		return state, res, fmt.Errorf("append record: %w", err)
	}
	res.Record = rec
	res.RowCount = ds.Len()
	res.Tail = ds.Tail(constants.TailRows)

	if wb, err := u.datasetRepo.Export(ctx); err != nil {
		u.log.Warn("export after append failed", zap.Error(err))
	} else {
		res.Workbook = wb
	}

	if u.journalRepo != nil {
		entry := entity.JournalEntry{
			ID:        uuid.New().String(),
			Actor:     strings.TrimSpace(actor),
			Values:    rec.Map(),
			RowCount:  res.RowCount,
			CreatedAt: time.Now(),
		}
		if err := u.journalRepo.Save(ctx, entry); err != nil {
			u.log.Warn("journal save failed", zap.String("id", entry.ID), zap.Error(err))
		} else {
			res.JournalID = entry.ID
		}
	}

	u.log.Info("row appended", zap.String("actor", actor), zap.Int("rows", res.RowCount))

	next := state.Clone()
	next.Form = map[string]string{}
	next.FormField = 0
	next.FormActive = false
	next.ConfirmPending = false
	return next.touched(), res, nil
}

func (u *entryUseCase) CancelAdd(state InteractionState) InteractionState {
	next := state.Clone()
	next.ConfirmPending = false
	return next.touched()
}

func (u *entryUseCase) ClearForm(state InteractionState) InteractionState {
	next := state.Clone()
	next.Form = map[string]string{}
	next.FormField = 0
	next.FormCleared = true
	return next.touched()
}

func (u *entryUseCase) History(ctx context.Context, limit int) ([]entity.JournalEntry, error) {
	if u.journalRepo == nil {
		return nil, nil
	}
	return u.journalRepo.Recent(ctx, limit)
}

func (u *entryUseCase) Workbook(ctx context.Context) ([]byte, error) {
	return u.datasetRepo.Export(ctx)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
