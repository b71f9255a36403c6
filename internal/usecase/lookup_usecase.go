package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
	"github.com/yourusername/breakdown-bot/internal/domain/repository"
	"github.com/yourusername/breakdown-bot/internal/lookup"
	"github.com/yourusername/breakdown-bot/pkg/logger"
)

// OutcomeStatus what a search ended with
type OutcomeStatus int

const (
	// OutcomeInactive the query normalized to nothing, no search ran
	OutcomeInactive OutcomeStatus = iota
	// OutcomeNoMatches search ran and matched no rows
	OutcomeNoMatches
	// OutcomeMatches at least one row matched
	OutcomeMatches
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeNoMatches:
		return "no_matches"
	case OutcomeMatches:
		return "matches"
	default:
		return "inactive"
	}
}

// SearchOutcome result of one search interaction
type SearchOutcome struct {
	Query       string
	Status      OutcomeStatus
	Suggestions []lookup.Suggestion
	Matches     []entity.Record
	Table       string
	Prompt      string
	Explanation string
	// ExplainErr is set when the language model could not answer; the
	// matches are still valid.
	ExplainErr error
}

// Explained reports whether an explanation is available.
func (o SearchOutcome) Explained() bool {
	return o.Explanation != "" && o.ExplainErr == nil
}

// LookupUseCase search side of the tool
type LookupUseCase interface {
	// Suggest returns up to ten suggestions for a query
	Suggest(ctx context.Context, query string) ([]lookup.Suggestion, error)
	// Lookup matches without calling the language model
	Lookup(ctx context.Context, state InteractionState, query string) (InteractionState, SearchOutcome, error)
	// Explain asks the language model about an outcome with matches
	Explain(ctx context.Context, outcome SearchOutcome) SearchOutcome
	// Search is Lookup followed by Explain
	Search(ctx context.Context, state InteractionState, query string) (InteractionState, SearchOutcome, error)
	// PickSuggestion fills the query from a suggestion and searches
	PickSuggestion(ctx context.Context, state InteractionState, s lookup.Suggestion) (InteractionState, SearchOutcome, error)
}

type lookupUseCase struct {
	datasetRepo repository.DatasetRepository
	aiRepo      repository.AIRepository
	timeout     time.Duration
	log         *zap.Logger
}

// NewLookupUseCase builds the search use case. timeout bounds every explanation; zero
// leaves the caller's context as the only bound.
func NewLookupUseCase(datasetRepo repository.DatasetRepository, aiRepo repository.AIRepository, timeout time.Duration) LookupUseCase {
	return &lookupUseCase{
		datasetRepo: datasetRepo,
		aiRepo:      aiRepo,
		timeout:     timeout,
		log:         logger.Named("lookup"),
	}
}

func (u *lookupUseCase) Suggest(ctx context.Context, query string) ([]lookup.Suggestion, error) {
	if !lookup.IsSearchActive(query) {
		return nil, nil
	}
	all, err := lookup.BuildSuggestions(u.datasetRepo.Snapshot())
	if err != nil {
		return nil, err
	}
	return lookup.FilterSuggestions(all, query), nil
}

func (u *lookupUseCase) Lookup(ctx context.Context, state InteractionState, query string) (InteractionState, SearchOutcome, error) {
	next := state.WithQuery(query)
	out := SearchOutcome{Query: next.Query}

	suggestions, err := u.Suggest(ctx, next.Query)
	if err != nil {
		return next, out, err
	}
	out.Suggestions = suggestions

	if !lookup.IsSearchActive(next.Query) {
		out.Status = OutcomeInactive
		return next, out, nil
	}

	matches, err := lookup.Match(u.datasetRepo.Snapshot(), next.Query)
	if err != nil {
		return next, out, err
	}
	if len(matches) == 0 {
		out.Status = OutcomeNoMatches
		u.log.Debug("no matches", zap.String("query", next.Query))
		return next, out, nil
	}

	prompt, err := lookup.BuildPrompt(next.Query, matches)
	if err != nil {
		return next, out, err
	}
	out.Status = OutcomeMatches
	out.Matches = matches
	out.Table = lookup.RenderRecords(matches)
	out.Prompt = prompt
	u.log.Info("search matched",
		zap.String("query", next.Query),
		zap.Int("matches", len(matches)))
	return next, out, nil
}

func (u *lookupUseCase) Explain(ctx context.Context, outcome SearchOutcome) SearchOutcome {
	if outcome.Status != OutcomeMatches || outcome.Prompt == "" {
		return outcome
	}
	if u.aiRepo == nil {
		outcome.ExplainErr = fmt.Errorf("no language model configured: %w", entity.ErrServiceUnavailable)
		return outcome
	}
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	started := time.Now()
	reply, err := u.aiRepo.Explain(ctx, outcome.Prompt)
	if err != nil {
		if !entity.IsExplanationError(err) {
			err = fmt.Errorf("%w: %v", entity.ErrServiceUnavailable, err)
		}
		u.log.Warn("explanation unavailable",
			zap.String("provider", u.aiRepo.Name()),
			zap.Error(err))
		outcome.ExplainErr = err
		return outcome
	}
	u.log.Info("explanation received",
		zap.String("provider", u.aiRepo.Name()),
		zap.Duration("took", time.Since(started)))
	outcome.Explanation = reply
	return outcome
}

func (u *lookupUseCase) Search(ctx context.Context, state InteractionState, query string) (InteractionState, SearchOutcome, error) {
	next, out, err := u.Lookup(ctx, state, query)
	if err != nil {
		return next, out, err
	}
	return next, u.Explain(ctx, out), nil
}

func (u *lookupUseCase) PickSuggestion(ctx context.Context, state InteractionState, s lookup.Suggestion) (InteractionState, SearchOutcome, error) {
	return u.Search(ctx, state, s.Text)
}

// IsSchemaError reports whether err came from a dataset without the
// required columns.
func IsSchemaError(err error) bool {
	var se *entity.SchemaError
	return errors.As(err, &se)
}
