package lookup

import (
	"strings"

	"github.com/yourusername/breakdown-bot/internal/domain/constants"
	"github.com/yourusername/breakdown-bot/internal/domain/entity"
)

// SuggestionKind tells which group a suggestion came from.
type SuggestionKind int

const (
	SuggestionMachine SuggestionKind = iota
	SuggestionProblem
)

// Suggestion a display candidate offered before a search is run.
type Suggestion struct {
	Text string
	Kind SuggestionKind
}

// ProblemBy composes the "{Problem} by {Machine Name}" form.
func ProblemBy(problem, machine string) string {
	return problem + " by " + machine
}

// BuildSuggestions lists distinct machine names, then distinct
// "problem by machine" pairs, both in first-seen dataset order.
func BuildSuggestions(ds *entity.Dataset) ([]Suggestion, error) {
	if err := ds.RequireColumns(entity.ColumnMachineName, entity.ColumnProblem); err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, ds.Len())
	seenMachine := make(map[string]struct{})
	for _, rec := range ds.Records {
		machine, ok := rec.Get(entity.ColumnMachineName)
		if !ok {
			continue
		}
		if _, dup := seenMachine[machine]; dup {
			continue
		}
		seenMachine[machine] = struct{}{}
		out = append(out, Suggestion{Text: machine, Kind: SuggestionMachine})
	}

	type pair struct{ problem, machine string }
	seenPair := make(map[pair]struct{})
	for _, rec := range ds.Records {
		machine, okM := rec.Get(entity.ColumnMachineName)
		problem, okP := rec.Get(entity.ColumnProblem)
		if !okM || !okP {
			continue
		}
		key := pair{problem: problem, machine: machine}
		if _, dup := seenPair[key]; dup {
			continue
		}
		seenPair[key] = struct{}{}
		out = append(out, Suggestion{Text: ProblemBy(problem, machine), Kind: SuggestionProblem})
	}
	return out, nil
}

// FilterSuggestions keeps suggestions whose normalized text contains the
// normalized query, capped at constants.MaxSuggestions, input order kept.
func FilterSuggestions(suggestions []Suggestion, query string) []Suggestion {
	q := Normalize(query)
	if q == "" {
		return nil
	}
	out := make([]Suggestion, 0, constants.MaxSuggestions)
	for _, s := range suggestions {
		if len(out) == constants.MaxSuggestions {
			break
		}
		if strings.Contains(Normalize(s.Text), q) {
			out = append(out, s)
		}
	}
	return out
}
