package lookup

import (
	"strings"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
)

// Match returns every record whose machine name, problem, or combined
// "problem by machine" form contains the normalized query. Dataset order is
// kept and nothing is deduplicated. An empty normalized query yields
// entity.ErrNoSearch.
func Match(ds *entity.Dataset, query string) ([]entity.Record, error) {
	q := Normalize(query)
	if q == "" {
		return nil, entity.ErrNoSearch
	}
	if err := ds.RequireColumns(entity.ColumnMachineName, entity.ColumnProblem); err != nil {
		return nil, err
	}

	var out []entity.Record
	for _, rec := range ds.Records {
		if RecordMatches(rec, q) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// RecordMatches checks one record against an already normalized query.
func RecordMatches(rec entity.Record, normalizedQuery string) bool {
	if normalizedQuery == "" {
		return false
	}
	machine := rec.Value(entity.ColumnMachineName)
	problem := rec.Value(entity.ColumnProblem)
	for _, field := range [...]string{machine, problem, ProblemBy(problem, machine)} {
		if strings.Contains(Normalize(field), normalizedQuery) {
			return true
		}
	}
	return false
}
