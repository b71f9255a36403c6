package lookup

import (
	"fmt"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
)

// BuildPrompt formats the language model request for a non-empty match set.
// A single match asks for an explanation of that row; several matches ask for
// causes and suggestions ordered by how often each problem occurs.
func BuildPrompt(query string, matches []entity.Record) (string, error) {
	switch len(matches) {
	case 0:
		return "", entity.ErrNoMatches
	case 1:
		return fmt.Sprintf(
			"Here is the data for query: '%s'. Explain the details and any insights.\n\n%s",
			query, RenderRecords(matches),
		), nil
	default:
		summary := RenderProblemCounts(CountProblems(matches))
		return fmt.Sprintf(
			"The query '%s' matches %d rows. Analyze the problems, starting with the most common one. "+
				"Provide possible causes, suggestions, and order them by frequency.\n\n"+
				"Problem summary:\n%s\n\nDetails of matches:\n%s",
			query, len(matches), summary, RenderRecords(matches),
		), nil
	}
}
