package telegram

import (
	"fmt"
	"strings"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
	"github.com/yourusername/breakdown-bot/internal/usecase"
)

const helpMessage = `Send a machine name, a problem, or "problem by machine" to search the breakdown log.

Commands:
/add - add a new row, one column at a time
/skip - leave the current field empty
/clear - empty the form
/cancel - abandon the form
/download - get the dataset as updated_data.xlsx
/columns - list dataset columns
/history - recently added rows
/help - this message`

func formatMatchesHeader(n int) string {
	return fmt.Sprintf("Matching Results (%d found)", n)
}

func formatExplanation(out usecase.SearchOutcome) string {
	if out.Explained() {
		return "Explanation:\n" + out.Explanation
	}
	if out.ExplainErr != nil {
		return fmt.Sprintf("Explanation unavailable: %v", out.ExplainErr)
	}
	return "Explanation unavailable."
}

func formatFieldPrompt(column string, index, total int) string {
	return fmt.Sprintf("(%d/%d) Enter %s, or /skip to leave it empty.", index+1, total, column)
}

func formatRowSummary(columns []string, form map[string]string) string {
	var b strings.Builder
	b.WriteString("New row:")
	for _, col := range columns {
		v := form[col]
		if strings.TrimSpace(v) == "" {
			v = "(empty)"
		}
		fmt.Fprintf(&b, "\n%s: %s", col, v)
	}
	return b.String()
}

func formatColumns(columns []string) string {
	if len(columns) == 0 {
		return "The dataset has no columns."
	}
	var b strings.Builder
	b.WriteString("Columns:")
	for i, col := range columns {
		fmt.Fprintf(&b, "\n%d. %s", i+1, col)
	}
	return b.String()
}

func formatHistory(entries []entity.JournalEntry) string {
	if len(entries) == 0 {
		return "No rows added yet."
	}
	var b strings.Builder
	b.WriteString("Recently added rows:")
	for _, e := range entries {
		who := e.Actor
		if who == "" {
			who = "unknown"
		}
		fmt.Fprintf(&b, "\n\n%s by %s (row %d)", e.CreatedAt.Format("2006-01-02 15:04"), who, e.RowCount)
		for _, k := range sortedKeys(e.Values) {
			if e.Values[k] == "" {
				continue
			}
			fmt.Fprintf(&b, "\n  %s: %s", k, e.Values[k])
		}
	}
	return b.String()
}
