package lookup

import (
	"bytes"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
)

// blankProblem labels matched rows that have no problem text.
const blankProblem = "(blank)"

// ProblemCount one line of the problem frequency table.
type ProblemCount struct {
	Problem string
	Count   int
}

// RenderTable formats a header and rows as aligned plain text without an
// index column.
func RenderTable(columns []string, rows [][]string) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	writeTabRow(w, columns)
	for _, row := range rows {
		writeTabRow(w, row)
	}
	_ = w.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

func writeTabRow(w *tabwriter.Writer, cells []string) {
	clean := make([]string, len(cells))
	for i, c := range cells {
		clean[i] = flattenCell(c)
	}
	_, _ = w.Write([]byte(strings.Join(clean, "\t") + "\n"))
}

// flattenCell keeps a cell on one line so the table stays aligned.
func flattenCell(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
	return strings.TrimSpace(s)
}

// RenderRecords renders records over the columns of the first record.
func RenderRecords(records []entity.Record) string {
	if len(records) == 0 {
		return ""
	}
	columns := records[0].Columns()
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = rec.Value(c)
		}
		rows[i] = row
	}
	return RenderTable(columns, rows)
}

// CountProblems tallies the Problem column, most frequent first. Ties keep
// first-seen order; rows without a problem are counted as "(blank)".
func CountProblems(records []entity.Record) []ProblemCount {
	index := make(map[string]int)
	var out []ProblemCount
	for _, rec := range records {
		p, ok := rec.Get(entity.ColumnProblem)
		if !ok {
			p = blankProblem
		}
		if i, seen := index[p]; seen {
			out[i].Count++
			continue
		}
		index[p] = len(out)
		out = append(out, ProblemCount{Problem: p, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// RenderProblemCounts renders the frequency table with Problem/Count headers.
func RenderProblemCounts(counts []ProblemCount) string {
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.Problem, strconv.Itoa(c.Count)}
	}
	return RenderTable([]string{entity.ColumnProblem, "Count"}, rows)
}
