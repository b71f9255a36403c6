package lookup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
)

func TestBuildPrompt_SingleMatch(t *testing.T) {
	ds := entity.NewDataset(
		[]string{"Machine Name", "Problem", "Downtime"},
		[][]string{{"Press-1", "Jam", "45"}},
	)

	got, err := BuildPrompt("jam", ds.Records)
	require.NoError(t, err)

	want := "Here is the data for query: 'jam'. Explain the details and any insights.\n\n" +
		"Machine Name  Problem  Downtime\n" +
		"Press-1       Jam      45"
	assert.Equal(t, want, got)
}

func TestBuildPrompt_MultiMatch(t *testing.T) {
	ds := entity.NewDataset([]string{"Machine Name", "Problem"}, [][]string{
		{"Press-1", "Jam"},
		{"Press-1", "Overheat"},
		{"Press-1", "Overheat"},
		{"Press-1", "Leak"},
		{"Press-1", "Overheat"},
		{"Press-1", "Leak"},
	})

	got, err := BuildPrompt("press", ds.Records)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got,
		"The query 'press' matches 6 rows. Analyze the problems, starting with the most common one. "+
			"Provide possible causes, suggestions, and order them by frequency.\n\nProblem summary:\n"))

	summary := "Problem   Count\n" +
		"Overheat  3\n" +
		"Leak      2\n" +
		"Jam       1"
	assert.Contains(t, got, summary)
	assert.Contains(t, got, "\n\nDetails of matches:\nMachine Name  Problem\nPress-1       Jam\n")
	assert.Equal(t, 7, strings.Count(got[strings.Index(got, "Details of matches:"):], "\n"))
}

func TestBuildPrompt_NoMatches(t *testing.T) {
	_, err := BuildPrompt("zzz", nil)
	require.ErrorIs(t, err, entity.ErrNoMatches)
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	recs := pressDataset().Records
	a, err := BuildPrompt("p", recs)
	require.NoError(t, err)
	b, err := BuildPrompt("p", recs)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCountProblems_SumsToMatchCount(t *testing.T) {
	ds := entity.NewDataset([]string{"Machine Name", "Problem"}, [][]string{
		{"A", "Jam"}, {"B", ""}, {"C", "Jam"}, {"D", "Leak"}, {"E", ""}, {"F", ""},
	})

	counts := CountProblems(ds.Records)
	total := 0
	for i, c := range counts {
		total += c.Count
		if i > 0 {
			assert.GreaterOrEqual(t, counts[i-1].Count, c.Count, "sorted descending")
		}
	}
	assert.Equal(t, ds.Len(), total)
	assert.Equal(t, []ProblemCount{{"(blank)", 3}, {"Jam", 2}, {"Leak", 1}}, counts)
}

func TestRenderTable_FlattensCells(t *testing.T) {
	got := RenderTable([]string{"A", "B"}, [][]string{{"line1\nline2", "x\ty"}})
	assert.Equal(t, "A            B\nline1 line2  x y", got)
}
