package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/breakdown-bot/internal/lookup"
	"github.com/yourusername/breakdown-bot/internal/usecase"
)

func newQueryCmd(opts *rootOptions) *cobra.Command {
	var noExplain bool
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Search once and print the matches and explanation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg, !noExplain)
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			state := usecase.NewInteractionState()
			var out usecase.SearchOutcome
			if noExplain {
				_, out, err = a.lookup.Lookup(ctx, state, query)
			} else {
				_, out, err = a.lookup.Search(ctx, state, query)
			}
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), out, !noExplain)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noExplain, "no-explain", false, "skip the language model")
	return cmd
}

func printOutcome(w io.Writer, out usecase.SearchOutcome, explained bool) {
	if len(out.Suggestions) > 0 {
		fmt.Fprintln(w, "Suggestions:")
		for _, s := range out.Suggestions {
			fmt.Fprintf(w, "  %s\n", s.Text)
		}
		fmt.Fprintln(w)
	}

	switch out.Status {
	case usecase.OutcomeInactive:
		fmt.Fprintln(w, "Nothing to search for.")
		return
	case usecase.OutcomeNoMatches:
		fmt.Fprintln(w, "No matches found.")
		return
	}

	fmt.Fprintf(w, "Matching Results (%d found)\n\n", len(out.Matches))
	fmt.Fprintln(w, out.Table)
	if len(out.Matches) > 1 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, lookup.RenderProblemCounts(lookup.CountProblems(out.Matches)))
	}
	if !explained {
		return
	}
	fmt.Fprintln(w)
	if out.ExplainErr != nil {
		fmt.Fprintf(w, "Explanation unavailable: %v\n", out.ExplainErr)
		return
	}
	fmt.Fprintln(w, "Explanation:")
	fmt.Fprintln(w, out.Explanation)
}
