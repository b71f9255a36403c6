package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/breakdown-bot/internal/lookup"
	"github.com/yourusername/breakdown-bot/internal/usecase"
)

func newAddCmd(opts *rootOptions) *cobra.Command {
	var sets []string
	var actor string
	cmd := &cobra.Command{
		Use:   "add --set Column=Value [--set Column=Value ...]",
		Short: "Append one row to the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			state := usecase.NewInteractionState()
			for _, col := range a.entry.Columns() {
				v, ok := values[col]
				if !ok {
					continue
				}
				if state, err = a.entry.SetField(state, col, v); err != nil {
					return err
				}
				delete(values, col)
			}
			if len(values) > 0 {
				unknown := make([]string, 0, len(values))
				for col := range values {
					unknown = append(unknown, col)
				}
				sort.Strings(unknown)
				return fmt.Errorf("%w: %s", usecase.ErrUnknownColumn, strings.Join(unknown, ", "))
			}

			state, err = a.entry.RequestAdd(state)
			if err != nil {
				return err
			}
			_, res, err := a.entry.ConfirmAdd(ctx, state, actor)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Row added successfully!")
			fmt.Fprintf(w, "Last %d rows (%d total):\n", len(res.Tail), res.RowCount)
			fmt.Fprintln(w, lookup.RenderRecords(res.Tail))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "column value as Column=Value (repeatable)")
	cmd.Flags().StringVar(&actor, "actor", os.Getenv("USER"), "name recorded in the journal")
	return cmd
}

// parseAssignments turns Column=Value pairs into a map. The column is
// trimmed; the value is kept as typed.
func parseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		col, val, ok := strings.Cut(p, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid --set %q, want Column=Value", p)
		}
		out[col] = val
	}
	return out, nil
}
