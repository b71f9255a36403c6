package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/breakdown-bot/internal/domain/constants"
	"github.com/yourusername/breakdown-bot/internal/infrastructure/storage"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [out.xlsx]",
		Short: "Write the current dataset to a new workbook",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := constants.ExportFileName
			if len(args) == 1 {
				out = args[0]
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.dataset.ExportTo(ctx, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", a.dataset.Snapshot().Len(), out)
			return nil
		},
	}
}

func newColumnsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "List the dataset columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()
			for _, col := range a.entry.Columns() {
				fmt.Fprintln(cmd.OutOrStdout(), col)
			}
			return nil
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently appended rows from the journal",
		Long: `Lists the newest journal entries. The journal is stored in Postgres when
DATABASE_URL is set; without it entries live in the memory of the running
bot and this command has nothing to show.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if storage.IsMemory(a.journal) {
				fmt.Fprintln(cmd.OutOrStdout(), "No persistent journal: set DATABASE_URL to keep history across runs.")
				return nil
			}
			entries, err := a.entry.History(ctx, limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(w, "No rows added yet.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(w, "%s  %s  %-12s rows=%d  %v\n",
					e.CreatedAt.Format("2006-01-02 15:04:05"), e.ID, e.Actor, e.RowCount, e.Values)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", constants.JournalHistoryLimit, "number of entries")
	return cmd
}
