package main

import (
	"github.com/spf13/cobra"

	"github.com/yourusername/breakdown-bot/internal/delivery/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive terminal search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg, true)
			if err != nil {
				return err
			}
			defer a.Close()
			return tui.Run(ctx, a.lookup, a.entry)
		},
	}
}
