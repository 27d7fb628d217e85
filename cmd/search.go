package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var accounts []string
	var calendarFilters []string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search events across accounts by text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			resolved, err := a.registry.ResolveFilter(accounts)
			if err != nil {
				return err
			}

			fetchCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			res, err := a.engine.SearchEvents(fetchCtx, resolved, args[0], calendarFilters)
			if err != nil {
				return err
			}

			printEvents(res.Events)
			reportFailures(res.Failures, res.Canceled)
			return nil
		},
	}

	addReadFlags(cmd, &accounts, &calendarFilters, &timeout)
	return cmd
}
