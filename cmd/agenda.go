package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"mcal/internal/aggregate"
)

const defaultAgendaWindow = 5 * 24 * time.Hour

func newAgendaCmd() *cobra.Command {
	var accounts []string
	var calendarFilters []string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "agenda [start] [end]",
		Short: "Show upcoming events across accounts (default: next 5 days)",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			now := time.Now().In(a.loc)
			timeMin := now
			if len(args) > 0 {
				if timeMin, err = parseWhen(args[0], a.loc); err != nil {
					return err
				}
			}
			timeMax := timeMin.Add(defaultAgendaWindow)
			if len(args) > 1 {
				if timeMax, err = parseWhen(args[1], a.loc); err != nil {
					return err
				}
			}

			resolved, err := a.registry.ResolveFilter(accounts)
			if err != nil {
				return err
			}

			fetchCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			res, err := a.engine.FetchAll(fetchCtx, resolved, aggregate.Query{
				TimeMin: timeMin,
				TimeMax: timeMax,
			}, calendarFilters)
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

func addReadFlags(cmd *cobra.Command, accounts *[]string, calendarFilters *[]string, timeout *time.Duration) {
	cmd.Flags().StringArrayVarP(accounts, "account", "a", nil, "Account name to include (repeatable; default: all)")
	cmd.Flags().StringArrayVarP(calendarFilters, "calendar", "c", nil, "Calendar name filter, substring match (repeatable)")
	cmd.Flags().DurationVar(timeout, "timeout", 60*time.Second, "Overall fetch timeout")
}
