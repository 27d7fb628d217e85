package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newCalendarsCmd() *cobra.Command {
	var accounts []string
	var calendarFilters []string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "calendars",
		Short: "List calendars across accounts",
		Args:  cobra.NoArgs,
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
			res, err := a.engine.ListCalendars(fetchCtx, resolved, calendarFilters)
			if err != nil {
				return err
			}

			if len(res.Calendars) == 0 {
				fmt.Println("No calendars.")
			} else {
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ACCOUNT\tCALENDAR\tROLE\tID")
				for _, cal := range res.Calendars {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cal.Account, cal.Summary, cal.AccessRole, cal.ID)
				}
				w.Flush()
			}
			reportFailures(res.Failures, res.Canceled)
			return nil
		},
	}

	addReadFlags(cmd, &accounts, &calendarFilters, &timeout)
	return cmd
}
