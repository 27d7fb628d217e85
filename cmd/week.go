package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mcal/internal/aggregate"
)

func newWeekCmd() *cobra.Command {
	var accounts []string
	var calendarFilters []string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "week [n]",
		Short: "Show events for the next n weeks (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			weeks := 1
			if len(args) > 0 {
				weeks, err = strconv.Atoi(args[0])
				if err != nil || weeks < 1 {
					return fmt.Errorf("invalid week count %q", args[0])
				}
			}
			timeMin, timeMax := weekWindow(time.Now().In(a.loc), weeks)

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

// weekWindow spans from the start of today through n whole weeks, so
// events earlier today still appear.
func weekWindow(now time.Time, weeks int) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 7*weeks)
}
