package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mcal/internal/aggregate"
	"mcal/internal/ics"
)

func newExportCmd() *cobra.Command {
	var accounts []string
	var calendarFilters []string
	var timeout time.Duration
	var out string

	cmd := &cobra.Command{
		Use:   "export [start] [end]",
		Short: "Export the merged agenda as an iCalendar file",
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

			w := os.Stdout
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := ics.Write(w, res.Events); err != nil {
				return err
			}

			reportFailures(res.Failures, res.Canceled)
			if out != "" && out != "-" {
				fmt.Fprintf(os.Stderr, "Wrote %d events to %s\n", len(res.Events), out)
			}
			return nil
		},
	}

	addReadFlags(cmd, &accounts, &calendarFilters, &timeout)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	return cmd
}
