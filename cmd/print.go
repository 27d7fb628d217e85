package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"mcal/internal/aggregate"
	"mcal/internal/calendar"
)

// printEvents renders a merged event list as aligned columns.
func printEvents(events []calendar.Event) {
	if len(events) == 0 {
		fmt.Println("No events.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, ev := range events {
		when := fmt.Sprintf("%s - %s",
			ev.Start.Format("2006-01-02 15:04"),
			ev.End.Format("15:04"))
		if ev.AllDay {
			when = ev.Start.Format("2006-01-02") + " (all day)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", when, ev.Summary, ev.Account, ev.CalendarName)
	}
	w.Flush()
}

// reportFailures surfaces partial failures on stderr so partial results
// are never mistaken for complete ones.
func reportFailures(failures []aggregate.AccountFailure, canceled bool) {
	for _, f := range failures {
		fmt.Fprintf(os.Stderr, "warning: account %q failed (%s): %v\n", f.Account, f.Kind(), f.Err)
	}
	if canceled {
		fmt.Fprintln(os.Stderr, "warning: aggregation was canceled before all accounts settled")
	}
}
