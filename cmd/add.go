package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mcal/internal/aggregate"
)

func newAddCmd() *cobra.Command {
	var accounts []string
	var title, when, where, description string
	var attendees []string
	var durationMin int
	var allDay bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new event to one account's primary calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			acct, err := a.registry.RequireSingleAccount(accounts)
			if err != nil {
				return err
			}

			start, err := parseWhen(when, a.loc)
			if err != nil {
				return err
			}

			ev, err := a.engine.AddEvent(ctx, acct.Name, aggregate.AddEventInput{
				Title:       title,
				Start:       start,
				Duration:    time.Duration(durationMin) * time.Minute,
				AllDay:      allDay,
				Location:    where,
				Description: description,
				Attendees:   attendees,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Created: %s\n  %s - %s\n",
				ev.Summary,
				ev.Start.Format("2006-01-02 15:04"),
				ev.End.Format("15:04"))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&accounts, "account", "a", nil, "Account to add the event to")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Event title")
	cmd.Flags().StringVarP(&when, "when", "w", "", "Start time (e.g. \"2026-09-01 14:00\")")
	cmd.Flags().IntVarP(&durationMin, "duration", "d", 60, "Duration in minutes")
	cmd.Flags().BoolVar(&allDay, "allday", false, "All-day event")
	cmd.Flags().StringVar(&where, "where", "", "Location")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringArrayVar(&attendees, "who", nil, "Attendee email (repeatable)")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("when")
	return cmd
}
