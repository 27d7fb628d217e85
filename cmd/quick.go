package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQuickCmd() *cobra.Command {
	var accounts []string

	cmd := &cobra.Command{
		Use:   "quick <text>",
		Short: "Quick-add an event using natural language",
		Args:  cobra.ExactArgs(1),
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

			ev, err := a.engine.QuickAdd(ctx, acct.Name, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Created: %s\n  %s - %s\n",
				ev.Summary,
				ev.Start.Format("2006-01-02 15:04"),
				ev.End.Format("15:04"))
			if ev.HTMLLink != "" {
				fmt.Printf("  %s\n", ev.HTMLLink)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&accounts, "account", "a", nil, "Account to add the event to")
	return cmd
}
