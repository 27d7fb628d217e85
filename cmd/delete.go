package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	var accounts []string
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <text>",
		Short: "Delete the earliest event matching the text on one account",
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

			matches, err := a.engine.FindMatches(ctx, acct.Name, args[0])
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				fmt.Printf("No events matching %q on account %q.\n", args[0], acct.Name)
				return nil
			}

			target := matches[0]
			fmt.Printf("Matching events on %q:\n", acct.Name)
			for i, ev := range matches {
				fmt.Printf("  [%d] %s  %s (%s)\n", i+1, ev.Start.Format("2006-01-02 15:04"), ev.Summary, ev.CalendarName)
			}

			if !yes && !confirm(fmt.Sprintf("Delete %q?", target.Summary)) {
				fmt.Println("Cancelled.")
				return nil
			}

			if err := a.engine.DeleteEventByID(ctx, acct.Name, target.CalendarID, target.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted: %s\n", target.Summary)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&accounts, "account", "a", nil, "Account to delete from")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
