package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage registered calendar accounts",
	}
	cmd.AddCommand(newAccountAddCmd())
	cmd.AddCommand(newAccountRemoveCmd())
	cmd.AddCommand(newAccountListCmd())
	return cmd
}

func newAccountAddCmd() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a new account via browser-based authorization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			if err := a.manager.RegisterAccount(ctx, name, overwrite); err != nil {
				return err
			}

			// First registered account becomes the default for writes.
			if a.settings.DefaultAccount == "" {
				a.settings.DefaultAccount = name
				if err := a.dir.SaveSettings(a.settings); err != nil {
					return err
				}
			}

			fmt.Printf("Account %q registered.\n", name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace the account's stored credentials if it already exists")
	return cmd
}

func newAccountRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a registered account and its stored credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			if err := a.manager.RemoveAccount(name); err != nil {
				return err
			}

			// Re-point the default at a remaining account.
			if a.settings.DefaultAccount == name {
				remaining, err := a.registry.ListAccounts()
				if err != nil {
					return err
				}
				a.settings.DefaultAccount = ""
				if len(remaining) > 0 {
					a.settings.DefaultAccount = remaining[0].Name
				}
				if err := a.dir.SaveSettings(a.settings); err != nil {
					return err
				}
			}

			fmt.Printf("Account %q removed.\n", name)
			return nil
		},
	}
}

func newAccountListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			accounts, err := a.registry.ListAccounts()
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				fmt.Println("No accounts registered. Use \"mcal account add <name>\" to add one.")
				return nil
			}
			for _, acct := range accounts {
				mark := ""
				if acct.Default {
					mark = " (default)"
				}
				fmt.Printf("%s%s\n", acct.Name, mark)
			}
			return nil
		},
	}
}
