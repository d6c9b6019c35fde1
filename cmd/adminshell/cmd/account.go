package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newAccountCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage login accounts for the accounts auth mode",
	}
	cmd.AddCommand(
		newAccountAddCmd(load),
		newAccountListCmd(load),
	)
	return cmd
}

func newAccountAddCmd(load loader) *cobra.Command {
	var email, name, password string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("ADMINSHELL_ACCOUNT_PASSWORD")
			}
			if password == "" {
				return errors.New("a password is required (--password or ADMINSHELL_ACCOUNT_PASSWORD)")
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			app, err := wireApp(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			accts, err := app.accounts()
			if err != nil {
				return err
			}
			if err := accts.Add(cmd.Context(), email, name, password); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "account %s created\n", email)
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&name, "name", "", "Display name shown in the header")
	cmd.Flags().StringVar(&password, "password", "", "Password (prefer ADMINSHELL_ACCOUNT_PASSWORD)")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newAccountListCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List account emails",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			app, err := wireApp(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			accts, err := app.accounts()
			if err != nil {
				return err
			}
			emails, err := accts.List()
			if err != nil {
				return err
			}
			for _, e := range emails {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}
}
