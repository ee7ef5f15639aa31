package main

import (
	"fmt"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/postflow-dev/postflow/pkg/linkedin"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage connected LinkedIn accounts",
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connected accounts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		return printResult(app.LinkedIn.Accounts(cmd.Context()))
	},
}

var accountsConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a LinkedIn account to the automation engine",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		line := liner.NewLiner()
		defer line.Close()

		email, err := line.Prompt("LinkedIn email: ")
		if err != nil {
			return err
		}
		password, err := line.PasswordPrompt("LinkedIn password: ")
		if err != nil {
			return err
		}

		return printResult(app.LinkedIn.Login(cmd.Context(), linkedin.Credentials{
			AccountEmail: strings.TrimSpace(email),
			Password:     password,
		}))
	},
}

var accountsTestCmd = &cobra.Command{
	Use:   "test <account-id>",
	Short: "Verify an account's automation session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		conn, res := app.LinkedIn.TestConnection(cmd.Context(), args[0])
		if !res.Success {
			return fmt.Errorf("%s", res.Error)
		}
		if conn.Connected {
			fmt.Println("Connected")
		} else {
			fmt.Printf("Not connected: %s\n", conn.Message)
		}
		return nil
	},
}

func init() {
	accountsCmd.AddCommand(accountsListCmd, accountsConnectCmd, accountsTestCmd)
	rootCmd.AddCommand(accountsCmd)
}
