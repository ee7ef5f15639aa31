package main

import (
	"fmt"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the backend",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		email, password, err := promptCredentials()
		if err != nil {
			return err
		}

		res := app.Auth.SignIn(cmd.Context(), email, password)
		if !res.Success {
			return fmt.Errorf("%s", res.Error)
		}
		if user := app.Auth.CurrentUser(); user != nil {
			fmt.Printf("Signed in as %s\n", user.Email)
		}
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		line := liner.NewLiner()
		defer line.Close()

		fullName, err := line.Prompt("Full name: ")
		if err != nil {
			return err
		}
		email, err := line.Prompt("Email: ")
		if err != nil {
			return err
		}
		password, err := line.PasswordPrompt("Password: ")
		if err != nil {
			return err
		}

		res := app.Auth.SignUp(cmd.Context(), strings.TrimSpace(email), password, strings.TrimSpace(fullName))
		return printResult(res)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear stored credentials",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		app.Auth.SignOut(cmd.Context())
		fmt.Println("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if !app.Auth.IsAuthenticated() {
			return fmt.Errorf("not signed in")
		}
		return printResult(app.Auth.GetUserProfile(cmd.Context()))
	},
}

func promptCredentials() (string, string, error) {
	line := liner.NewLiner()
	defer line.Close()

	email, err := line.Prompt("Email: ")
	if err != nil {
		return "", "", err
	}
	password, err := line.PasswordPrompt("Password: ")
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(email), password, nil
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}
