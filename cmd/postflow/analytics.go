package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/postflow-dev/postflow"
	"github.com/postflow-dev/postflow/pkg/api"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show aggregate posting KPIs",
	RunE: analyticsRunE(func(app *postflow.App, userID string, cmd *cobra.Command) api.Result {
		return app.Analytics.Dashboard(cmd.Context(), userID)
	}),
}

var engagementCmd = &cobra.Command{
	Use:   "engagement",
	Short: "Show engagement analytics",
	RunE: analyticsRunE(func(app *postflow.App, userID string, cmd *cobra.Command) api.Result {
		return app.Analytics.Engagement(cmd.Context(), userID)
	}),
}

var performanceCmd = &cobra.Command{
	Use:   "performance",
	Short: "Show per-post performance analytics",
	RunE: analyticsRunE(func(app *postflow.App, userID string, cmd *cobra.Command) api.Result {
		return app.Analytics.Performance(cmd.Context(), userID)
	}),
}

func analyticsRunE(fetch func(*postflow.App, string, *cobra.Command) api.Result) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		user := app.Auth.CurrentUser()
		if user == nil {
			return fmt.Errorf("not signed in")
		}
		return printResult(fetch(app, user.ID, cmd))
	}
}

func init() {
	rootCmd.AddCommand(dashboardCmd, engagementCmd, performanceCmd)
}
