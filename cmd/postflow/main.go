// Package main provides the postflow CLI: authentication, AI agent
// management, content generation and the scheduled publishing loop for a
// LinkedIn automation backend.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/postflow-dev/postflow"
	"github.com/postflow-dev/postflow/pkg/api"
	"github.com/postflow-dev/postflow/pkg/config"
)

var (
	// Version information (set via ldflags)
	Version = "dev"

	configFile string
	apiURL     string
)

var rootCmd = &cobra.Command{
	Use:   "postflow",
	Short: "LinkedIn content automation client",
	Long: `postflow drives a LinkedIn automation backend: generate posts with AI
agents, schedule and publish them, and inspect the automation log.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("postflow v%s\n", Version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", getEnv("POSTFLOW_CONFIG", ""), "Configuration file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API base URL")

	rootCmd.AddCommand(versionCmd)
}

// buildApp assembles the application from the config file and flags.
func buildApp() (*postflow.App, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	return postflow.New(cfg)
}

// printResult renders a Result: data to stdout, error to the command
// runner via a plain error.
func printResult(res api.Result) error {
	if !res.Success {
		return fmt.Errorf("%s", res.Error)
	}
	if len(res.Data) == 0 {
		fmt.Println("ok")
		return nil
	}

	var pretty any
	if err := json.Unmarshal(res.Data, &pretty); err != nil {
		fmt.Println(string(res.Data))
		return nil
	}
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		fmt.Println(string(res.Data))
		return nil
	}
	fmt.Println(string(out))
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
