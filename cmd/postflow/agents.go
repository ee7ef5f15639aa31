package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/postflow-dev/postflow/pkg/agents"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Manage AI agents",
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your agents, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		return printResult(app.Agents.GetUserAgents(cmd.Context()))
	},
}

var (
	agentName     string
	agentType     string
	agentModel    string
	agentTone     string
	agentTemplate string
)

var agentsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an agent",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		user := app.Auth.CurrentUser()
		if user == nil {
			return fmt.Errorf("not signed in")
		}

		return printResult(app.Agents.CreateAgent(cmd.Context(), user.ID, agents.CreateAgentParams{
			Name: agentName,
			Type: agentType,
			ModelConfig: agents.ModelConfig{
				Model: agentModel,
				Tone:  agentTone,
			},
			PromptTemplate: agentTemplate,
		}))
	},
}

var agentsDeleteCmd = &cobra.Command{
	Use:   "delete <agent-id>",
	Short: "Delete an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		return printResult(app.Agents.DeleteAgent(cmd.Context(), args[0]))
	},
}

var (
	logsLimit int
	logsLocal bool
)

var logsCmd = &cobra.Command{
	Use:   "logs <agent-id>",
	Short: "Show the automation log for an agent, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if logsLocal {
			entries, err := app.LocalLogs(cmd.Context(), args[0], logsLimit)
			if err != nil {
				return err
			}
			if entries == nil {
				return fmt.Errorf("no local log mirror configured")
			}
			out, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		return printResult(app.Agents.GetAgentLogs(cmd.Context(), args[0], logsLimit))
	},
}

func init() {
	agentsCreateCmd.Flags().StringVar(&agentName, "name", "", "Agent name")
	agentsCreateCmd.Flags().StringVar(&agentType, "type", agents.TypeContentGenerator, "Agent type (content_generator|scheduler|poster|analytics)")
	agentsCreateCmd.Flags().StringVar(&agentModel, "model", "", "Model ID")
	agentsCreateCmd.Flags().StringVar(&agentTone, "tone", "", "Default tone")
	agentsCreateCmd.Flags().StringVar(&agentTemplate, "prompt-template", "", "Custom prompt template")
	_ = agentsCreateCmd.MarkFlagRequired("name")

	logsCmd.Flags().IntVar(&logsLimit, "limit", 50, "Maximum entries")
	logsCmd.Flags().BoolVar(&logsLocal, "local", false, "Read the local log mirror instead of the backend")

	agentsCmd.AddCommand(agentsListCmd, agentsCreateCmd, agentsDeleteCmd)
	rootCmd.AddCommand(agentsCmd, logsCmd)
}
