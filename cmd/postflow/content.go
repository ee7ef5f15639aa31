package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/postflow-dev/postflow/pkg/agents"
	"github.com/postflow-dev/postflow/pkg/openrouter"
)

var (
	genAgentID  string
	genTopic    string
	genTone     string
	genLength   string
	genHashtags bool
	genEmojis   bool
	genModel    string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a LinkedIn post",
	Long: `Generate a LinkedIn post. With --agent the run goes through the agent's
configuration and is saved as a draft; without it the content is only
printed. Prompts for a topic when none is given.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		topic := genTopic
		if topic == "" {
			line := liner.NewLiner()
			topic, err = line.Prompt("Topic: ")
			line.Close()
			if err != nil {
				return err
			}
			topic = strings.TrimSpace(topic)
		}
		if topic == "" {
			return fmt.Errorf("a topic is required")
		}

		if genAgentID != "" {
			return printResult(app.Agents.ExecuteContentGenerator(cmd.Context(), genAgentID, agents.GenerateParams{
				Topic:           topic,
				Tone:            genTone,
				Length:          genLength,
				IncludeHashtags: &genHashtags,
				IncludeEmojis:   &genEmojis,
			}))
		}

		return printResult(app.Generator.GenerateLinkedInPost(cmd.Context(), openrouter.PostParams{
			Topic:           topic,
			Tone:            genTone,
			Length:          genLength,
			IncludeHashtags: &genHashtags,
			IncludeEmojis:   &genEmojis,
			Model:           genModel,
		}))
	},
}

var (
	postAgentID   string
	postAccountID string
)

var postCmd = &cobra.Command{
	Use:   "post <content-id>",
	Short: "Publish a content post through LinkedIn",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		return printResult(app.Agents.ExecutePoster(cmd.Context(), postAgentID, args[0], postAccountID))
	},
}

var (
	scheduleAgentID string
	scheduleAt      string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <content-id>",
	Short: "Schedule a content post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		at, err := time.Parse(time.RFC3339, scheduleAt)
		if err != nil {
			return fmt.Errorf("invalid --at value (want RFC3339, e.g. 2026-09-01T09:00:00Z): %w", err)
		}

		return printResult(app.Agents.ExecuteScheduler(cmd.Context(), scheduleAgentID, args[0], at))
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show the content calendar",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		return printResult(app.API.GetCalendar(cmd.Context()))
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available generation models",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		return printResult(app.Generator.AvailableModels(cmd.Context()))
	},
}

var analyzeAgentID string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <content-id>",
	Short: "Analyze a post's engagement potential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		return printResult(app.Agents.ExecuteAnalytics(cmd.Context(), analyzeAgentID, args[0]))
	},
}

func init() {
	generateCmd.Flags().StringVar(&genAgentID, "agent", "", "Run through an agent and save the result as a draft")
	generateCmd.Flags().StringVar(&genTopic, "topic", "", "Post topic")
	generateCmd.Flags().StringVar(&genTone, "tone", "", "Tone (default professional)")
	generateCmd.Flags().StringVar(&genLength, "length", "", "Length (short|medium|long)")
	generateCmd.Flags().BoolVar(&genHashtags, "hashtags", true, "Include hashtags")
	generateCmd.Flags().BoolVar(&genEmojis, "emojis", false, "Include emojis")
	generateCmd.Flags().StringVar(&genModel, "model", "", "Model ID")

	postCmd.Flags().StringVar(&postAgentID, "agent", "", "Agent to attribute the run to")
	postCmd.Flags().StringVar(&postAccountID, "account", "", "LinkedIn account ID")
	_ = postCmd.MarkFlagRequired("account")

	scheduleCmd.Flags().StringVar(&scheduleAgentID, "agent", "", "Agent to attribute the run to")
	scheduleCmd.Flags().StringVar(&scheduleAt, "at", "", "Publish time, RFC3339")
	_ = scheduleCmd.MarkFlagRequired("at")

	analyzeCmd.Flags().StringVar(&analyzeAgentID, "agent", "", "Agent to attribute the run to")

	rootCmd.AddCommand(generateCmd, postCmd, scheduleCmd, calendarCmd, modelsCmd, analyzeCmd)
}
