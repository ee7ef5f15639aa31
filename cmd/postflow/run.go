package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/postflow-dev/postflow/pkg/observability"
)

var runMetricsAddr string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the publishing loop",
	Long: `Run the scheduled publishing loop: due posts are published through the
configured LinkedIn account once a minute. Serves health and metrics
endpoints while running.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if app.Scheduler == nil {
			return fmt.Errorf("scheduler is not enabled; set scheduler.enabled and scheduler.account_id")
		}

		log.Printf("Starting postflow v%s", Version)

		if err := observability.InitTracingFromEnv(); err != nil {
			log.Printf("Warning: tracing disabled: %v", err)
		}

		healthChecker := observability.InitHealthChecker()
		healthChecker.RegisterCheck(observability.PingCheck())
		healthChecker.RegisterCheck(observability.CacheCheck(app.CachePing))

		addr := runMetricsAddr
		if addr == "" {
			addr = app.Config.MetricsAddr
		}
		if addr == "" {
			addr = ":9090"
		}

		obsServer := observability.NewServer(addr)
		errChan := make(chan error, 2)
		go func() {
			log.Printf("Starting HTTP server on %s", addr)
			if err := obsServer.Start(); err != nil {
				errChan <- fmt.Errorf("HTTP server error: %w", err)
			}
		}()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		if err := app.Scheduler.Start(ctx); err != nil {
			return err
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errChan:
			log.Printf("Error: %v", err)
		case <-quit:
			log.Println("Shutting down...")
		}

		app.Scheduler.Stop()
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := obsServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
		if err := observability.ShutdownTracing(shutdownCtx); err != nil {
			log.Printf("Tracing shutdown error: %v", err)
		}

		log.Println("Stopped")
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "Health/metrics listen address (default :9090)")
	rootCmd.AddCommand(runCmd)
}
