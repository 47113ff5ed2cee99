package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"
)

// waitCmd represents the wait command
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the API server to be ready",
	Long: `Wait for the API server to be ready by polling the health endpoint.

The health endpoint only succeeds once the database is reachable, so this
is suitable as a container readiness gate.

Example:
  restorationctl wait
  restorationctl wait --port 6100 --retries 60`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		retries, _ := cmd.Flags().GetInt("retries")

		fmt.Println("Waiting for the API to be ready...")
		if err := waitForServer(cmd.Context(), healthURL(port), retries, time.Second); err != nil {
			return fmt.Errorf("server did not become ready: %w", err)
		}
		fmt.Println("API is ready")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().IntP("port", "p", 6100, "Server port to check")
	waitCmd.Flags().IntP("retries", "r", 90, "Number of retries")
}

func healthURL(port int) string {
	return fmt.Sprintf("http://localhost:%d/api/health", port)
}

// waitForServer polls url until it answers 2xx or retries are exhausted.
func waitForServer(ctx context.Context, url string, retries int, interval time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	client := &http.Client{Timeout: 2 * time.Second}

	check := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		if resp.StatusCode >= 300 {
			return fmt.Errorf("health check returned %d", resp.StatusCode)
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), uint64(retries)),
		ctx,
	)
	return backoff.Retry(check, policy)
}
