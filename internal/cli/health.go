package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// healthPollInterval spaces retries while waiting for a server to come up
const healthPollInterval = 250 * time.Millisecond

func newHealthCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the server is up and how busy it is",
		Long: `Reports whether the server and its session store answer, along with
the number of open sessions and live push connections. With --wait the
check is retried until it passes, which helps scripts that start a server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := pollHealth(wait, healthPollInterval, func(r *HealthResult) error {
				return client.Get("/api/v1/health", r)
			})
			if err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 0, "Keep retrying for up to this long, e.g. 10s")
	return cmd
}

// pollHealth runs check until it reports ok or the wait runs out. A zero
// wait checks once.
func pollHealth(wait, interval time.Duration, check func(*HealthResult) error) (HealthResult, error) {
	deadline := time.Now().Add(wait)
	for {
		var result HealthResult
		err := check(&result)
		if err == nil && result.Status != "ok" {
			err = fmt.Errorf("server reports status %q", result.Status)
		}
		if err == nil {
			return result, nil
		}
		if !time.Now().Add(interval).Before(deadline) {
			if wait > 0 {
				return HealthResult{}, fmt.Errorf("server not healthy after %s: %w", wait, err)
			}
			return HealthResult{}, err
		}
		time.Sleep(interval)
	}
}
