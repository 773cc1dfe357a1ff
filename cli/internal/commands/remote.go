package commands

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/decisionstack/decisionstack/cli/internal/client"
)

// remoteFlags are shared by every command that talks to mdp-service.
type remoteFlags struct {
	url          string
	apiKeyEnv    string
	apiKeyHeader string
	retries      int
	timeout      time.Duration
}

func (r *remoteFlags) register(cmd *cobra.Command, urlUsage string) {
	cmd.Flags().StringVar(&r.url, "remote", "", urlUsage)
	cmd.Flags().StringVar(&r.apiKeyEnv, "api-key-env", "DSCTL_API_KEY", "environment variable holding the API key for --remote")
	cmd.Flags().StringVar(&r.apiKeyHeader, "api-key-header", "x-api-key", "header carrying the API key")
	cmd.Flags().IntVar(&r.retries, "retries", 3, "retries on transport errors and 5xx responses")
	cmd.Flags().DurationVar(&r.timeout, "timeout", 30*time.Second, "per-attempt HTTP timeout")
}

func (r *remoteFlags) client() *client.Client {
	opts := []client.Option{
		client.WithRetry(r.retries+1, 0, 0),
		client.WithHTTPClient(&http.Client{Timeout: r.timeout}),
	}
	if key := os.Getenv(r.apiKeyEnv); r.apiKeyEnv != "" && key != "" {
		opts = append(opts, client.WithAPIKey(r.apiKeyHeader, key))
	}
	return client.New(r.url, opts...)
}

func healthCommand(a *app) *cobra.Command {
	var f remoteFlags
	cmd := &cobra.Command{
		Use:   "health --remote URL",
		Short: "Check that an mdp-service is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := f.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			if a.output == outputJSON {
				return a.writeJSON(map[string]string{"status": status})
			}
			v := a.colors().Green(status)
			if status != "ok" {
				v = a.colors().Red(status)
			}
			fmt.Fprintf(a.out, "status   %v\n", v)
			return nil
		},
	}
	f.register(cmd, "base URL of the mdp-service")
	_ = cmd.MarkFlagRequired("remote")
	return cmd
}
