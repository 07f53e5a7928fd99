package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesinreallife/oram-public/internal/client"
)

var healthURL string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check a running server",
	Long:  "Fetches /api/health from a running ORAM server. Exits non-zero when the server is unreachable.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		c := client.New(healthURL)
		h, err := c.Health(ctx)
		if err != nil {
			return fmt.Errorf("health %s: %w", c.URL(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s version=%s provider=%s uptime=%s\n",
			c.URL(), h.Status, h.Version, h.Provider,
			time.Duration(h.Uptime*float64(time.Second)).Truncate(time.Second))
		return nil
	},
}

func init() {
	healthCmd.Flags().StringVar(&healthURL, "url", "", "Server URL")
}
