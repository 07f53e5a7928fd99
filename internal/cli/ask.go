package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesinreallife/oram-public/internal/client"
)

var (
	askURL string
	askAs  string
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send a message to a running server",
	Long:  "Posts the message to a running ORAM server and prints the reply. The server URL defaults to ORAM_URL, then http://127.0.0.1:3000.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askURL, "url", "", "Server URL")
	askCmd.Flags().StringVar(&askAs, "as", "", "Force the replying persona (ORAM, KAIROS, SEVER, LUMENA)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	reply, err := client.New(askURL).Ask(ctx, strings.Join(args, " "), askAs)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply.Text())
	return nil
}
