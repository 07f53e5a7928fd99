package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesinreallife/oram-public/internal/intent"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [message]",
	Short: "Print the intent a message classifies as",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	lr, _, err := loadLore(cfg)
	if err != nil {
		return err
	}
	it := intent.New(lr.Triggers()).Classify(strings.Join(args, " "))
	fmt.Fprintln(cmd.OutOrStdout(), it)
	return nil
}
