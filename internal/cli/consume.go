package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jamesinreallife/oram-public/internal/booking"
	"github.com/jamesinreallife/oram-public/internal/bridge"
	"github.com/jamesinreallife/oram-public/internal/store"
)

var (
	consumeOnce  bool
	consumeTail  int
	consumeRoute string
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Route booking interest from the queue",
	Long: `Reads new lines from the booking queue and routes each booking_interest
record to KAIROS, SEVER and LUMENA. The offset and routings are kept in the
bridge database. Runs until interrupted unless --once is given.`,
	RunE: runConsume,
}

func init() {
	consumeCmd.Flags().BoolVar(&consumeOnce, "once", false, "Process pending lines and exit")
	consumeCmd.Flags().IntVarP(&consumeTail, "list", "n", 0, "Print the newest N routings after processing")
	consumeCmd.Flags().StringVar(&consumeRoute, "target", "", "Only list routings for this persona")
}

func runConsume(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(store.PathIn(cfg.Data.Dir))
	if err != nil {
		return fmt.Errorf("open bridge db: %w", err)
	}
	defer db.Close()

	queue := filepath.Join(cfg.Data.Dir, booking.QueueFile)
	consumer := bridge.New(queue, db, logger, bridge.Options{Poll: cfg.Bridge.Poll})

	if consumeOnce {
		n, err := consumer.ProcessOnce(ctx)
		if err != nil {
			return err
		}
		logger.Info("queue processed",
			zap.Int("routed", n),
			zap.Int64("malformed", consumer.Malformed()))
	} else {
		fmt.Fprintf(os.Stderr, "oram consuming %s\n", queue)
		fmt.Fprintf(os.Stderr, "  db: %s\n", db.Path)
		if err := consumer.Run(ctx); err != nil {
			return err
		}
	}

	counts, err := db.CountRoutings()
	if err != nil {
		return err
	}
	logger.Info("routings recorded",
		zap.Int("KAIROS", counts["KAIROS"]),
		zap.Int("SEVER", counts["SEVER"]),
		zap.Int("LUMENA", counts["LUMENA"]))

	if consumeTail <= 0 {
		return nil
	}
	routings, err := db.ListRoutings(strings.ToUpper(consumeRoute), consumeTail)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, r := range routings {
		fmt.Fprintf(out, "%s  %-6s %-19s %s  %s %s\n",
			time.UnixMilli(r.RoutedAt).Format("2006-01-02 15:04:05"), r.Target, r.Action, r.RecordID, r.Artist, r.Date)
	}
	return nil
}
