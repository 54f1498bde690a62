package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Relay Telegram commands to the engine",
	Long: `Listen for operator commands on the configured Telegram chat and
apply them: /hold, /exit and /smart-stop answer loss alerts for one
ticker, /status reports the book and the ledger.

Requires telegram chat_id in the profile and the bot token in the
environment (TELEGRAM_BOT_TOKEN by default).

Example:
  swingtrader listen --profile swing`,
	RunE: runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)
}

func runListen(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.telegram == nil {
		return fmt.Errorf("telegram is not configured: set telegram chat_id and the bot token")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	fmt.Printf("Listening for commands (%s); Ctrl-C to stop\n", a.cfg.Strategy)
	for op := range a.telegram.Listen(ctx) {
		if err := a.engine.ApplyCommand(ctx, op); err != nil {
			a.log.Error("command failed",
				zap.String("action", op.Action),
				zap.String("ticker", op.Ticker),
				zap.Error(err))
		}
	}

	fmt.Println("\nShutting down")
	return nil
}
