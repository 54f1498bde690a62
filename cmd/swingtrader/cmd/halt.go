package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var haltCmd = &cobra.Command{
	Use:   "halt",
	Short: "Halt trading for today",
	Long: `Set the kill switch: the entry pipeline refuses to open positions
for the rest of the trading day. Monitoring and exits keep running.

Example:
  swingtrader halt --reason "broker outage"`,
	RunE: runHalt,
}

var haltReason string

func init() {
	rootCmd.AddCommand(haltCmd)

	haltCmd.Flags().StringVarP(&haltReason, "reason", "r", "", "why trading is halted (required)")
	haltCmd.MarkFlagRequired("reason")
}

func runHalt(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.SetHalt(context.Background(), time.Now(), haltReason); err != nil {
		return fmt.Errorf("set halt: %w", err)
	}

	fmt.Printf("✓ Trading halted for today: %s\n", haltReason)
	fmt.Println("  Exits and monitoring continue. Resume with: swingtrader resume")
	return nil
}
