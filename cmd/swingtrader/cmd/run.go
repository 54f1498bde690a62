package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one entry cycle from the candidate file",
	Long: `Run the entry pipeline once: load the screened candidates, plan
capital across categories, and open positions through the broker.

Halts, the market regime, re-entry guards and portfolio limits all
apply; skipped candidates are logged with the reason.

Example:
  swingtrader run --profile swing
  swingtrader run -f profiles/swing.yaml`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	if err := a.engine.RunEntries(ctx); err != nil {
		return fmt.Errorf("entry cycle: %w", err)
	}

	acct, err := a.store.Account(ctx, a.cfg.Strategy)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	open, err := a.store.ActivePositions(ctx, a.cfg.Strategy)
	if err != nil {
		return fmt.Errorf("load positions: %w", err)
	}

	fmt.Printf("✓ Entry cycle complete (%s, %s mode)\n", a.cfg.Strategy, a.cfg.Mode)
	fmt.Printf("  Open positions: %d\n", len(open))
	fmt.Printf("  Deployed: ₹%s\n", acct.DeployedCapital.StringFixed(2))
	fmt.Printf("  Available: ₹%s\n", acct.AvailableCash().StringFixed(2))
	return nil
}
