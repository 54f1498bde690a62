package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/swingtrader/risk"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the ledger, the open book and recent trades",
	RunE:  runStatus,
}

var statusTrades int

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().IntVarP(&statusTrades, "trades", "n", 10, "number of journal rows to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	now := time.Now()

	acct, err := a.store.Account(ctx, a.cfg.Strategy)
	if err != nil {
		fmt.Printf("Strategy %s: no capital account yet (run an entry cycle first)\n", a.cfg.Strategy)
		return nil
	}

	fmt.Printf("Strategy: %s (%s mode)\n", a.cfg.Strategy, a.cfg.Mode)
	if reason, halted, err := a.store.ActiveHalt(ctx, now); err == nil && halted {
		fmt.Printf("TRADING HALTED: %s\n", reason)
	}
	if regime, err := a.store.CurrentRegime(ctx); err == nil {
		fmt.Printf("Regime: %s (deployable ×%.2f, entries %v)\n",
			regime.Name, regime.Multiplier, regime.AllowEntries)
	}

	fmt.Println("\nCapital:")
	fmt.Printf("  Initial:         ₹%s\n", acct.InitialCapital.StringFixed(2))
	fmt.Printf("  Deployed:        ₹%s\n", acct.DeployedCapital.StringFixed(2))
	fmt.Printf("  Available:       ₹%s\n", acct.AvailableCash().StringFixed(2))
	fmt.Printf("  Locked profits:  ₹%s\n", acct.LockedProfits.StringFixed(2))
	fmt.Printf("  Realized losses: ₹%s\n", acct.RealizedLosses.StringFixed(2))

	open, err := a.store.ActivePositions(ctx, a.cfg.Strategy)
	if err != nil {
		return fmt.Errorf("load positions: %w", err)
	}
	fmt.Printf("\nOpen positions (%d):\n", len(open))
	for _, pos := range open {
		price, err := a.data.LastPrice(ctx, pos.Ticker)
		mark := ""
		if err == nil {
			mark = fmt.Sprintf("  now ₹%.2f (%+.2f%%)", price, risk.PnLPct(pos.EntryPrice, price)*100)
		}
		fmt.Printf("  %-12s %5d @ ₹%-10.2f stop ₹%.2f (%s)  target ₹%.2f  day %d%s\n",
			pos.Ticker, pos.Quantity, pos.EntryPrice, pos.StopLoss, pos.StopMethod,
			pos.TakeProfit, pos.DaysHeld(now), mark)
	}

	trades, err := a.store.Trades(ctx, a.cfg.Strategy, statusTrades)
	if err != nil {
		return fmt.Errorf("load trades: %w", err)
	}
	fmt.Printf("\nRecent trades (%d):\n", len(trades))
	for _, tr := range trades {
		reason := tr.Reason
		if reason == "" {
			reason = "-"
		}
		fmt.Printf("  %s  %-4s %-12s %5d @ ₹%-10.2f %s\n",
			tr.ExecutedAt.Format("2006-01-02"), tr.Side, tr.Ticker, tr.Quantity, tr.Price, reason)
	}
	return nil
}
