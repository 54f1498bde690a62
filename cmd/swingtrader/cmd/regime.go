package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/swingtrader/store"
)

var regimeCmd = &cobra.Command{
	Use:   "regime",
	Short: "Show or set the market regime",
	Long: `The market regime gates the entry pipeline: its multiplier scales
deployable capital and a defensive regime can block new entries
outright. Exits are never gated.

Examples:
  swingtrader regime
  swingtrader regime set --name BEAR --multiplier 0.5 --allow-entries=false
  swingtrader regime set --name BULL --multiplier 1.0`,
	RunE: runRegimeShow,
}

var regimeSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the market regime",
	RunE:  runRegimeSet,
}

var (
	regimeName         string
	regimeMultiplier   float64
	regimeAllowEntries bool
)

func init() {
	rootCmd.AddCommand(regimeCmd)
	regimeCmd.AddCommand(regimeSetCmd)

	regimeSetCmd.Flags().StringVar(&regimeName, "name", "", "regime name, e.g. BULL, NEUTRAL, BEAR (required)")
	regimeSetCmd.Flags().Float64Var(&regimeMultiplier, "multiplier", 1.0, "deployable capital multiplier (0..1]")
	regimeSetCmd.Flags().BoolVar(&regimeAllowEntries, "allow-entries", true, "whether new entries are allowed")
	regimeSetCmd.MarkFlagRequired("name")
}

func runRegimeShow(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	regime, err := a.store.CurrentRegime(context.Background())
	if err != nil {
		return fmt.Errorf("load regime: %w", err)
	}

	fmt.Printf("Regime: %s\n", regime.Name)
	fmt.Printf("  Deployable multiplier: %.2f\n", regime.Multiplier)
	fmt.Printf("  New entries allowed:   %v\n", regime.AllowEntries)
	return nil
}

func runRegimeSet(cmd *cobra.Command, args []string) error {
	if regimeMultiplier <= 0 || regimeMultiplier > 1 {
		return fmt.Errorf("multiplier must be in (0, 1], got %v", regimeMultiplier)
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	err = a.store.SetRegime(context.Background(), store.Regime{
		Name:         regimeName,
		Multiplier:   regimeMultiplier,
		AllowEntries: regimeAllowEntries,
	})
	if err != nil {
		return fmt.Errorf("set regime: %w", err)
	}

	fmt.Printf("✓ Regime set: %s (×%.2f, entries %v)\n", regimeName, regimeMultiplier, regimeAllowEntries)
	return nil
}
