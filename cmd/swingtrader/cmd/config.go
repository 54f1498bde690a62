package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/swingtrader/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate profile files",
	Long: `Manage strategy profile files.

Subcommands:
  init     - Write a built-in profile to a file for editing
  validate - Check that a profile file loads and validates

Examples:
  swingtrader config init --profile swing --output swing.yaml
  swingtrader config validate --file swing.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a built-in profile to a file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a profile file",
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "swing.yaml", "output profile path (.yaml or .json)")
	configValidateCmd.Flags().StringVar(&configValidatePath, "file", "", "path to profile file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadProfile()
	if err != nil {
		return err
	}
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	fmt.Printf("✓ Wrote %s profile: %s\n", cfg.Strategy, configInitOutput)
	fmt.Println("\nEdit the file and run with:")
	fmt.Printf("  swingtrader run -f %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Profile valid: %s\n", configValidatePath)
	fmt.Printf("  Strategy: %s (%s mode, %s sizing)\n", cfg.Strategy, cfg.Mode, cfg.SizingMode)
	fmt.Printf("  Capital: ₹%.2f\n", cfg.InitialCapital)
	fmt.Printf("  Breaker: alert %.1f%%, hard stop %.1f%%\n",
		cfg.Breaker.AlertPct*100, cfg.Breaker.HardStopPct*100)
	return nil
}
