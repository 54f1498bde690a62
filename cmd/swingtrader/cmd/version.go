package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("swingtrader version %s\n", version)
		fmt.Println("A rule-based swing trading engine for NSE equities")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
