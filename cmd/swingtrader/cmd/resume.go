package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Clear today's trading halt",
	RunE:  runResume,
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.ClearHalt(context.Background(), time.Now()); err != nil {
		return fmt.Errorf("clear halt: %w", err)
	}

	fmt.Println("✓ Trading resumed")
	return nil
}
