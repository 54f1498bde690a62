package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch open positions until interrupted",
	Long: `Monitor open positions on a fixed interval: refresh high-water
marks, classify losses against the circuit breaker, tighten stops and
execute whichever exit applies.

With --once a single tick runs and the command returns, which suits
cron-style scheduling. When the profile sets metrics_addr, Prometheus
metrics are served at /metrics for the lifetime of the command.

Example:
  swingtrader monitor --interval 5m
  swingtrader monitor --once`,
	RunE: runMonitor,
}

var (
	monitorInterval time.Duration
	monitorOnce     bool
)

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().DurationVarP(&monitorInterval, "interval", "i", 5*time.Minute, "time between monitoring ticks")
	monitorCmd.Flags().BoolVar(&monitorOnce, "once", false, "run a single tick and exit")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if addr := a.cfg.MetricsAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				a.log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		fmt.Printf("Serving metrics on %s/metrics\n", addr)
	}

	if err := a.engine.MonitorOnce(ctx); err != nil {
		return fmt.Errorf("monitor tick: %w", err)
	}
	if monitorOnce {
		fmt.Println("✓ Monitor tick complete")
		return nil
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	fmt.Printf("Monitoring %s every %s; Ctrl-C to stop\n", a.cfg.Strategy, monitorInterval)
	for {
		select {
		case <-sigs:
			fmt.Println("\nShutting down")
			return nil
		case <-ticker.C:
			if err := a.engine.MonitorOnce(ctx); err != nil {
				a.log.Error("monitor tick failed", zap.Error(err))
			}
		}
	}
}
