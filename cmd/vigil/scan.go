package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantfarer/vigil/internal/app"
	"github.com/quantfarer/vigil/internal/logger"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one buy-side scan over the configured universe",
	RunE:  runScan,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one sell check over the current portfolio",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(checkCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	application, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("assembling engine: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	result, err := application.RunScan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Printf("Scanned %d symbols, shortlisted %d\n\n", result.UniverseSize, result.Shortlisted)
	if len(result.Picks) == 0 {
		fmt.Println("No recommendations today.")
		return nil
	}

	for i, pick := range result.Picks {
		fmt.Printf("%d. %s [%s]  combined %.2f  tech %.2f", i+1, pick.Symbol, pick.Strategy,
			pick.CombinedScore, pick.TechScore)
		if pick.SentimentUsed {
			fmt.Printf("  sentiment %.1f", pick.SentimentScore)
		}
		if pick.EntryScore > 0 {
			fmt.Printf("  entry %.1f", pick.EntryScore)
		}
		fmt.Printf("  @ %.2f\n", pick.Price)
		for _, reason := range pick.Reasons {
			fmt.Printf("   - %s\n", reason)
		}
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	application, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("assembling engine: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := application.RunSellCheck(ctx)
	if err != nil {
		return fmt.Errorf("sell check failed: %w", err)
	}

	if len(report.Signals) == 0 && len(report.Holds) == 0 {
		fmt.Println("Portfolio is empty.")
		return nil
	}

	for _, sig := range report.Signals {
		fmt.Printf("SELL %s [%s] %s  pnl %+.2f%%  combined %.2f\n",
			sig.Symbol, sig.Strategy, sig.Kind.Label(), sig.PnLPct, sig.CombinedScore)
		fmt.Printf("   %s\n", sig.Reasoning)
	}
	for _, hold := range report.Holds {
		fmt.Printf("HOLD %s [%s]  pnl %+.2f%%  combined %.2f\n",
			hold.Symbol, hold.Strategy, hold.PnLPct, hold.CombinedScore)
	}
	return nil
}
