package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantfarer/vigil/internal/config"
	"github.com/quantfarer/vigil/internal/indicator"
	"github.com/quantfarer/vigil/internal/logger"
	"github.com/quantfarer/vigil/internal/marketdata/yahoo"
	"github.com/quantfarer/vigil/internal/scoring"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "Print the technical analysis for one symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	symbol := strings.ToUpper(args[0])

	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := yahoo.New()
	bars, err := client.Bars(ctx, symbol, cfg.MarketData.Lookback)
	if err != nil {
		return fmt.Errorf("fetching history for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return fmt.Errorf("no price history for %s", symbol)
	}

	snap := indicator.Compute(bars)
	breakdown := scoring.TechnicalBreakdown(snap)
	tech := scoring.Technical(bars)
	bearish := scoring.DetectBearish(bars)
	validator := newValidator(cfg)
	scalp := validator.Validate(bars)

	fmt.Printf("%s  close %.2f\n\n", symbol, snap.Close)
	fmt.Printf("Technical score: %.2f / 100\n", tech)
	fmt.Printf("  RSI        %5.1f / 25\n", breakdown.RSI)
	fmt.Printf("  MACD       %5.1f / 25\n", breakdown.MACD)
	fmt.Printf("  Bollinger  %5.1f / 20\n", breakdown.Bollinger)
	fmt.Printf("  MA trend   %5.1f / 20\n", breakdown.MA)
	fmt.Printf("  Volume     %5.1f / 10\n", breakdown.Volume)

	fmt.Printf("\nScalp entry: %.1f / 100", scalp.EntryScore)
	if scalp.AllConditionsPass {
		fmt.Print("  (all gates pass)")
	}
	fmt.Println()
	printGate("RSI in band", scalp.Gates.RSIOK)
	printGate("MACD positive", scalp.Gates.MACDPositive)
	printGate("MACD improving", scalp.Gates.MACDImproving)
	printGate("above MA20", scalp.Gates.AboveMA20)
	printGate("above MA50", scalp.Gates.AboveMA50)
	printGate("volume confirmed", scalp.Gates.VolumeOK)

	if len(bearish.Signals) > 0 {
		fmt.Printf("\nBearish signals (%d high):\n", bearish.HighSeverityCount)
		for _, sig := range bearish.Signals {
			fmt.Printf("  [%s] %s: %s\n", sig.Severity, sig.Kind, sig.Description)
		}
	} else {
		fmt.Println("\nNo bearish signals.")
	}

	return nil
}

func newValidator(cfg *config.Config) *scoring.ScalpValidator {
	return scoring.NewScalpValidator(cfg.Scalp.RSIMin, cfg.Scalp.RSIMax, cfg.Scalp.VolumeMultiplier)
}

func printGate(name string, ok bool) {
	mark := " "
	if ok {
		mark = "x"
	}
	fmt.Printf("  [%s] %s\n", mark, name)
}
