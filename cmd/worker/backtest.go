package main

import (
	"context"
	"fmt"

	"indicatorworker/internal/backtest"
)

// runBacktest replays a stored indicator series through a threshold
// crossover strategy (the collaborator SPEC_FULL.md's Supplemented
// Features section names) and prints the resulting P&L summary. It never
// touches the producer/consumer pipeline — only the read side of the
// gateway.
func runBacktest(args []string) error {
	fs := newFlagSet("backtest")
	symbol := fs.String("symbol", "", "candle symbol, e.g. BTCUSDT")
	interval := fs.String("interval", "", "candle interval, e.g. 1h")
	name := fs.String("name", "", "indicator name, e.g. rsi")
	enter := fs.Float64("enter", 30, "enter-long threshold")
	exit := fs.Float64("exit", 50, "exit threshold")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *symbol == "" || *interval == "" || *name == "" {
		return fmt.Errorf("--symbol, --interval, and --name are all required")
	}

	ctx := context.Background()
	gw, _, closeDB, err := bootstrapGateway(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	runner := backtest.New(gw)
	summary, err := runner.Run(ctx, backtest.Config{
		Symbol:    *symbol,
		Interval:  *interval,
		Indicator: *name,
		Strategy:  backtest.ThresholdStrategy{Enter: *enter, Exit: *exit},
	})
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	fmt.Printf("trades=%d wins=%d losses=%d total_pnl=%.4f open_at_end=%v\n",
		len(summary.Trades), summary.WinCount, summary.LossCount, summary.TotalPnL, summary.OpenAtEnd)
	return nil
}
