package main

import (
	"context"
	"fmt"

	"indicatorworker/internal/completeness"
	"indicatorworker/internal/domain"
	"indicatorworker/internal/kernels"
	"indicatorworker/internal/lease"
	"indicatorworker/internal/worker"
	"indicatorworker/pkg/cache"
)

// runBackfill forces one job to run right now, looked up from
// indicator_config by (symbol, interval, name), bypassing both the
// completeness cache and the in-flight lease (SPEC_FULL.md's supplemented
// CLI surface: "force one job now").
func runBackfill(args []string) error {
	fs := newFlagSet("backfill")
	symbol := fs.String("symbol", "", "candle symbol, e.g. BTCUSDT")
	interval := fs.String("interval", "", "candle interval, e.g. 1h")
	name := fs.String("name", "", "indicator name, e.g. rsi")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *symbol == "" || *interval == "" || *name == "" {
		return fmt.Errorf("--symbol, --interval, and --name are all required")
	}

	ctx := context.Background()
	gw, cfg, closeDB, err := bootstrapGateway(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	configs, err := gw.EnumerateEnabledConfigs(ctx)
	if err != nil {
		return fmt.Errorf("enumerate enabled configs: %w", err)
	}
	var match *domain.IndicatorConfig
	for i := range configs {
		c := configs[i]
		if c.Symbol == *symbol && c.Interval == *interval && c.Name == *name {
			match = &c
			break
		}
	}
	if match == nil {
		return fmt.Errorf("no enabled indicator_config row for %s/%s/%s", *symbol, *interval, *name)
	}

	redisClient := cache.NewRedisStore(cfg.ToRedisConfig())
	defer redisClient.Close()
	ls := lease.New(redisClient)
	complCache := completeness.New(8)
	registry := kernels.NewRegistry()

	w := worker.New(worker.Config{Concurrency: 1}, gw, complCache, ls, registry)
	job := domain.Job{Fingerprint: match.Fingerprint(), Kind: match.Kind}
	w.ForceProcess(ctx, job)
	fmt.Printf("backfilled %s\n", job.Fingerprint.Key())
	return nil
}
