package main

import (
	"context"
	"fmt"

	"indicatorworker/internal/config"
	"indicatorworker/internal/gateway"
	"indicatorworker/pkg/database"
)

// runMigrate ensures the gateway-owned tables exist, then runs any pending
// versioned migrations under migrations/ — bootstrap SQL that creates the
// local/dev binance_candles fixture table (the migrations create tables and
// indexes only; they insert no candle or indicator_config rows), per
// SPEC_FULL.md's CLI surface.
func runMigrate() error {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	conn, closeDB, err := database.Open(ctx, cfg.ToDatabaseConfig())
	if err != nil {
		return err
	}
	defer closeDB()

	if err := gateway.EnsureSchema(conn.DB); err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	handler := database.NewMigrationHandler(conn, cfg.ToDatabaseConfig())
	if err := handler.ApplyMigrations(); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	fmt.Println("migrations applied")
	return nil
}
