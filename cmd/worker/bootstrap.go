package main

import (
	"context"

	"indicatorworker/internal/config"
	"indicatorworker/internal/gateway"
	"indicatorworker/pkg/database"
)

// bootstrapGateway loads config and opens the database connection the
// migrate/backfill/list-configs subcommands share, without starting the
// worker's producer/consumer loop or its health surface.
func bootstrapGateway(ctx context.Context) (*gateway.Gateway, *config.Config, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	conn, closeDB, err := database.Open(ctx, cfg.ToDatabaseConfig())
	if err != nil {
		return nil, nil, nil, err
	}
	return gateway.New(conn.DB), cfg, closeDB, nil
}
