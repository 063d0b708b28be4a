package main

import (
	"context"
	"fmt"
)

// runListConfigs prints the enabled indicator_config work list the next
// producer sweep would enumerate (SPEC_FULL.md's supplemented CLI surface).
func runListConfigs() error {
	ctx := context.Background()
	gw, _, closeDB, err := bootstrapGateway(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	configs, err := gw.EnumerateEnabledConfigs(ctx)
	if err != nil {
		return fmt.Errorf("enumerate enabled configs: %w", err)
	}
	if len(configs) == 0 {
		fmt.Println("no enabled indicator_config rows")
		return nil
	}
	fmt.Printf("%-12s %-8s %-10s %-20s %s\n", "SYMBOL", "INTERVAL", "KIND", "NAME", "PARAMETERS")
	for _, c := range configs {
		fmt.Printf("%-12s %-8s %-10s %-20s %v\n", c.Symbol, c.Interval, c.Kind, c.Name, c.Params)
	}
	return nil
}
