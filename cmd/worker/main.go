// cmd/worker is the indicator worker's entrypoint: subcommand dispatch over
// start/stop/status/migrate/backfill/list-configs/backtest, wiring config, database,
// redis, the persistence gateway, the completeness cache, the in-flight
// lease, the kernel registry, and the producer/consumer worker into a
// single running process.
//
// Grounded on cmd/trading/app/app.go's App.NewApp/Run composition. No CLI
// framework is used: the example pack carries neither spf13/cobra nor
// urfave/cli anywhere, so subcommand dispatch is a stdlib flag/os.Args
// switch, consistent with using a third-party library only where the pack
// shows one for the concern.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"indicatorworker/internal/completeness"
	"indicatorworker/internal/config"
	"indicatorworker/internal/gateway"
	"indicatorworker/internal/kernels"
	"indicatorworker/internal/lease"
	"indicatorworker/internal/worker"
	"indicatorworker/pkg/cache"
	"indicatorworker/pkg/database"
	"indicatorworker/pkg/log"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "start":
		err = dispatchStart(os.Args[2:])
	case "stop":
		err = runStop()
	case "status":
		err = runStatusCLI()
	case "migrate":
		err = runMigrate()
	case "backfill":
		err = runBackfill(os.Args[2:])
	case "list-configs":
		err = runListConfigs()
	case "backtest":
		err = runBacktest(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: worker <command> [flags]

commands:
  start [--concurrency N] [--detached]   run the producer/consumer worker
  stop                                   signal a detached worker to shut down
  status                                 report whether a detached worker is running
  migrate                                apply pending schema/fixture migrations
  backfill --symbol S --interval I --name N   force one job now, bypassing cache and lease
  list-configs                           print the enabled indicator_config work list
  backtest --symbol S --interval I --name N [--enter N] [--exit N]
                                          replay a threshold strategy over a stored indicator series`)
}

func dispatchStart(args []string) error {
	fs := newFlagSet("start")
	concurrency := fs.Int("concurrency", 0, "override worker concurrency (0 = hardware threads)")
	detached := fs.Bool("detached", false, "fork into the background and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *detached {
		return startDetached(args)
	}
	return runStart(*concurrency)
}

// startDetached re-execs the current binary with `start` (sans --detached)
// as a background child, writes its pid, and returns immediately — the
// parent never calls Run itself.
func startDetached(args []string) error {
	filtered := make([]string, 0, len(args)+1)
	filtered = append(filtered, "start")
	for _, a := range args {
		if a != "--detached" {
			filtered = append(filtered, a)
		}
	}
	cmd := exec.Command(os.Args[0], filtered...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start detached worker: %w", err)
	}
	pid := cmd.Process.Pid
	if err := os.WriteFile(pidFilePath(), []byte(fmt.Sprintf("%d", pid)), 0644); err != nil {
		return fmt.Errorf("started detached worker (pid %d) but failed to write pid file: %w", pid, err)
	}
	_ = cmd.Process.Release()
	fmt.Printf("worker started, pid %d\n", pid)
	return nil
}

// runStart wires every component and blocks until an interrupt or SIGTERM,
// then lets worker.Run drain in-flight jobs before returning (spec.md §5
// shutdown semantics).
func runStart(concurrencyOverride int) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	log.InitWithConfig(&log.Config{Level: cfg.Worker.LogLevel, LogDir: cfg.Worker.LogDir})

	if concurrencyOverride > 0 {
		cfg.Worker.Concurrency = concurrencyOverride
	}
	concurrency := cfg.Worker.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbCfg := cfg.ToDatabaseConfig()
	dbCfg.MaxOpenConnections = 2 * concurrency
	conn, closeDB, err := database.Open(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("database open: %w", err)
	}
	defer closeDB()

	if err := gateway.EnsureSchema(conn.DB); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	gw := gateway.New(conn.DB)

	redisClient := cache.NewRedisStore(cfg.ToRedisConfig())
	defer redisClient.Close()

	ls := lease.New(redisClient)
	complCache := completeness.New(32)
	registry := kernels.NewRegistry()

	w := worker.New(worker.Config{
		Concurrency:     concurrency,
		CompletenessTTL: time.Duration(cfg.Worker.CompletenessCacheMinutes) * time.Minute,
	}, gw, complCache, ls, registry)

	if err := writePIDFile(); err != nil {
		log.StageWarn("worker", "failed to write pid file, stop/status CLI will not find this process", log.Fields{"error": err.Error()})
	}
	defer removePIDFile()

	router := newRouter(&statusSource{startedAt: time.Now(), cache: complCache})
	srv := &httpServer{addr: ":" + cfg.Server.Port, handler: router}
	srvErrors := srv.start()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case err := <-srvErrors:
			if err != nil {
				log.StageError("http", "status server failed", err, nil)
			}
		case <-ctx.Done():
		}
	}()

	log.Stage("worker", "starting", log.Fields{"concurrency": concurrency, "port": cfg.Server.Port})

	go func() {
		<-shutdown
		log.Stage("worker", "shutdown signal received, draining", nil)
		srv.stop()
		cancel()
	}()

	w.Run(ctx)
	return nil
}
