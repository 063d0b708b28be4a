// PID-file-based process lifecycle for `start --detached`, `stop`, and
// `status`, grounded on cmd/trading/app/app.go's signal handling and
// graceful-shutdown shape (os/signal, syscall.SIGTERM, a select over a
// server-errors channel and the shutdown signal).
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const (
	pidFileName     = "indicator_worker.pid"
	statusLogLines  = 20
	killGracePeriod = 5 * time.Second
)

func pidFilePath() string {
	if dir := os.Getenv("WORKER_RUN_DIR"); dir != "" {
		return dir + "/" + pidFileName
	}
	return pidFileName
}

// logDirForStatus follows pidFilePath's pattern with its own WORKER_LOG_DIR
// override, using the same "logs" default as pkg/log.DefaultConfig.
func logDirForStatus() string {
	if dir := os.Getenv("WORKER_LOG_DIR"); dir != "" {
		return dir
	}
	return "logs"
}

func currentLogFilePath() string {
	today := time.Now().Format("2006-01-02")
	return logDirForStatus() + "/" + fmt.Sprintf("indicator_worker_%s.log", today)
}

// tailLines returns up to the last n lines of path. Log files here are
// bounded daily files, not append-forever streams, so reading the whole
// file is cheap enough to skip a seek-from-end implementation.
func tailLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	return lines, scanner.Err()
}

func writePIDFile() error {
	return os.WriteFile(pidFilePath(), []byte(strconv.Itoa(os.Getpid())), 0644)
}

func removePIDFile() {
	_ = os.Remove(pidFilePath())
}

func readPIDFile() (int, error) {
	b, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("corrupt pid file: %w", err)
	}
	return pid, nil
}

// processAlive reports whether pid names a live process, using the
// kill-with-signal-0 probe (no-op signal, error iff the process is gone).
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// runStop sends SIGTERM to the pid recorded in the pid file, matching the
// same signal the foregrounded process already handles via signal.Notify in
// runStart. If the process is still alive after killGracePeriod, it falls
// back to SIGKILL (spec.md §6: "on failure, force-kill").
func runStop() error {
	pid, err := readPIDFile()
	if err != nil {
		return fmt.Errorf("no running worker found: %w", err)
	}
	if !processAlive(pid) {
		removePIDFile()
		return fmt.Errorf("pid %d is not running, removed stale pid file", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal pid %d: %w", pid, err)
	}
	fmt.Printf("sent SIGTERM to pid %d\n", pid)

	deadline := time.Now().Add(killGracePeriod)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			removePIDFile()
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}

	fmt.Printf("pid %d still alive after %s, force-killing\n", pid, killGracePeriod)
	if err := proc.Signal(syscall.SIGKILL); err != nil {
		return fmt.Errorf("failed to force-kill pid %d: %w", pid, err)
	}
	removePIDFile()
	return nil
}

// runStatusCLI reports on the detached worker's liveness via its pid file
// (distinct from the /status HTTP route, which reports on a live,
// in-process worker's cache occupancy), plus the pid file's age as an
// uptime proxy (writePIDFile is only ever called once at start) and a tail
// of the current day's log file (spec.md §6: "running/PID/uptime and a
// tail of recent logs").
func runStatusCLI() error {
	pid, err := readPIDFile()
	if err != nil {
		fmt.Println("worker is not running (no pid file)")
		return nil
	}
	if !processAlive(pid) {
		fmt.Printf("worker is not running (stale pid file for %d)\n", pid)
		return nil
	}

	fmt.Printf("worker is running, pid %d\n", pid)
	if info, err := os.Stat(pidFilePath()); err == nil {
		fmt.Printf("uptime: %s (since %s)\n", time.Since(info.ModTime()).Round(time.Second), info.ModTime().Format(time.RFC3339))
	}

	logPath := currentLogFilePath()
	lines, err := tailLines(logPath, statusLogLines)
	if err != nil {
		fmt.Printf("log tail unavailable (%s): %v\n", logPath, err)
		return nil
	}
	fmt.Printf("-- last %d lines of %s --\n", len(lines), logPath)
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
