package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/giygas/nginx-status/config"
	"github.com/giygas/nginx-status/logging"
	"github.com/giygas/nginx-status/scheduler"
	"github.com/giygas/nginx-status/server"
	"github.com/giygas/nginx-status/stats"
	"github.com/joho/godotenv"
)

// loadEnv reads .env from the working directory, then from the executable directory
func loadEnv() error {
	if err := godotenv.Load(); err == nil {
		return nil
	}

	ex, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	exPath := filepath.Dir(ex)
	if err := os.Chdir(exPath); err != nil {
		return fmt.Errorf("failed to change directory: %w", err)
	}

	// the environment alone is a valid configuration
	_ = godotenv.Load()
	return nil
}

func main() {
	if err := loadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	logging.InitLogger(cfg.LogDir, cfg.Env, cfg.LogLevel, cfg.LogRetentionWeeks, cfg.MaxLogFileSize)
	defer logging.Close()

	tracker := stats.NewTracker()
	store := stats.NewSnapshotStore(net.JoinHostPort(cfg.Address, cfg.Port))

	srv, err := server.NewServer(cfg, tracker, store)
	if err != nil {
		logging.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	sched := scheduler.NewScheduler(store, srv.Source(), srv.Limiter(), cfg.SnapshotInterval)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-quit:
	case err := <-serverErr:
		logging.Error("Server failed to start", "error", err)
		sched.Stop()
		os.Exit(1)
	}

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown failed", "error", err)
	}
}
