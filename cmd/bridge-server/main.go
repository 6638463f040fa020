package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/cardtable/bridge/internal/history"
	"github.com/cardtable/bridge/internal/randutil"
	"github.com/cardtable/bridge/internal/server"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"bridge-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	History  string `long:"history" help:"SQLite file for deal history (overrides config)"`
	Seed     int64  `long:"seed" help:"Shuffle seed for reproducible deals (overrides config)"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := server.LoadServerConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.Addr != "" {
		cfg.Server.Address = CLI.Addr
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.History != "" {
		cfg.Game.HistoryPath = CLI.History
	}
	if CLI.Seed != 0 {
		cfg.Game.Seed = CLI.Seed
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	// Setup logging
	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	// Deal history: SQLite when configured, in-memory otherwise
	var store history.Store
	if cfg.Game.HistoryPath != "" {
		store, err = history.NewSQLiteStore(cfg.Game.HistoryPath)
		if err != nil {
			logger.Warn("Failed to open history database, continuing without persistence",
				"error", err, "path", cfg.Game.HistoryPath)
			store = history.NewMemoryStore()
		} else {
			logger.Info("Deal history database opened", "path", cfg.Game.HistoryPath)
		}
	} else {
		store = history.NewMemoryStore()
	}
	defer func() { _ = store.Close() }()

	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	srv := server.NewServer(cfg, logger, store, randutil.New(seed))

	logger.Info("Starting bridge server",
		"addr", cfg.GetServerAddress(),
		"trickPauseMs", cfg.Game.TrickPauseMillis)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, glCtx := errgroup.WithContext(runCtx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-glCtx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", "error", err)
		ctx.Exit(1)
	}
}
