package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/eliseohh/runnercatcherbot/internal/bot"
	"github.com/eliseohh/runnercatcherbot/internal/config"
	"github.com/eliseohh/runnercatcherbot/internal/logging"
	"github.com/eliseohh/runnercatcherbot/internal/store"
	"go.uber.org/zap"
)

func main() {
	fmt.Println("Runner Catcher Bot")

	// 1. Config (fatal before anything touches the network)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fatal: %v", err)
	}

	// 2. Logger
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Fatal: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("bot stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

// run owns every resource that needs a deferred close, so it returns
// instead of exiting.
func run(cfg *config.Config, logger *zap.Logger) error {
	// 3. Launch log (optional)
	var launches bot.LaunchRecorder
	if cfg.DBPath != "" {
		db, err := store.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("launch log %s: %w", cfg.DBPath, err)
		}
		defer db.Close()
		launches = db
	} else {
		logger.Info("launch log disabled")
	}

	// 4. Bot
	b, err := bot.New(bot.Config{
		Token:       cfg.Token,
		WebAppURL:   cfg.WebAppURL,
		PollTimeout: cfg.PollTimeout,
	}, launches, logger)
	if err != nil {
		return fmt.Errorf("bot init failed: %w", err)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		logger.Info("shutting down", zap.String("signal", sig.String()))
		b.Stop()
	}()

	fmt.Println("🤖 Bot Online. Listening...")
	b.Start()
	return nil
}
