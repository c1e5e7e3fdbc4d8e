package main

import (
	"context"
	"os"
	"os/signal"
	clts "polywatch/clients"
	"polywatch/config"
	"polywatch/internal/app"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	// Load config from environment variables (.env first if present)
	cfg := config.Load()

	logger, levelErr := newLogger(cfg.LogLevel)
	defer logger.Sync()
	if levelErr != nil {
		logger.Warn("invalid LOG_LEVEL, using info", zap.String("level", cfg.LogLevel), zap.Error(levelErr))
	}

	if result := cfg.Validate(); !result.Valid {
		logger.Fatal("invalid configuration", zap.String("errors", result.Error()))
	}

	if data, err := cfg.ToJSON(); err == nil {
		logger.Debug("effective config", zap.ByteString("config", data))
	}

	logger.Info("instantiating clients")
	clients := clts.NewClients(logger, cfg)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	runner := app.NewRunner(clients, cfg)
	logger.Info("starting monitor",
		zap.String("instance", runner.InstanceID()),
		zap.String("commit", app.BuildCommit),
	)
	if err := runner.Run(ctx); err != nil {
		logger.Fatal("runner failed", zap.Error(err))
	}
}

// newLogger builds a production logger at the given level. An unknown level
// falls back to info and is returned as the error.
func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()

	var levelErr error
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			levelErr = err
		} else {
			zcfg.Level = lvl
		}
	}

	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	return logger, levelErr
}
