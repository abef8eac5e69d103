package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/google/subcommands"
	"github.com/xtbdash/invest_dash/config"
	"github.com/xtbdash/invest_dash/data/storage"
	"github.com/xtbdash/invest_dash/internal/parser/xlsxParser"
	"github.com/xtbdash/invest_dash/internal/service/portfolioService"
	"github.com/xtbdash/invest_dash/internal/store"
	"github.com/xtbdash/invest_dash/internal/transport/cli"
	"github.com/xtbdash/invest_dash/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx := utils.CtxWithNewRqID(context.Background())

	backend, closeStorage, err := storage.New(cfg)
	if err != nil {
		slog.Error("can't init storage", slog.String("err", err.Error()))
		return 1
	}
	defer func() {
		if err := closeStorage(); err != nil {
			slog.Error("can't close storage", slog.String("err", err.Error()))
		}
	}()

	portfolioStore, err := store.New(ctx, backend)
	if err != nil {
		slog.Error("can't load portfolio store", slog.String("err", err.Error()))
		return 1
	}

	reportParser := xlsxParser.New()

	portfolioSrv := portfolioService.New(cfg, portfolioStore, reportParser)

	cmder := subcommands.NewCommander(flag.CommandLine, "invest_dash")
	cmder.Register(cmder.HelpCommand(), "")
	cmder.Register(cmder.FlagsCommand(), "")
	cli.Register(cmder, portfolioSrv, cfg.Backup.Interval)

	flag.Parse()

	return int(cmder.Execute(ctx))
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
