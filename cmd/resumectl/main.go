package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/resume-extractor/internal/adapters/cli"
	"github.com/kirillkom/resume-extractor/internal/bootstrap"
	"github.com/kirillkom/resume-extractor/internal/config"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	build := func(cfg config.Config, logger *slog.Logger) (cli.Services, func(), error) {
		app, err := bootstrap.New(ctx, cfg, "resumectl", logger)
		if err != nil {
			return cli.Services{}, nil, err
		}
		return cli.Services{
			Extractor: app.Extractor,
			Ingestor:  app.IngestUC,
			Supported: app.Decoders.Supported,
		}, app.Close, nil
	}

	if err := cli.NewRootCommand(version, build).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
