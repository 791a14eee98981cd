package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"gamenight/internal/app"
	"gamenight/internal/export"
	"gamenight/pkg/utils"
)

func main() {
	var (
		configPath = flag.String("config", "gamenight.yaml", "path to YAML config")
		out        = flag.String("out", "data/games.xlsx", "output path; the extension picks the format (.csv or .xlsx)")
	)
	flag.Parse()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Dev())
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	if err := run(ctx, a, *out); err != nil {
		logger.Fatal("export failed", zap.String("out", *out), zap.Error(err))
	}
	logger.Info("export written", zap.String("out", *out))
}

func run(ctx context.Context, a *app.App, outPath string) error {
	format := strings.ToLower(filepath.Ext(outPath))
	if format != ".csv" && format != ".xlsx" {
		return fmt.Errorf("unsupported output format %q", format)
	}

	games, err := export.LoadGames(ctx, a.Store)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if format == ".csv" {
		err = export.WriteCSV(f, games)
	} else {
		collections, lerr := export.LoadCollections(ctx, a.Store)
		if lerr != nil {
			return lerr
		}
		err = export.WriteXLSX(f, games, collections)
	}
	if err != nil {
		return err
	}
	return f.Close()
}
