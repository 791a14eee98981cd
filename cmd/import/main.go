// Command import merges games from a CSV written by the export command into
// the cache. Existing records keep fields the CSV leaves empty.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"gamenight/internal/app"
	"gamenight/internal/export"
	"gamenight/pkg/utils"
)

func main() {
	var (
		configPath = flag.String("config", "gamenight.yaml", "path to YAML config")
		in         = flag.String("in", "data/games.csv", "input CSV path")
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	f, err := os.Open(*in)
	if err != nil {
		logger.Fatal("open input", zap.String("in", *in), zap.Error(err))
	}
	defer f.Close()

	games, err := export.ReadCSV(f)
	if err != nil {
		logger.Fatal("read csv", zap.String("in", *in), zap.Error(err))
	}

	counts := map[string]int{}
	for _, g := range games {
		_, outcome, err := a.Games.Save(ctx, g)
		if err != nil {
			logger.Warn("import failed", zap.String("game", g.ID), zap.Error(err))
			counts["failed"]++
			continue
		}
		counts[outcome]++
	}
	logger.Info("import done",
		zap.String("in", *in),
		zap.Int("rows", len(games)),
		zap.Any("outcomes", counts),
	)
}
