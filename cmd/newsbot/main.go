// Package main runs one harvesting cycle: discover articles published on
// the target date, extract their content and dispatch unseen ones.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/app"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/config"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/crawler"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/logger"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/tracker"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/pkg/httpclient"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/pkg/providers"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/pkg/publishers"
)

const (
	exitDiscovery = 1
	exitUsage     = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Usage: newsbot [flags] [YYYY-MM-DD]")
		flag.PrintDefaults()
		return exitUsage
	}

	// A local .env is optional; deployed environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		return exitUsage
	}
	if flag.NArg() == 1 {
		cfg.TargetDate = flag.Arg(0)
	}

	day, err := cfg.TargetDay(time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitUsage
	}

	log, err := logger.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		return exitUsage
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pubCfgs []publishers.PublisherConfig
	if cfg.PublishersFile != "" {
		reg, err := publishers.LoadRegistry(cfg.PublishersFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load publishers failed: %v\n", err)
			return exitUsage
		}
		pubCfgs = reg.Enabled()
	} else {
		pubCfgs = []publishers.PublisherConfig{
			publishers.DefaultTelegramConfig(cfg.Telegram.BotToken, cfg.Telegram.ChatID),
		}
	}

	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), pubCfgs, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build publishers failed: %v\n", err)
		return exitUsage
	}

	var backend tracker.Backend
	switch cfg.Tracker.Backend {
	case config.BackendBolt:
		backend = tracker.NewBoltBackend(cfg.Tracker.Path, log)
	default:
		backend = tracker.NewFileBackend(cfg.Tracker.Path, log)
	}
	trk := tracker.NewTracker(backend, cfg.Retention(), log)

	client := httpclient.NewRestyClient(cfg.HTTPTimeout())
	bot := app.New(cfg, providers.DefaultDiscovererRegistry(client), crawler.NewExtractor(client, log), trk, pubs, log)

	summary, err := bot.Run(ctx, day)
	if err != nil {
		log.ErrorObj("harvest run failed", "main_run_error", map[string]any{
			"date":  summary.Date,
			"error": err.Error(),
		})
		fmt.Fprintf(os.Stderr, "failed to discover articles: %v\n", err)
		return exitDiscovery
	}

	fmt.Printf("Sent: %d | Skipped: %d | Errors: %d (discovered %d, tracking %d)\n",
		summary.Sent, summary.Skipped, summary.Errored, summary.Discovered, summary.Tracked)
	return 0
}
