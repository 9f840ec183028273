// Package app wires discovery, extraction, duplicate tracking and dispatch
// into one sequential harvesting run.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/config"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/crawler"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/domain"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/fingerprint"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/logger"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/tracker"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/pkg/providers"
	"github.com/SASINDU20013d/newsfirst-telegram-bot/pkg/publishers"
)

// Extractor turns a candidate URL into an article.
type Extractor interface {
	Extract(ctx context.Context, cfg providers.Provider, articleURL string) (domain.Article, error)
}

// App runs one harvest cycle for a single provider.
type App struct {
	cfg       config.Config
	registry  providers.DiscovererRegistry
	extractor Extractor
	tracker   *tracker.Tracker
	pubs      []publishers.Publisher
	log       logger.Logger
}

// New wires an App. Nil collaborators fall back to production defaults.
func New(cfg config.Config, registry providers.DiscovererRegistry, extractor Extractor, trk *tracker.Tracker, pubs []publishers.Publisher, log logger.Logger) *App {
	if log == nil {
		log = logger.NopLogger{}
	}
	if registry == nil {
		registry = providers.DefaultDiscovererRegistry(providers.DefaultHTTPClient())
	}
	if extractor == nil {
		extractor = crawler.NewExtractor(nil, log)
	}
	if trk == nil {
		trk = tracker.NewTracker(nil, 0, log)
	}
	return &App{
		cfg:       cfg,
		registry:  registry,
		extractor: extractor,
		tracker:   trk,
		pubs:      pubs,
		log:       log,
	}
}

// Run harvests articles published on day and dispatches the unseen ones.
// Per-candidate failures are counted, not returned; the error is non-nil
// only when discovery itself fails.
func (a *App) Run(ctx context.Context, day time.Time) (domain.RunSummary, error) {
	summary := domain.RunSummary{Date: day.Format("2006-01-02")}

	a.tracker.Load()
	a.tracker.Prune()
	summary.Tracked = a.tracker.Count()
	a.log.InfoObj("tracking store ready", "run_store_ready", map[string]any{
		"tracked":   summary.Tracked,
		"retention": a.cfg.Retention().String(),
	})

	discoverer, err := a.registry.DiscovererFor(a.cfg.Provider)
	if err != nil {
		return summary, err
	}

	candidates, err := discoverer.Discover(ctx, a.cfg.Provider, day)
	if err != nil {
		return summary, fmt.Errorf("discover articles for %s: %w", summary.Date, err)
	}
	summary.Discovered = len(candidates)
	a.log.InfoObj("discovered candidate articles", "run_discovered", map[string]any{
		"provider": a.cfg.Provider.ID,
		"date":     summary.Date,
		"count":    summary.Discovered,
	})

	for i, candidate := range candidates {
		a.processCandidate(ctx, candidate, i+1, len(candidates), &summary)
	}

	// The final prune and persist happen even when nothing was dispatched,
	// including runs that discovered no candidates at all.
	a.tracker.Prune()
	if err := a.tracker.Persist(); err != nil {
		a.log.ErrorObj("tracking store persist failed", "run_persist_error", map[string]any{
			"error": err.Error(),
		})
	}
	summary.Tracked = a.tracker.Count()

	a.log.InfoObj("run complete", "run_summary", map[string]any{
		"date":       summary.Date,
		"discovered": summary.Discovered,
		"sent":       summary.Sent,
		"skipped":    summary.Skipped,
		"errored":    summary.Errored,
		"tracked":    summary.Tracked,
	})
	return summary, nil
}

func (a *App) processCandidate(ctx context.Context, candidate string, idx, total int, summary *domain.RunSummary) {
	position := fmt.Sprintf("%d/%d", idx, total)

	art, err := a.extractor.Extract(ctx, a.cfg.Provider, candidate)
	if err != nil {
		summary.Errored++
		a.log.WarnObj("article extraction failed", "run_extract_error", map[string]any{
			"url":      candidate,
			"position": position,
			"error":    err.Error(),
		})
		return
	}

	fp := fingerprint.Content(art.Title, art.Body)
	if a.cfg.Fingerprint.Length > 0 {
		fp = fingerprint.Truncate(fp, a.cfg.Fingerprint.Length)
	}

	if seen, reason := a.tracker.Lookup(art.URL, fp); seen {
		summary.Skipped++
		a.log.InfoObj("skipping duplicate article", "run_skip_duplicate", map[string]any{
			"url":      art.URL,
			"title":    art.Title,
			"position": position,
			"reason":   reason,
		})
		return
	}

	evt := publishers.NewEvent(a.cfg.Provider.ID, art, fp)
	for _, pub := range a.pubs {
		if err := pub.Publish(ctx, evt); err != nil {
			summary.Errored++
			a.log.ErrorObj("article dispatch failed, leaving it untracked", "run_dispatch_error", map[string]any{
				"url":       art.URL,
				"position":  position,
				"publisher": pub.ID(),
				"error":     err.Error(),
			})
			return
		}
	}

	a.tracker.MarkSent(art.URL, fp, art.Title)
	if err := a.tracker.Persist(); err != nil {
		a.log.ErrorObj("tracking store persist failed", "run_persist_error", map[string]any{
			"url":   art.URL,
			"error": err.Error(),
		})
	}
	summary.Sent++
	a.log.InfoObj("article dispatched", "run_sent", map[string]any{
		"url":      art.URL,
		"title":    art.Title,
		"position": position,
	})
}
