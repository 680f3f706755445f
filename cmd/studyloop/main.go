// Command studyloop hosts the spaced repetition core: it loads
// configuration, runs database migrations, and wires the scheduling and
// session services against PostgreSQL-backed stores.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hazelview/studyloop/internal/config"
	"github.com/hazelview/studyloop/internal/domain/srs"
	"github.com/hazelview/studyloop/internal/platform/clock"
	"github.com/hazelview/studyloop/internal/platform/fsrsbridge"
	"github.com/hazelview/studyloop/internal/platform/logger"
	"github.com/hazelview/studyloop/internal/platform/postgres"
	"github.com/hazelview/studyloop/internal/service/review"
	"github.com/hazelview/studyloop/internal/service/session"
)

func main() {
	if err := run(); err != nil {
		slog.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log := logger.Setup(cfg.Logger)
	ctx := logger.WithContext(context.Background(), log)

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := postgres.MigrateUp(db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	log.Info("database ready")

	scheduler, err := srs.NewWithRetention(fsrsbridge.New(), cfg.Scheduler.TargetRetention)
	if err != nil {
		return fmt.Errorf("building scheduler: %w", err)
	}

	deckStore := postgres.NewDeckStore(db)
	cardStore := postgres.NewCardStore(db)
	reviewStore := postgres.NewReviewStore(db)
	summaryStore := postgres.NewSummaryStore(db)

	reviews, err := review.NewService(scheduler, cardStore, deckStore, reviewStore, log)
	if err != nil {
		return fmt.Errorf("building review service: %w", err)
	}

	planner, err := session.NewPlanner(cardStore, summaryStore, cfg.Session.ShuffleNew, log)
	if err != nil {
		return fmt.Errorf("building session planner: %w", err)
	}

	if _, err := session.NewLoopService(planner, reviews, deckStore, summaryStore, clock.System(), log); err != nil {
		return fmt.Errorf("building session loop: %w", err)
	}

	log.Info("studyloop ready",
		slog.Float64("target_retention", scheduler.TargetRetention()),
		slog.Bool("shuffle_new", cfg.Session.ShuffleNew))
	return nil
}
