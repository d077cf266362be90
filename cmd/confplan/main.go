// Confplan aggregates a conference's session catalog, update feed, and
// public agenda into one local store and serves planning queries over it.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/confplan/confplan/internal/agenda"
	"github.com/confplan/confplan/internal/catalog"
	"github.com/confplan/confplan/internal/ical"
	"github.com/confplan/confplan/internal/migrations"
	"github.com/confplan/confplan/internal/ops"
	"github.com/confplan/confplan/internal/planner"
	"github.com/confplan/confplan/internal/rss"
	"github.com/confplan/confplan/internal/sqlite"
	"github.com/confplan/confplan/internal/syncer"
	"github.com/confplan/confplan/logger"
)

type config struct {
	Port     int    `env:"PORT, default=8080"`
	Database string `env:"DATABASE, required"`

	CatalogURL string `env:"CATALOG_URL, default=https://reinvent-planner.cloud/api/catalog"`
	FeedURL    string `env:"FEED_URL, default=https://reinvent-planner.cloud/api/feed/rss"`
	AgendaURL  string `env:"AGENDA_URL, default=https://reinvent.awsevents.com/agenda/"`

	ExportDir  string `env:"EXPORT_DIR, default=."`
	CorsHeader string `env:"CORS_HEADER, default=*"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	// Determine which logger format to use
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, nil)
	if cfg.LoggerFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	l := slog.New(logger.NewContextHandler(handler))
	slog.SetDefault(l)

	// Start the application
	if err := run(ctx, cfg); err != nil {
		slog.Error("error running", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config) error {
	slog.Info("running", "config", cfg)

	// Connect to the db
	dbx, err := sqlx.Open("sqlite", fmt.Sprintf("%s?_journal_mode=WAL", cfg.Database))
	if err != nil {
		return fmt.Errorf("error opening database: %s", err)
	}

	// Migrate, always
	if err := migrations.Run(dbx); err != nil {
		return fmt.Errorf("error migrating: %s", err)
	}

	repo := sqlite.New(dbx)
	sy := syncer.New(repo, catalog.NewClient(cfg.CatalogURL), rss.NewClient(cfg.FeedURL), agenda.NewClient(cfg.AgendaURL))
	p := planner.New(repo, sy.Catalog())
	exp := ical.New(cfg.ExportDir)

	s := ops.NewServer(ops.ServerConfig{
		Port:       cfg.Port,
		CorsHeader: cfg.CorsHeader,
	}, p, sy, exp)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Start the server
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error listening: %s", err)
		}

		return nil
	})
	g.Go(func() error {
		// Block from shutting down until the group is canceled
		<-gCtx.Done()

		downCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(downCtx); err != nil {
			slog.Error("error shutting down server", "error", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("error running: %s", err)
	}

	return nil
}
