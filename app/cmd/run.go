// Package cmd contains commands for the application.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-pkgz/requester"
	"golang.org/x/sync/errgroup"

	"github.com/alburninet/publisher/app/ai"
	"github.com/alburninet/publisher/app/feed"
	"github.com/alburninet/publisher/app/logging"
	"github.com/alburninet/publisher/app/reader"
	"github.com/alburninet/publisher/app/store"
	"github.com/alburninet/publisher/app/webapi"
	"github.com/alburninet/publisher/app/wp"
)

// Run is a command to run the publisher server.
type Run struct {
	Server struct {
		Addr    string        `long:"addr" env:"ADDR" default:":8080" description:"address to listen on"`
		Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"30s" description:"timeout for handlers"`
	} `group:"server" namespace:"server" env-namespace:"SERVER"`

	WP struct {
		BaseURL     string        `long:"base-url" env:"BASE_URL" description:"wordpress site root"`
		User        string        `long:"user" env:"USER" description:"wordpress user"`
		AppPassword string        `long:"app-password" env:"APP_PASSWORD" description:"wordpress application password"`
		Timeout     time.Duration `long:"timeout" env:"TIMEOUT" default:"30s" description:"timeout for wordpress calls"`
	} `group:"wp" namespace:"wp" env-namespace:"WP"`

	AI struct {
		BaseURL   string        `long:"base-url" env:"BASE_URL" description:"OpenAI-compatible endpoint"`
		Token     string        `long:"token" env:"TOKEN" description:"API token, empty switches to local drafts"`
		Model     string        `long:"model" env:"MODEL" description:"model to request"`
		MaxTokens int           `long:"max-tokens" env:"MAX_TOKENS" default:"3000" description:"max tokens per draft"`
		Timeout   time.Duration `long:"timeout" env:"TIMEOUT" default:"2m" description:"timeout for model calls"`
	} `group:"ai" namespace:"ai" env-namespace:"AI"`

	Feed struct {
		Workers   int           `long:"workers" env:"WORKERS" default:"4" description:"concurrent source fetches"`
		PerSource int           `long:"per-source" env:"PER_SOURCE" default:"20" description:"items kept per source"`
		Timeout   time.Duration `long:"timeout" env:"TIMEOUT" default:"15s" description:"timeout per feed fetch"`
	} `group:"feed" namespace:"feed" env-namespace:"FEED"`

	SeoThreshold int    `long:"seo-threshold" env:"SEO_THRESHOLD" default:"60" description:"minimal score to publish without override"`
	StorePath    string `long:"store-path" env:"STORE_PATH" description:"parent dir for bolt files"`
	CatalogPath  string `long:"catalog" env:"CATALOG" description:"path to the sources/profiles yaml catalog"`

	Version string
}

// Execute runs the command.
func (r Run) Execute(_ []string) error {
	lg := slog.Default()

	s, err := store.NewBolt(r.StorePath)
	if err != nil {
		return fmt.Errorf("make store: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			lg.Error("close bolt store", slog.Any("err", err))
		}
	}()

	profiles, err := r.loadCatalog(lg, s)
	if err != nil {
		return err
	}

	wpClient := wp.NewClient(
		lg.With(slog.String("prefix", "wp")),
		r.loggedClient(lg, r.WP.Timeout),
		r.WP.BaseURL, r.WP.User, r.WP.AppPassword,
	)

	generator := ai.NewGenerator(
		lg.With(slog.String("prefix", "ai")),
		&http.Client{Timeout: r.AI.Timeout},
		r.AI.BaseURL, r.AI.Token, r.AI.Model, r.AI.MaxTokens,
	)
	if !generator.Remote() {
		lg.Warn("no AI token configured, drafts are built locally")
	}

	rest := &webapi.Rest{
		Logger: lg.With(slog.String("prefix", "webapi")),
		Fetcher: feed.NewFetcher(
			lg.With(slog.String("prefix", "feed")),
			&http.Client{Timeout: r.Feed.Timeout},
			r.Feed.Workers, r.Feed.PerSource,
		),
		Reader: reader.NewService(
			lg.With(slog.String("prefix", "reader")),
			&http.Client{Timeout: r.Feed.Timeout},
			reader.NewExtractor(false),
		),
		Generator: generator,
		WP:        wpClient,
		Store:     s,
		Profiles:  profiles,

		Addr:           r.Server.Addr,
		HandlerTimeout: r.Server.Timeout,
		SeoThreshold:   r.SeoThreshold,
		Version:        r.Version,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		select {
		case sig := <-sig:
			lg.Warn("caught signal, stopping", slog.String("signal", sig.String()))
			stop()
			return ctx.Err()
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	ewg.Go(func() error {
		lg.Info("starting server", slog.String("addr", r.Server.Addr))
		if err := rest.Run(ctx); err != nil {
			return fmt.Errorf("run server: %w", err)
		}
		lg.Warn("server stopped")
		return nil
	})

	if err := ewg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// loadCatalog seeds the store with catalog sources and returns the
// profiles. Without a catalog a single admin profile is provided.
func (r Run) loadCatalog(lg *slog.Logger, s store.Interface) ([]store.Profile, error) {
	if r.CatalogPath == "" {
		return []store.Profile{{ID: "admin", Label: "Admin", WPUserID: 1, Role: store.RoleAdmin}}, nil
	}

	catalog, err := store.LoadCatalog(r.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	ctx := context.Background()
	for _, src := range catalog.Sources {
		if err := s.PutSource(ctx, src); err != nil {
			return nil, fmt.Errorf("seed source %q: %w", src.Key, err)
		}
	}
	lg.Info("catalog loaded",
		slog.Int("sources", len(catalog.Sources)),
		slog.Int("profiles", len(catalog.Profiles)),
	)

	return catalog.Profiles, nil
}

func (r Run) loggedClient(lg *slog.Logger, timeout time.Duration) *http.Client {
	rq := requester.New(
		http.Client{Timeout: timeout},
		logging.LoggingRoundTripper(
			lg.With(slog.String("prefix", "http")),
			logging.RoundTripperOpts{
				Level:         slog.LevelDebug,
				SecretHeaders: []string{"Authorization"},
			},
		),
	)
	return rq.Client()
}
