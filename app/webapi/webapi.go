// Package webapi contains the HTTP surface of the publisher: the news
// dashboard, the composer helpers and the WordPress passthrough.
package webapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/alburninet/publisher/app/ai"
	"github.com/alburninet/publisher/app/feed"
	"github.com/alburninet/publisher/app/logging"
	"github.com/alburninet/publisher/app/reader"
	"github.com/alburninet/publisher/app/store"
	"github.com/alburninet/publisher/app/wp"
)

// Rest provides routes and controllers for the HTTP API.
type Rest struct {
	Logger    *slog.Logger
	Fetcher   *feed.Fetcher
	Reader    *reader.Service
	Generator *ai.Generator
	WP        *wp.Client
	Store     store.Interface
	Profiles  []store.Profile

	Addr           string
	HandlerTimeout time.Duration
	SeoThreshold   int
	Version        string
}

// Run starts the server and blocks until the context is canceled.
func (s *Rest) Run(ctx context.Context) error {
	e := s.Routes()

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(s.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

// Routes returns the echo multiplexer with all controllers attached.
func (s *Rest) Routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	timeout := s.HandlerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	e.Use(s.requestID)
	e.Use(middleware.Recover())
	e.Use(s.logRequest)
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{Timeout: timeout}))

	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	e.GET("/health", s.health)

	api := e.Group("/api")

	api.GET("/news", s.getNews)
	api.POST("/news", s.postNews)
	api.GET("/news/dashboard", s.dashboard)
	api.POST("/news/extract", s.extract)

	api.GET("/ai/generate", s.pingGenerate)
	api.POST("/ai/generate", s.generate)

	api.POST("/seo/analyze", s.analyze)

	api.GET("/wp/posts", s.listPosts)
	api.POST("/wp/publish", s.publish)
	api.GET("/wp/media", s.listMedia)
	api.DELETE("/wp/media/:id", s.deleteMedia)
	api.POST("/wp/upload", s.upload)
	api.GET("/wp/categories", s.categories)
	api.GET("/wp/taxonomy", s.searchTaxonomy)
	api.POST("/wp/taxonomy", s.createTaxonomy)

	api.GET("/profiles", s.listProfiles)
	api.GET("/prefs/:profile", s.getPrefs)
	api.PUT("/prefs/:profile", s.putPrefs)

	api.GET("/sources", s.listSources)
	api.POST("/sources", s.addSource)
	api.DELETE("/sources/:key", s.deleteSource)

	return e
}

func (s *Rest) requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := c.Request().Header.Get(echo.HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		ctx := logging.ContextWithRequestID(c.Request().Context(), reqID)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(echo.HeaderXRequestID, reqID)

		return next(c)
	}
}

func (s *Rest) logRequest(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		s.Logger.InfoContext(c.Request().Context(), "request served",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Request().URL.Path),
			slog.Int("status", c.Response().Status),
			slog.Duration("elapsed", time.Since(start)),
		)

		return err
	}
}

func (s *Rest) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "healthy",
		"version":   s.Version,
		"remote_ai": s.Generator != nil && s.Generator.Remote(),
	})
}

// response is the envelope every endpoint answers with.
type response struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, response{OK: true, Data: data})
}

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, response{OK: false, Error: msg})
}

// upstreamFail maps client errors onto responses: a non-2xx answer and
// an unparseable one are both the upstream's fault, everything else is
// reported as-is.
func (s *Rest) upstreamFail(c echo.Context, err error) error {
	s.Logger.WarnContext(c.Request().Context(), "upstream call failed", slog.Any("err", err))

	var statusErr *wp.ErrStatus
	switch {
	case errors.As(err, &statusErr):
		return fail(c, http.StatusBadGateway,
			fmt.Sprintf("upstream status %d", statusErr.Code))
	case errors.Is(err, wp.ErrInvalidResponse), errors.Is(err, ai.ErrInvalidResponse):
		return fail(c, http.StatusBadGateway, "invalid response from upstream")
	default:
		return fail(c, http.StatusBadGateway, "upstream unavailable")
	}
}
