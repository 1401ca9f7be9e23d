package webapi

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/alburninet/publisher/app/feed"
	"github.com/alburninet/publisher/app/reader"
	"github.com/alburninet/publisher/app/store"
)

// sources returns the default catalog merged with the stored custom
// sources. Stored sources override defaults on key collision.
func (s *Rest) sources(c echo.Context) []store.FeedSource {
	result := store.DefaultSources()

	stored, err := s.Store.ListSources(c.Request().Context())
	if err != nil {
		s.Logger.WarnContext(c.Request().Context(), "failed to list stored sources",
			slog.Any("err", err))
		return result
	}

	index := map[string]int{}
	for i, src := range result {
		index[src.Key] = i
	}
	for _, src := range stored {
		if i, ok := index[src.Key]; ok {
			result[i] = src
			continue
		}
		result = append(result, src)
	}

	return result
}

func (s *Rest) getNews(c echo.Context) error {
	payloads := s.Fetcher.Fetch(c.Request().Context(), s.sources(c))
	return ok(c, payloads)
}

func (s *Rest) postNews(c echo.Context) error {
	var req struct {
		Sources []store.FeedSource `json:"sources"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	var valid []store.FeedSource
	for _, src := range req.Sources {
		if !validSourceURL(src.URL) {
			continue
		}
		if src.Key == "" {
			src.Key = src.URL
		}
		if !src.Group.Valid() {
			src.Group = store.GroupCustom
		}
		valid = append(valid, src)
	}
	if len(valid) == 0 {
		valid = store.DefaultSources()
	}

	payloads := s.Fetcher.Fetch(c.Request().Context(), valid)
	return ok(c, payloads)
}

func (s *Rest) dashboard(c echo.Context) error {
	req := feed.AggregateRequest{
		Group:  store.SourceGroup(c.QueryParam("group")),
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
		Now:    time.Now(),
	}
	if req.Group != "" && !req.Group.Valid() {
		return fail(c, http.StatusBadRequest, "unknown group")
	}
	if enabled := c.QueryParam("enabled"); enabled != "" {
		req.Enabled = strings.Split(enabled, ",")
	}

	payloads := s.Fetcher.Fetch(c.Request().Context(), s.sources(c))
	return ok(c, feed.Aggregate(payloads, req))
}

func (s *Rest) extract(c echo.Context) error {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.Bind(&req); err != nil || !validSourceURL(req.URL) {
		return fail(c, http.StatusBadRequest, "invalid url")
	}

	article, err := s.Reader.GetArticle(c.Request().Context(), req.URL)
	if err != nil {
		return s.upstreamFail(c, err)
	}

	return ok(c, map[string]any{
		"article": article,
		"draft":   reader.Prefill(article),
	})
}

func validSourceURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
