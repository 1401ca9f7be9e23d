// Package reader retrieves linked pages and extracts their readable
// content, so the composer can be prefilled from a news item.
package reader

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alburninet/publisher/app/seo"
	"github.com/alburninet/publisher/app/store"
)

// Service fetches and extracts articles.
type Service struct {
	log       *slog.Logger
	cl        *http.Client
	extractor Extractor
}

// NewService creates new service.
func NewService(lg *slog.Logger, cl *http.Client, extractor Extractor) *Service {
	return &Service{
		log:       lg,
		cl:        cl,
		extractor: extractor,
	}
}

// GetArticle fetches the page and extracts its readable article.
func (s *Service) GetArticle(ctx context.Context, u string) (store.Article, error) {
	s.log.DebugContext(ctx, "extracting article from", slog.String("url", u))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return store.Article{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.cl.Do(req)
	if err != nil {
		return store.Article{}, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.log.WarnContext(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	ok := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
	if !ok {
		return store.Article{}, fmt.Errorf("bad status code: %d", resp.StatusCode)
	}

	article, err := s.extractor.Extract(resp.Body)
	if err != nil {
		return store.Article{}, fmt.Errorf("extract article: %w", err)
	}
	article.URL = u

	return article, nil
}

// Prefill maps an extracted article onto a fresh draft.
func Prefill(article store.Article) store.ArticleDraft {
	excerpt := article.Excerpt
	if excerpt == "" {
		excerpt = seo.Clamp(article.Content, 160)
	}

	return store.ArticleDraft{
		Title:          article.Title,
		Slug:           seo.Slugify(article.Title),
		Excerpt:        excerpt,
		SeoTitle:       article.Title,
		SeoDescription: seo.Clamp(excerpt, 160),
		Canonical:      article.URL,
	}
}
