package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/alburninet/publisher/app/store"
)

// Fetcher downloads and parses a set of sources concurrently. Sources
// fail independently: a broken one degrades to an empty payload and
// never disturbs the rest.
type Fetcher struct {
	log     *slog.Logger
	cl      *http.Client
	parser  *Parser
	workers int
	perSrc  int
}

// NewFetcher creates new Fetcher. perSource caps the number of items
// kept per source.
func NewFetcher(lg *slog.Logger, cl *http.Client, workers, perSource int) *Fetcher {
	if workers <= 0 {
		workers = 4
	}
	if perSource <= 0 {
		perSource = 20
	}
	return &Fetcher{
		log:     lg,
		cl:      cl,
		parser:  NewParser(),
		workers: workers,
		perSrc:  perSource,
	}
}

// Fetch fans out over the sources and joins the results in input order.
func (f *Fetcher) Fetch(ctx context.Context, sources []store.FeedSource) []store.FeedPayload {
	payloads := make([]store.FeedPayload, len(sources))

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.SetLimit(f.workers)

	for i, src := range sources {
		i, src := i, src
		ewg.Go(func() error {
			payloads[i] = f.fetchOne(ctx, src)
			return nil
		})
	}

	// workers never return errors, failures degrade per source
	_ = ewg.Wait()

	return payloads
}

func (f *Fetcher) fetchOne(ctx context.Context, src store.FeedSource) store.FeedPayload {
	payload := store.FeedPayload{
		Key:   src.Key,
		Name:  src.Name,
		Group: src.Group,
		Items: []store.NewsItem{},
	}
	if payload.Group == "" {
		payload.Group = store.GroupCustom
	}

	items, err := f.download(ctx, src.URL)
	if err != nil {
		f.log.WarnContext(ctx, "feed source degraded",
			slog.String("key", src.Key), slog.Any("err", err))
		return payload
	}

	if len(items) > f.perSrc {
		items = items[:f.perSrc]
	}
	payload.Items = items
	return payload
}

func (f *Fetcher) download(ctx context.Context, u string) ([]store.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.cl.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.log.WarnContext(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	ok := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
	if !ok {
		return nil, fmt.Errorf("bad status code: %d", resp.StatusCode)
	}

	items, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return items, nil
}
