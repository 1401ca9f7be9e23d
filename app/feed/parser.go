// Package feed fetches, parses and aggregates RSS/Atom sources for the
// dashboard.
package feed

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/alburninet/publisher/app/store"
)

// Parser turns raw feed documents into news items. Parsing is
// best-effort across unrelated third-party publishers: a conformant
// parser runs first, and a lenient regex splitter recovers items from
// malformed documents.
type Parser struct {
	fp *gofeed.Parser
}

// NewParser creates new Parser.
func NewParser() *Parser {
	return &Parser{fp: gofeed.NewParser()}
}

// Parse extracts news items from a feed document. Items missing a title
// or a link are discarded. It returns an error only when neither the
// conformant nor the fallback path produced anything usable.
func (p *Parser) Parse(rd io.Reader) ([]store.NewsItem, error) {
	raw, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	feed, err := p.fp.Parse(bytes.NewReader(raw))
	if err != nil {
		items := parseFallback(string(raw))
		if len(items) == 0 {
			return nil, fmt.Errorf("parse document: %w", err)
		}
		return items, nil
	}

	var items []store.NewsItem
	for _, it := range feed.Items {
		if item, ok := mapItem(it); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func mapItem(it *gofeed.Item) (store.NewsItem, bool) {
	title := strings.TrimSpace(it.Title)

	link := strings.TrimSpace(it.Link)
	if link == "" {
		link = strings.TrimSpace(it.GUID)
	}

	if title == "" || link == "" {
		return store.NewsItem{}, false
	}

	item := store.NewsItem{
		Title:     title,
		Link:      link,
		Published: publishedAt(it),
		ImageURL:  imageURL(it),
	}
	if len(it.Categories) > 0 {
		item.Category = strings.TrimSpace(it.Categories[0])
	}
	return item, true
}

func publishedAt(it *gofeed.Item) *time.Time {
	if it.PublishedParsed != nil {
		return it.PublishedParsed
	}
	// atom entries carry updated instead of a publication date
	return it.UpdatedParsed
}

// imageURL resolves an item image through the priority chain:
// enclosure -> media extension -> first inline <img> in the body.
func imageURL(it *gofeed.Item) string {
	for _, enc := range it.Enclosures {
		if enc == nil {
			continue
		}
		if strings.HasPrefix(strings.ToLower(enc.Type), "image/") && enc.URL != "" {
			return enc.URL
		}
	}

	if media, ok := it.Extensions["media"]; ok {
		for _, name := range []string{"content", "thumbnail"} {
			for _, ext := range media[name] {
				if u := ext.Attrs["url"]; u != "" {
					return u
				}
			}
		}
	}

	if it.Image != nil && it.Image.URL != "" {
		return it.Image.URL
	}

	return inlineImage(it.Description + "\n" + it.Content)
}

// inlineImage returns the src of the first <img> found in the HTML.
func inlineImage(html string) string {
	if !strings.Contains(html, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return src
}
