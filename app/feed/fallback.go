package feed

import (
	"regexp"
	"strings"
	"time"

	"github.com/alburninet/publisher/app/store"
)

// Fallback parsing is deliberately not a conformant XML parser: it is a
// last resort for feeds that the real parser rejects (unescaped
// entities, truncated documents, stray bytes before the prolog). It
// splits the document on item boundaries and scrapes fields per block.

var (
	reItemSplit = regexp.MustCompile(`(?i)<(?:item|entry)[\s>]`)
	reCDATA     = regexp.MustCompile(`<!\[CDATA\[|\]\]>`)

	reEnclosure = regexp.MustCompile(`(?i)<enclosure\s+[^>]*>`)
	reMediaTag  = regexp.MustCompile(`(?i)<media:(?:content|thumbnail)\b[^>]*>`)
	reImgSrc    = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`)
)

// permissive set of date layouts seen in the wild
var fallbackDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02",
}

func parseFallback(doc string) []store.NewsItem {
	blocks := reItemSplit.Split(doc, -1)
	if len(blocks) < 2 {
		return nil
	}

	var items []store.NewsItem
	for _, block := range blocks[1:] {
		title := extractTag(block, "title")

		link := extractTag(block, "link")
		if link == "" {
			link = extractTag(block, "guid")
		}

		if title == "" || link == "" {
			continue
		}

		item := store.NewsItem{
			Title:    title,
			Link:     link,
			Category: extractTag(block, "category"),
			ImageURL: extractImage(block),
		}

		date := extractTag(block, "pubDate")
		if date == "" {
			date = extractTag(block, "updated")
		}
		item.Published = parseDate(date)

		items = append(items, item)
	}
	return items
}

func extractTag(block, tag string) string {
	re := regexp.MustCompile(`(?is)<` + tag + `[^>]*>([\s\S]*?)</` + tag + `>`)
	m := re.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(reCDATA.ReplaceAllString(m[1], ""))
}

func matchAttr(tag, attr string) string {
	re := regexp.MustCompile(`(?i)` + attr + `\s*=\s*"(.*?)"`)
	m := re.FindStringSubmatch(tag)
	if m == nil {
		return ""
	}
	return m[1]
}

func extractImage(block string) string {
	for _, enc := range reEnclosure.FindAllString(block, -1) {
		typ := matchAttr(enc, "type")
		u := matchAttr(enc, "url")
		if u != "" && strings.HasPrefix(strings.ToLower(typ), "image/") {
			return u
		}
	}

	for _, m := range reMediaTag.FindAllString(block, -1) {
		if u := matchAttr(m, "url"); u != "" {
			return u
		}
	}

	html := extractTag(block, "description") + "\n" + extractTag(block, "content:encoded")
	if m := reImgSrc.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}

// parseDate tries the known layouts and gives up silently: an item with
// an unreadable date is still worth showing, just unranked.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
