package feed

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/samber/lo"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/alburninet/publisher/app/store"
)

// clusterTokens is how many normalized title tokens make up the
// fingerprint of a headline.
const clusterTokens = 6

// freshness windows, display decoration only
const (
	fresh30Window = 30 * time.Minute
	fresh60Window = 60 * time.Minute
)

// AggregateRequest selects and pages the dashboard view.
type AggregateRequest struct {
	Group store.SourceGroup
	// Enabled restricts the view to these source keys; nil means all
	// sources of the group.
	Enabled []string
	Limit   int
	Offset  int
	Now     time.Time
}

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeTitle case-folds the title, strips diacritics, replaces
// non-alphanumerics with spaces and collapses whitespace.
func NormalizeTitle(s string) string {
	s = strings.ToLower(s)
	if out, _, err := transform.String(deaccent, s); err == nil {
		s = out
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ClusterKey is the normalized-title fingerprint: the first clusterTokens
// tokens joined by single spaces. Titles that normalize to nothing share
// the empty fingerprint, which is accepted behavior.
func ClusterKey(title string) string {
	tokens := strings.Fields(NormalizeTitle(title))
	if len(tokens) > clusterTokens {
		tokens = tokens[:clusterTokens]
	}
	return strings.Join(tokens, " ")
}

// Aggregate merges payloads into an ordered, deduplicated-by-cluster
// list of headlines. Items are sorted by publication time descending
// (missing timestamps sort oldest), grouped by fingerprint, and each
// cluster is represented by its most recent member.
func Aggregate(payloads []store.FeedPayload, req AggregateRequest) []store.Cluster {
	enabled := map[string]bool{}
	for _, k := range req.Enabled {
		enabled[k] = true
	}

	var items []store.NewsItem
	for _, p := range payloads {
		if req.Group != "" && p.Group != req.Group {
			continue
		}
		if len(enabled) > 0 && !enabled[p.Key] {
			continue
		}
		items = append(items, p.Items...)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return itemUnix(items[i]) > itemUnix(items[j])
	})

	// first occurrence of a fingerprint is the cluster head: the slice
	// is already ordered by recency, so heads come out newest-first and
	// clusters inherit their head's rank
	var clusters []store.Cluster
	index := map[string]int{}
	for _, it := range items {
		key := ClusterKey(it.Title)
		if i, ok := index[key]; ok {
			clusters[i].Others = append(clusters[i].Others, it)
			continue
		}
		index[key] = len(clusters)
		clusters = append(clusters, store.Cluster{Head: it})
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	for i := range clusters {
		if ts := clusters[i].Head.Published; ts != nil {
			age := now.Sub(*ts)
			clusters[i].Fresh30 = age >= 0 && age <= fresh30Window
			clusters[i].Fresh60 = age >= 0 && age <= fresh60Window
		}
	}

	return page(clusters, req.Offset, req.Limit)
}

func page(clusters []store.Cluster, offset, limit int) []store.Cluster {
	if offset > 0 {
		clusters = lo.Slice(clusters, offset, len(clusters))
	}
	if limit > 0 && len(clusters) > limit {
		clusters = clusters[:limit]
	}
	return clusters
}

func itemUnix(it store.NewsItem) int64 {
	if it.Published == nil {
		return 0
	}
	return it.Published.Unix()
}
