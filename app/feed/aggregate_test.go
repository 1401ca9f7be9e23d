package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alburninet/publisher/app/store"
)

func ts(t time.Time) *time.Time { return &t }

func TestNormalizeTitle(t *testing.T) {
	tbl := []struct{ in, want string }{
		{"Sagra del Tartufo 2024", "sagra del tartufo 2024"},
		{"Sagra del tartufo, 2024!!", "sagra del tartufo 2024"},
		{"Città   di  Salerno", "citta di salerno"},
		{"!!!???", ""},
	}
	for _, tt := range tbl {
		assert.Equal(t, tt.want, NormalizeTitle(tt.in), tt.in)
	}
}

func TestClusterKey_FirstSixTokens(t *testing.T) {
	a := ClusterKey("Uno due tre quattro cinque sei SETTE otto")
	b := ClusterKey("uno, due; tre. quattro cinque sei NOVE dieci")
	assert.Equal(t, a, b)
	assert.Equal(t, "uno due tre quattro cinque sei", a)
}

func TestAggregate_Clustering(t *testing.T) {
	now := time.Date(2024, 9, 2, 12, 0, 0, 0, time.UTC)

	payloads := []store.FeedPayload{
		{Key: "salernotoday", Group: store.GroupLocale, Items: []store.NewsItem{
			{Title: "Sagra del Tartufo 2024", Link: "https://a/1", Published: ts(now.Add(-2 * time.Hour))},
		}},
		{Key: "cilentano", Group: store.GroupLocale, Items: []store.NewsItem{
			{Title: "Sagra del tartufo, 2024!!", Link: "https://b/1", Published: ts(now.Add(-1 * time.Hour))},
			{Title: "Frana sulla provinciale", Link: "https://b/2", Published: ts(now.Add(-3 * time.Hour))},
		}},
	}

	clusters := Aggregate(payloads, AggregateRequest{Group: store.GroupLocale, Now: now})
	require.Len(t, clusters, 2)

	// near-duplicate headlines collapse, the newest is the head
	sagra := clusters[0]
	assert.Equal(t, "https://b/1", sagra.Head.Link)
	assert.Equal(t, 2, sagra.Size())
	require.Len(t, sagra.Others, 1)
	assert.Equal(t, "https://a/1", sagra.Others[0].Link)

	assert.Equal(t, "Frana sulla provinciale", clusters[1].Head.Title)
	assert.Equal(t, 1, clusters[1].Size())
}

func TestAggregate_HeadIsMostRecentOfThree(t *testing.T) {
	now := time.Date(2024, 9, 2, 12, 0, 0, 0, time.UTC)

	items := []store.NewsItem{
		{Title: "Consiglio comunale approva il bilancio", Link: "https://a", Published: ts(now.Add(-90 * time.Minute))},
		{Title: "Consiglio Comunale approva il bilancio!", Link: "https://b", Published: ts(now.Add(-10 * time.Minute))},
		{Title: "consiglio comunale, approva il bilancio", Link: "https://c", Published: ts(now.Add(-50 * time.Minute))},
	}
	payloads := []store.FeedPayload{{Key: "x", Group: store.GroupLocale, Items: items}}

	clusters := Aggregate(payloads, AggregateRequest{Group: store.GroupLocale, Now: now})
	require.Len(t, clusters, 1)
	assert.Equal(t, "https://b", clusters[0].Head.Link)
	assert.Equal(t, 3, clusters[0].Size())
}

func TestAggregate_MissingTimestampsSortOldest(t *testing.T) {
	now := time.Now()

	payloads := []store.FeedPayload{{Key: "x", Group: store.GroupWorld, Items: []store.NewsItem{
		{Title: "Senza data alcuna qui", Link: "https://no-date"},
		{Title: "Con data recente invece", Link: "https://dated", Published: ts(now.Add(-5 * time.Hour))},
	}}}

	clusters := Aggregate(payloads, AggregateRequest{Group: store.GroupWorld, Now: now})
	require.Len(t, clusters, 2)
	assert.Equal(t, "https://dated", clusters[0].Head.Link)
	assert.Equal(t, "https://no-date", clusters[1].Head.Link)
}

func TestAggregate_EmptyFingerprintsShareOneCluster(t *testing.T) {
	payloads := []store.FeedPayload{{Key: "x", Group: store.GroupWorld, Items: []store.NewsItem{
		{Title: "???", Link: "https://a"},
		{Title: "!!!", Link: "https://b"},
	}}}

	clusters := Aggregate(payloads, AggregateRequest{Group: store.GroupWorld})
	require.Len(t, clusters, 1)
	assert.Equal(t, 2, clusters[0].Size())
}

func TestAggregate_EnabledSourceFilter(t *testing.T) {
	payloads := []store.FeedPayload{
		{Key: "a", Group: store.GroupNational, Items: []store.NewsItem{{Title: "Dalla fonte abilitata", Link: "https://a"}}},
		{Key: "b", Group: store.GroupNational, Items: []store.NewsItem{{Title: "Dalla fonte spenta", Link: "https://b"}}},
		{Key: "c", Group: store.GroupWorld, Items: []store.NewsItem{{Title: "Gruppo diverso", Link: "https://c"}}},
	}

	clusters := Aggregate(payloads, AggregateRequest{Group: store.GroupNational, Enabled: []string{"a"}})
	require.Len(t, clusters, 1)
	assert.Equal(t, "https://a", clusters[0].Head.Link)
}

func TestAggregate_Freshness(t *testing.T) {
	now := time.Date(2024, 9, 2, 12, 0, 0, 0, time.UTC)

	payloads := []store.FeedPayload{{Key: "x", Group: store.GroupLocale, Items: []store.NewsItem{
		{Title: "Appena uscita la notizia", Link: "https://fresh", Published: ts(now.Add(-10 * time.Minute))},
		{Title: "Uscita da tre quarti d'ora", Link: "https://warm", Published: ts(now.Add(-45 * time.Minute))},
		{Title: "Uscita stamattina presto", Link: "https://cold", Published: ts(now.Add(-3 * time.Hour))},
	}}}

	clusters := Aggregate(payloads, AggregateRequest{Group: store.GroupLocale, Now: now})
	require.Len(t, clusters, 3)

	assert.True(t, clusters[0].Fresh30)
	assert.True(t, clusters[0].Fresh60)

	assert.False(t, clusters[1].Fresh30)
	assert.True(t, clusters[1].Fresh60)

	assert.False(t, clusters[2].Fresh30)
	assert.False(t, clusters[2].Fresh60)
}

func TestAggregate_Paging(t *testing.T) {
	now := time.Now()

	var items []store.NewsItem
	titles := []string{
		"Prima notizia del giorno", "Seconda notizia del giorno",
		"Terza notizia del giorno", "Quarta notizia del giorno",
		"Quinta notizia del giorno",
	}
	for i, title := range titles {
		items = append(items, store.NewsItem{
			Title:     title,
			Link:      title,
			Published: ts(now.Add(-time.Duration(i) * time.Hour)),
		})
	}
	payloads := []store.FeedPayload{{Key: "x", Group: store.GroupLocale, Items: items}}

	first := Aggregate(payloads, AggregateRequest{Group: store.GroupLocale, Limit: 2, Now: now})
	require.Len(t, first, 2)
	assert.Equal(t, "Prima notizia del giorno", first[0].Head.Title)

	rest := Aggregate(payloads, AggregateRequest{Group: store.GroupLocale, Limit: 2, Offset: 2, Now: now})
	require.Len(t, rest, 2)
	assert.Equal(t, "Terza notizia del giorno", rest[0].Head.Title)

	tail := Aggregate(payloads, AggregateRequest{Group: store.GroupLocale, Offset: 4, Now: now})
	require.Len(t, tail, 1)
	assert.Equal(t, "Quinta notizia del giorno", tail[0].Head.Title)
}
