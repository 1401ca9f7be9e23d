package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssDoc = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
  <title>SalernoToday</title>
  <item>
    <title><![CDATA[Sagra del Tartufo 2024]]></title>
    <link>https://example.com/sagra</link>
    <pubDate>Mon, 02 Sep 2024 10:30:00 +0200</pubDate>
    <category>Eventi</category>
    <enclosure url="https://example.com/sagra.jpg" type="image/jpeg" length="1234"/>
    <description><![CDATA[<img src="https://example.com/inline.jpg"> testo]]></description>
  </item>
  <item>
    <title>Solo immagine inline</title>
    <link>https://example.com/inline-only</link>
    <description><![CDATA[<p>testo <img src="https://example.com/body.jpg" alt=""></p>]]></description>
  </item>
  <item>
    <title>Data illeggibile</title>
    <link>https://example.com/no-date</link>
    <pubDate>ieri pomeriggio</pubDate>
  </item>
  <item>
    <title></title>
    <link></link>
    <description>fantasma senza titolo e link</description>
  </item>
  <item>
    <title>Solo guid</title>
    <guid>https://example.com/guid-only</guid>
  </item>
</channel>
</rss>`

func TestParser_Parse(t *testing.T) {
	items, err := NewParser().Parse(strings.NewReader(rssDoc))
	require.NoError(t, err)
	require.Len(t, items, 4)

	first := items[0]
	assert.Equal(t, "Sagra del Tartufo 2024", first.Title)
	assert.Equal(t, "https://example.com/sagra", first.Link)
	assert.Equal(t, "Eventi", first.Category)
	// enclosure wins over the inline image
	assert.Equal(t, "https://example.com/sagra.jpg", first.ImageURL)
	require.NotNil(t, first.Published)
	assert.Equal(t, time.Date(2024, 9, 2, 8, 30, 0, 0, time.UTC), first.Published.UTC())

	assert.Equal(t, "https://example.com/body.jpg", items[1].ImageURL)

	assert.Equal(t, "Data illeggibile", items[2].Title)
	assert.Nil(t, items[2].Published)

	assert.Equal(t, "https://example.com/guid-only", items[3].Link)
}

func TestParser_MediaThumbnailFallback(t *testing.T) {
	doc := `<?xml version="1.0"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/"><channel>
  <item>
    <title>Con thumbnail</title>
    <link>https://example.com/thumb</link>
    <media:thumbnail url="https://example.com/thumb.jpg"/>
  </item>
</channel></rss>`

	items, err := NewParser().Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://example.com/thumb.jpg", items[0].ImageURL)
}

func TestParser_FallbackOnMalformedDocument(t *testing.T) {
	// unescaped ampersand and a truncated closing structure: the
	// conformant parser rejects this, the fallback recovers the items
	doc := `garbage before prolog
<rss><channel>
  <item>
    <title>Pane & Olio in piazza</title>
    <link>https://example.com/pane-olio</link>
    <pubDate>Mon, 02 Sep 2024 10:30:00 +0200</pubDate>
    <description><![CDATA[<img src="https://example.com/pane.jpg">]]></description>
  </item>
  <item>
    <title>Senza link</title>
  </item>
</channel>`

	items, err := NewParser().Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "Pane & Olio in piazza", items[0].Title)
	assert.Equal(t, "https://example.com/pane-olio", items[0].Link)
	assert.Equal(t, "https://example.com/pane.jpg", items[0].ImageURL)
	require.NotNil(t, items[0].Published)
}

func TestParser_UnusableDocument(t *testing.T) {
	_, err := NewParser().Parse(strings.NewReader("not xml at all"))
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	assert.Nil(t, parseDate(""))
	assert.Nil(t, parseDate("ieri"))

	ts := parseDate("2024-09-02")
	require.NotNil(t, ts)
	assert.Equal(t, 2024, ts.Year())

	ts = parseDate("Mon, 02 Sep 2024 10:30:00 +0200")
	require.NotNil(t, ts)
	assert.Equal(t, time.September, ts.Month())
}
