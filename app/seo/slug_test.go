package seo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tbl := []struct {
		in   string
		want string
	}{
		{"Città di Salerno!", "citta-di-salerno"},
		{"Sagra del Tartufo 2024", "sagra-del-tartufo-2024"},
		{"Pane & Olio", "pane-e-olio"},
		{"  --- ", ""},
		{"È già l'alba", "e-gia-l-alba"},
	}

	for _, tt := range tbl {
		t.Run(tt.in, func(t *testing.T) {
			got := Slugify(tt.in)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 80)
			assert.False(t, strings.HasSuffix(got, "-"))
		})
	}

	t.Run("long titles are cut at the limit", func(t *testing.T) {
		got := Slugify(strings.Repeat("parola ", 30))
		assert.LessOrEqual(t, len(got), 80)
		assert.False(t, strings.HasSuffix(got, "-"))
	})
}

func TestClamp(t *testing.T) {
	assert.Equal(t, "breve", Clamp("  breve  ", 160))
	assert.Equal(t, "a b c", Clamp("a\n b\t\tc", 160))

	long := strings.Repeat("x", 200)
	got := Clamp(long, 160)
	assert.Equal(t, 160, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestSuggestMetaDescription(t *testing.T) {
	got := SuggestMetaDescription("<p>Primo paragrafo utile.</p><p>Secondo paragrafo.</p>")
	assert.Equal(t, "Primo paragrafo utile.. Secondo paragrafo..", got)
}

func TestKeywordDensity(t *testing.T) {
	d := KeywordDensity("il tartufo è buono, il tartufo è raro.", "tartufo")
	assert.Equal(t, 8, d.Total)
	assert.Equal(t, 2, d.Hits)
	assert.InDelta(t, 25.0, d.Percent, 0.001)

	empty := KeywordDensity("testo qualsiasi", "")
	assert.Zero(t, empty.Hits)
	assert.Zero(t, empty.Percent)
}
