package seo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlain(t *testing.T) {
	tbl := []struct {
		name string
		html string
		want string
	}{
		{"empty", "", ""},
		{"plain text", "ciao mondo", "ciao mondo"},
		{
			"strips script and style",
			`<p>testo</p><script>alert("x")</script><style>p{color:red}</style>`,
			"testo.",
		},
		{
			"paragraph break becomes sentence boundary",
			"<p>Prima frase</p><p>Seconda frase</p>",
			"Prima frase. Seconda frase.",
		},
		{
			"collapses whitespace",
			"<div>uno   due\n\ttre</div>",
			"uno due tre.",
		},
	}

	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Plain(tt.html))
		})
	}
}

func TestCounts(t *testing.T) {
	text := "L'estate a Salerno è calda. Molto calda! Davvero…"

	assert.Equal(t, 8, CountWords(text))
	assert.Equal(t, 3, CountSentences(text))
	// letters only, no spaces, digits or punctuation
	assert.Equal(t, 38, CountLetters(text))
}

func TestGulpease(t *testing.T) {
	t.Run("not determinable on empty text", func(t *testing.T) {
		_, ok := Gulpease("")
		assert.False(t, ok)
	})

	t.Run("not determinable without sentences", func(t *testing.T) {
		_, ok := Gulpease("parole senza alcuna punteggiatura finale")
		assert.False(t, ok)
	})

	t.Run("clamped to hundred on trivial text", func(t *testing.T) {
		got, ok := Gulpease("Sì. No. Ma.")
		assert.True(t, ok)
		assert.Equal(t, 100.0, got)
	})

	t.Run("matches the formula", func(t *testing.T) {
		// 2 words, 1 sentence, 28 letters:
		// 89 + (300 - 280)/2 = 99
		got, ok := Gulpease("amministrazione intercomunale.")
		assert.True(t, ok)
		assert.InDelta(t, 99.0, got, 0.001)
	})
}
