package seo

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLen = 80

var (
	reNonSlug  = regexp.MustCompile(`[^a-z0-9]+`)
	reEdgeDash = regexp.MustCompile(`^-+|-+$`)
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripDiacritics removes combining accent marks, "Città" -> "Citta".
func StripDiacritics(s string) string {
	out, _, err := transform.String(deaccent, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify builds a WordPress-ready slug: lowercase, accents stripped,
// ampersand spelled out, hyphen-joined, at most 80 characters.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = StripDiacritics(s)
	s = strings.ReplaceAll(s, "&", " e ")
	s = reNonSlug.ReplaceAllString(s, "-")
	s = reEdgeDash.ReplaceAllString(s, "")
	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
		s = reEdgeDash.ReplaceAllString(s, "")
	}
	return s
}

// FirstParagraph returns the first non-empty line of the text.
func FirstParagraph(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// Clamp collapses whitespace and truncates the string to max runes,
// appending an ellipsis when it had to cut.
func Clamp(s string, max int) string {
	s = strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimRight(string(r[:max-1]), " ") + "…"
}

// SuggestMetaDescription proposes a meta description from the first
// paragraph of the content, clamped to the Yoast limit.
func SuggestMetaDescription(s string) string {
	return Clamp(FirstParagraph(Plain(s)), 160)
}

// Density is the outcome of a keyword density measurement.
type Density struct {
	Total   int     `json:"total"`
	Hits    int     `json:"hits"`
	Percent float64 `json:"percent"`
}

// KeywordDensity counts whole-word occurrences of the keyword in the text.
func KeywordDensity(text, kw string) Density {
	words := reWord.FindAllString(strings.ToLower(text), -1)
	d := Density{Total: len(words)}

	kw = strings.ToLower(strings.TrimSpace(kw))
	if kw == "" || d.Total == 0 {
		return d
	}

	for _, w := range words {
		if w == kw {
			d.Hits++
		}
	}
	d.Percent = float64(d.Hits) / float64(d.Total) * 100
	return d
}
