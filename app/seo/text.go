// Package seo contains the text statistics, readability scoring and the
// checklist evaluator behind the compose page assistant.
package seo

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reScript     = regexp.MustCompile(`(?is)<script[\s\S]*?</script>`)
	reStyle      = regexp.MustCompile(`(?is)<style[\s\S]*?</style>`)
	reBlockClose = regexp.MustCompile(`(?i)</(?:p|div|li|ul|ol|h[1-6]|blockquote|section|article|tr|table)>|<br\s*/?>`)
	reTag        = regexp.MustCompile(`<[^>]+>`)
	reSpaces     = regexp.MustCompile(`\s+`)

	reWord     = regexp.MustCompile(`[\p{L}\p{N}’']+`)
	reSentence = regexp.MustCompile(`[.!?…]+(\s|$)`)
)

// Plain strips markup from HTML and returns collapsed plain text.
// Closing block tags become sentence boundaries, so paragraph breaks
// count toward sentence segmentation.
func Plain(html string) string {
	if html == "" {
		return ""
	}
	s := reScript.ReplaceAllString(html, " ")
	s = reStyle.ReplaceAllString(s, " ")
	s = reBlockClose.ReplaceAllString(s, ". ")
	s = reTag.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CountWords counts runs of Unicode letters and digits.
func CountWords(text string) int { return len(reWord.FindAllString(text, -1)) }

// CountSentences counts runs of sentence terminators followed by
// whitespace or end of string.
func CountSentences(text string) int { return len(reSentence.FindAllString(text, -1)) }

// CountLetters counts Unicode letter code points.
func CountLetters(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// Gulpease computes the Italian readability index
// I = 89 + (300*sentences - 10*letters) / words, clamped to [0,100].
// The second return value is false when the text has no words,
// sentences or letters and the formula is undefined.
func Gulpease(text string) (float64, bool) {
	words := CountWords(text)
	sentences := CountSentences(text)
	letters := CountLetters(text)

	if words < 1 || sentences < 1 || letters < 1 {
		return 0, false
	}

	idx := 89 + (300*float64(sentences)-10*float64(letters))/float64(words)
	if idx < 0 {
		idx = 0
	}
	if idx > 100 {
		idx = 100
	}
	return idx, true
}
