package seo

import (
	"fmt"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alburninet/publisher/app/store"
)

// readability is considered measurable only on a minimal amount of text,
// below it the formula is unreliable and the check stays neutral
const (
	minGulpeaseWords     = 30
	minGulpeaseSentences = 2

	gulpeaseThreshold = 40

	seoTitleMin = 35
	seoTitleMax = 60
	metaDescMin = 80
	metaDescMax = 160
)

// Report is the outcome of evaluating a draft against the checklist.
type Report struct {
	Checks []store.SeoCheck `json:"checks"`
	Score  int              `json:"score"`

	// Gulpease is nil when the index was not determinable.
	Gulpease *int `json:"gulpease,omitempty"`
}

// contentStats is what the evaluator needs to know about the markup.
type contentStats struct {
	H2Count       int
	H3Count       int
	Images        int
	ImagesWithAlt int
	ExternalLinks int
}

func analyzeContent(html string) contentStats {
	var st contentStats
	if strings.TrimSpace(html) == "" {
		return st
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// malformed enough that even the lenient parser gave up,
		// treat as empty content
		return st
	}

	st.H2Count = doc.Find("h2").Length()
	st.H3Count = doc.Find("h3").Length()

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		st.Images++
		if alt, _ := s.Attr("alt"); strings.TrimSpace(alt) != "" {
			st.ImagesWithAlt++
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if isExternal(href) {
			st.ExternalLinks++
		}
	})

	return st
}

func isExternal(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}

// Evaluate runs the checklist against the draft fields and aggregates
// the score. Only "good" checks count toward the score, neutral ones
// still lower it by raising the total: a mostly-empty draft scores low
// rather than passing vacuously.
func Evaluate(d store.ArticleDraft) Report {
	var checks []store.SeoCheck

	title := strings.TrimSpace(d.SeoTitle)
	if title == "" {
		title = strings.TrimSpace(d.Title)
	}
	desc := strings.TrimSpace(d.SeoDescription)
	kw := strings.ToLower(strings.TrimSpace(d.FocusKeyword))

	// 1. SEO title length
	tl := len([]rune(title))
	if ok := tl >= seoTitleMin && tl <= seoTitleMax; ok {
		checks = append(checks, store.SeoCheck{
			Label:  fmt.Sprintf("Titolo SEO %d–%d (attuale %d)", seoTitleMin, seoTitleMax, tl),
			Status: store.StatusGood,
			Note:   "Titolo di buona lunghezza.",
		})
	} else {
		checks = append(checks, store.SeoCheck{
			Label:  fmt.Sprintf("Titolo SEO %d–%d (attuale %d)", seoTitleMin, seoTitleMax, tl),
			Status: store.StatusBad,
			Note:   "Ottimizza la lunghezza del titolo.",
		})
	}

	// 2. meta description length
	dl := len([]rune(desc))
	if ok := dl >= metaDescMin && dl <= metaDescMax; ok {
		checks = append(checks, store.SeoCheck{
			Label:  fmt.Sprintf("Meta-description %d–%d (attuale %d)", metaDescMin, metaDescMax, dl),
			Status: store.StatusGood,
			Note:   "Lunghezza descrizione ok.",
		})
	} else {
		checks = append(checks, store.SeoCheck{
			Label:  fmt.Sprintf("Meta-description %d–%d (attuale %d)", metaDescMin, metaDescMax, dl),
			Status: store.StatusBad,
			Note:   "Accorcia o allunga la descrizione.",
		})
	}

	st := analyzeContent(d.ContentHTML)

	// 3. at least one H2
	if st.H2Count > 0 {
		checks = append(checks, store.SeoCheck{
			Label:  "Almeno un H2 presente",
			Status: store.StatusGood,
			Note:   "Buona struttura del testo.",
		})
	} else {
		checks = append(checks, store.SeoCheck{
			Label:  "Almeno un H2 presente",
			Status: store.StatusBad,
			Note:   "Aggiungi sottotitoli H2 per la struttura.",
		})
	}

	// 4. image ALT coverage; no images at all is vacuously fine
	switch {
	case st.Images == 0:
		checks = append(checks, store.SeoCheck{
			Label:  "ALT immagini (0/0)",
			Status: store.StatusNeutral,
			Note:   "Aggiungi almeno 1 immagine con alt descrittivo.",
		})
	case st.ImagesWithAlt == st.Images:
		checks = append(checks, store.SeoCheck{
			Label:  fmt.Sprintf("ALT immagini (%d/%d)", st.ImagesWithAlt, st.Images),
			Status: store.StatusGood,
			Note:   "Ottimo: tutte le immagini hanno ALT.",
		})
	default:
		checks = append(checks, store.SeoCheck{
			Label:  fmt.Sprintf("ALT immagini (%d/%d)", st.ImagesWithAlt, st.Images),
			Status: store.StatusBad,
			Note:   "Aggiungi ALT descrittivi alle immagini mancanti.",
		})
	}

	// 5. at least one external link
	if st.ExternalLinks > 0 {
		checks = append(checks, store.SeoCheck{
			Label:  fmt.Sprintf("Link (tot: %d, ext: %d)", st.ExternalLinks, st.ExternalLinks),
			Status: store.StatusGood,
			Note:   "Ottimo: ci sono link esterni.",
		})
	} else {
		checks = append(checks, store.SeoCheck{
			Label:  "Link (tot: 0, ext: 0)",
			Status: store.StatusBad,
			Note:   "Aggiungi almeno 1 link esterno autorevole.",
		})
	}

	// 6. keyword in title
	switch {
	case kw == "":
		checks = append(checks, store.SeoCheck{
			Label:  "Keyword nel titolo",
			Status: store.StatusNeutral,
			Note:   "Inserisci la focus keyword nel titolo.",
		})
	case strings.Contains(strings.ToLower(title), kw):
		checks = append(checks, store.SeoCheck{
			Label:  "Keyword nel titolo",
			Status: store.StatusGood,
			Note:   "Keyword presente nel titolo.",
		})
	default:
		checks = append(checks, store.SeoCheck{
			Label:  "Keyword nel titolo",
			Status: store.StatusBad,
			Note:   "Inserisci la keyword nel titolo.",
		})
	}

	// 7. keyword in description
	switch {
	case kw == "":
		checks = append(checks, store.SeoCheck{
			Label:  "Keyword nella description",
			Status: store.StatusNeutral,
			Note:   "Inserisci la focus keyword nella meta description.",
		})
	case strings.Contains(strings.ToLower(desc), kw):
		checks = append(checks, store.SeoCheck{
			Label:  "Keyword nella description",
			Status: store.StatusGood,
			Note:   "Keyword presente nella description.",
		})
	default:
		checks = append(checks, store.SeoCheck{
			Label:  "Keyword nella description",
			Status: store.StatusBad,
			Note:   "Inserisci la keyword nella description.",
		})
	}

	// 8. readability
	plain := Plain(d.ContentHTML)
	words := CountWords(plain)
	sentences := CountSentences(plain)
	idx, determinable := Gulpease(plain)

	var gulpease *int
	if words < minGulpeaseWords || sentences < minGulpeaseSentences || !determinable {
		checks = append(checks, store.SeoCheck{
			Label:  fmt.Sprintf("Leggibilità (Gulpease) ≥ %d", gulpeaseThreshold),
			Status: store.StatusNeutral,
			Note: fmt.Sprintf("Scrivi almeno %d parole e %d frasi per valutare la leggibilità.",
				minGulpeaseWords, minGulpeaseSentences),
		})
	} else {
		rounded := int(math.Round(idx))
		gulpease = &rounded
		if idx >= gulpeaseThreshold {
			checks = append(checks, store.SeoCheck{
				Label:  fmt.Sprintf("Leggibilità (Gulpease) ≥ %d (attuale %d)", gulpeaseThreshold, rounded),
				Status: store.StatusGood,
				Note:   "Testo leggibile.",
			})
		} else {
			checks = append(checks, store.SeoCheck{
				Label:  fmt.Sprintf("Leggibilità (Gulpease) ≥ %d (attuale %d)", gulpeaseThreshold, rounded),
				Status: store.StatusBad,
				Note:   "Frasi più corte, parole semplici.",
			})
		}
	}

	good := 0
	for _, c := range checks {
		if c.Status == store.StatusGood {
			good++
		}
	}

	return Report{
		Checks:   checks,
		Score:    int(math.Round(float64(good) / float64(len(checks)) * 100)),
		Gulpease: gulpease,
	}
}

// Failing returns the checks that did not pass.
func (r Report) Failing() []store.SeoCheck {
	var out []store.SeoCheck
	for _, c := range r.Checks {
		if c.Status == store.StatusBad {
			out = append(out, c)
		}
	}
	return out
}
