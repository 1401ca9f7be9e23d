package webapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alburninet/publisher/app/seo"
	"github.com/alburninet/publisher/app/store"
)

// analyze scores a draft without publishing it, so the composer can
// show the checklist live.
func (s *Rest) analyze(c echo.Context) error {
	var draft store.ArticleDraft
	if err := c.Bind(&draft); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	rep := seo.Evaluate(draft)

	return ok(c, map[string]any{
		"report":          rep,
		"slug":            seo.Slugify(draft.Title),
		"suggested_desc":  seo.SuggestMetaDescription(draft.ContentHTML),
		"keyword_density": seo.KeywordDensity(seo.Plain(draft.ContentHTML), draft.FocusKeyword),
	})
}
