package webapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/alburninet/publisher/app/seo"
	"github.com/alburninet/publisher/app/store"
	"github.com/alburninet/publisher/app/wp"
)

const defaultSeoThreshold = 60

func (s *Rest) listPosts(c echo.Context) error {
	page, err := s.WP.ListPosts(c.Request().Context(), wp.ListPostsRequest{
		Page:    queryInt(c, "page", 1),
		PerPage: queryInt(c, "per_page", 20),
		Search:  c.QueryParam("search"),
		Status:  c.QueryParam("status"),
	})
	if err != nil {
		return s.upstreamFail(c, err)
	}
	return ok(c, page)
}

func (s *Rest) publish(c echo.Context) error {
	var req struct {
		Draft   store.ArticleDraft `json:"draft"`
		Profile string             `json:"profile"`
		Force   bool               `json:"force"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Draft.Title) == "" {
		return fail(c, http.StatusBadRequest, "title is required")
	}

	threshold := s.SeoThreshold
	if threshold <= 0 {
		threshold = defaultSeoThreshold
	}

	rep := seo.Evaluate(req.Draft)
	if rep.Score < threshold && !req.Force {
		return c.JSON(http.StatusUnprocessableEntity, response{
			OK:    false,
			Error: "seo checks below threshold",
			Data: map[string]any{
				"score":     rep.Score,
				"threshold": threshold,
				"failing":   rep.Failing(),
			},
		})
	}

	author := 0
	if req.Profile != "" {
		profile, found := s.profile(req.Profile)
		if !found {
			return fail(c, http.StatusBadRequest, "unknown profile")
		}
		author = profile.WPUserID
	}

	draft := req.Draft
	if len(draft.TagNames) > 0 {
		ids, err := s.resolveTags(c, draft.TagNames)
		if err != nil {
			return s.upstreamFail(c, err)
		}
		draft.Tags = append(draft.Tags, ids...)
	}

	post, err := s.WP.CreatePost(c.Request().Context(), wp.PostRequestFromDraft(draft, author))
	if err != nil {
		return s.upstreamFail(c, err)
	}

	return ok(c, map[string]any{"post": post, "score": rep.Score})
}

// resolveTags maps tag names onto term IDs, creating missing terms.
func (s *Rest) resolveTags(c echo.Context, names []string) ([]int, error) {
	ctx := c.Request().Context()

	var ids []int
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		terms, err := s.WP.SearchTaxonomy(ctx, wp.Tags, name, 10)
		if err != nil {
			return nil, err
		}

		id := 0
		for _, term := range terms {
			if strings.EqualFold(term.Name, name) {
				id = term.ID
				break
			}
		}
		if id == 0 {
			term, err := s.WP.CreateTaxonomy(ctx, wp.Tags, name, 0)
			if err != nil {
				return nil, err
			}
			id = term.ID
		}

		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Rest) listMedia(c echo.Context) error {
	page, err := s.WP.ListMedia(c.Request().Context(), wp.ListMediaRequest{
		Page:    queryInt(c, "page", 1),
		PerPage: queryInt(c, "per_page", 24),
		Search:  c.QueryParam("search"),
	})
	if err != nil {
		return s.upstreamFail(c, err)
	}
	return ok(c, page)
}

func (s *Rest) deleteMedia(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return fail(c, http.StatusBadRequest, "invalid media id")
	}

	res, err := s.WP.DeleteMedia(c.Request().Context(), id)
	if err != nil {
		return s.upstreamFail(c, err)
	}
	return ok(c, res)
}

func (s *Rest) upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "file is required")
	}

	rd, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "unreadable file")
	}
	defer rd.Close()

	media, err := s.WP.UploadMedia(c.Request().Context(),
		fh.Filename, fh.Header.Get("Content-Type"), rd)
	if err != nil {
		return s.upstreamFail(c, err)
	}
	return ok(c, media)
}

func (s *Rest) categories(c echo.Context) error {
	terms, err := s.WP.Categories(c.Request().Context())
	if err != nil {
		return s.upstreamFail(c, err)
	}
	return ok(c, terms)
}

func (s *Rest) searchTaxonomy(c echo.Context) error {
	taxonomy := wp.Taxonomy(c.QueryParam("taxonomy"))
	if taxonomy == "" {
		taxonomy = wp.Tags
	}
	if !taxonomy.Valid() {
		return fail(c, http.StatusBadRequest, "unknown taxonomy")
	}

	terms, err := s.WP.SearchTaxonomy(c.Request().Context(),
		taxonomy, c.QueryParam("search"), queryInt(c, "per_page", 100))
	if err != nil {
		return s.upstreamFail(c, err)
	}
	return ok(c, terms)
}

func (s *Rest) createTaxonomy(c echo.Context) error {
	var req struct {
		Taxonomy string `json:"taxonomy"`
		Name     string `json:"name"`
		Parent   int    `json:"parent"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}

	taxonomy := wp.Taxonomy(req.Taxonomy)
	if taxonomy == "" {
		taxonomy = wp.Categories
	}
	if !taxonomy.Valid() {
		return fail(c, http.StatusBadRequest, "unknown taxonomy")
	}

	term, err := s.WP.CreateTaxonomy(c.Request().Context(), taxonomy, req.Name, req.Parent)
	if err != nil {
		return s.upstreamFail(c, err)
	}
	return ok(c, term)
}
