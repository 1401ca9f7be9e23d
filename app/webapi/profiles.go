package webapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/alburninet/publisher/app/store"
)

func (s *Rest) profile(id string) (store.Profile, bool) {
	for _, p := range s.Profiles {
		if p.ID == id {
			return p, true
		}
	}
	return store.Profile{}, false
}

func (s *Rest) listProfiles(c echo.Context) error {
	return ok(c, s.Profiles)
}

func (s *Rest) getPrefs(c echo.Context) error {
	id := c.Param("profile")
	if _, found := s.profile(id); !found {
		return fail(c, http.StatusNotFound, "unknown profile")
	}

	prefs, err := s.Store.GetPrefs(c.Request().Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// fresh profile, everything enabled
		return ok(c, store.Prefs{})
	case err != nil:
		s.Logger.ErrorContext(c.Request().Context(), "failed to get prefs", slog.Any("err", err))
		return fail(c, http.StatusInternalServerError, "storage failure")
	}

	return ok(c, prefs)
}

func (s *Rest) putPrefs(c echo.Context) error {
	id := c.Param("profile")
	if _, found := s.profile(id); !found {
		return fail(c, http.StatusNotFound, "unknown profile")
	}

	var prefs store.Prefs
	if err := c.Bind(&prefs); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	for group := range prefs.Enabled {
		if !group.Valid() {
			return fail(c, http.StatusBadRequest, "unknown group")
		}
	}

	if err := s.Store.PutPrefs(c.Request().Context(), id, prefs); err != nil {
		s.Logger.ErrorContext(c.Request().Context(), "failed to put prefs", slog.Any("err", err))
		return fail(c, http.StatusInternalServerError, "storage failure")
	}

	return ok(c, prefs)
}

func (s *Rest) listSources(c echo.Context) error {
	return ok(c, s.sources(c))
}

func (s *Rest) addSource(c echo.Context) error {
	var src store.FeedSource
	if err := c.Bind(&src); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	src.Key = strings.TrimSpace(src.Key)
	src.Name = strings.TrimSpace(src.Name)
	if src.Key == "" || src.Name == "" {
		return fail(c, http.StatusBadRequest, "key and name are required")
	}
	if !validSourceURL(src.URL) {
		return fail(c, http.StatusBadRequest, "invalid url")
	}
	if src.Group == "" {
		src.Group = store.GroupCustom
	}
	if !src.Group.Valid() {
		return fail(c, http.StatusBadRequest, "unknown group")
	}

	if err := s.Store.PutSource(c.Request().Context(), src); err != nil {
		s.Logger.ErrorContext(c.Request().Context(), "failed to put source", slog.Any("err", err))
		return fail(c, http.StatusInternalServerError, "storage failure")
	}

	return ok(c, src)
}

func (s *Rest) deleteSource(c echo.Context) error {
	key := c.Param("key")

	err := s.Store.DeleteSource(c.Request().Context(), key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fail(c, http.StatusNotFound, "unknown source")
	case err != nil:
		s.Logger.ErrorContext(c.Request().Context(), "failed to delete source", slog.Any("err", err))
		return fail(c, http.StatusInternalServerError, "storage failure")
	}

	return ok(c, map[string]string{"deleted": key})
}
