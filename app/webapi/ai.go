package webapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alburninet/publisher/app/ai"
)

// pingGenerate answers opening the endpoint in a browser with JSON, so
// a misconfigured deployment is spotted right away.
func (s *Rest) pingGenerate(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "ping": "pong"})
}

func (s *Rest) generate(c echo.Context) error {
	var req struct {
		Topic string `json:"topic"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	draft, err := s.Generator.Generate(c.Request().Context(), req.Topic)
	switch {
	case errors.Is(err, ai.ErrEmptyTopic):
		return fail(c, http.StatusBadRequest, "Inserisci un argomento.")
	case err != nil:
		return s.upstreamFail(c, err)
	}

	return ok(c, draft)
}
