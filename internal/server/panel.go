package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"answerhub/internal/knowledge"
)

// knowledgePanel returns an entity summary card for the sidebar. Lookup
// failures fail closed to an empty panel.
func (s *Server) knowledgePanel(c echo.Context) error {
	entity := strings.TrimSpace(c.QueryParam("q"))
	if entity == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	panel, err := s.panels.Build(c.Request().Context(), entity)
	if err != nil {
		s.logger.Printf("knowledge panel %q: %v", entity, err)
		return c.JSON(http.StatusOK, knowledge.Panel{})
	}
	return c.JSON(http.StatusOK, panel)
}
