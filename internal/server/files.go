package server

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
)

const maxUploadBytes = 25 << 20 // 25MB

var allowedUploadExts = map[string]struct{}{
	".pdf": {}, ".txt": {}, ".md": {},
}

// uploadFile accepts a multipart document and indexes it into the
// workspace, minting one if the request carries no workspace id.
func (s *Server) uploadFile(c echo.Context) error {
	ctx := c.Request().Context()

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := allowedUploadExts[ext]; !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported file type (pdf, txt or md)")
	}
	if fh.Size > maxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(data) > maxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}

	ws, err := s.workspaces.Get(ctx, c.FormValue("workspace_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	chunks, err := ws.AddDocument(ctx, fh.Filename, data)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"workspace_id": ws.ID,
		"name":         fh.Filename,
		"chunks":       chunks,
	})
}

// listFiles returns the workspace's uploaded documents.
func (s *Server) listFiles(c echo.Context) error {
	id := c.Param("id")
	ws, ok := s.workspaces.Lookup(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "workspace not found")
	}
	return c.JSON(http.StatusOK, FileListResponse{WorkspaceID: ws.ID, Files: ws.Files()})
}

// clearWorkspace drops the workspace with its documents and index.
func (s *Server) clearWorkspace(c echo.Context) error {
	id := c.Param("id")
	if err := s.workspaces.Clear(id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// getHistory returns the workspace's full transcript, oldest first.
func (s *Server) getHistory(c echo.Context) error {
	id := c.QueryParam("workspace_id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "workspace_id is required")
	}
	msgs, err := s.history.All(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, HistoryResponse{WorkspaceID: id, Messages: msgs})
}

// clearHistory wipes the workspace's transcript.
func (s *Server) clearHistory(c echo.Context) error {
	id := c.QueryParam("workspace_id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "workspace_id is required")
	}
	if err := s.history.Clear(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
