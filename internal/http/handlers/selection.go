package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tourconfig-backend/internal/configurator"
	"github.com/yungbote/tourconfig-backend/internal/http/response"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
	"github.com/yungbote/tourconfig-backend/internal/services"
)

type SelectionHandler struct {
	log          *logger.Logger
	configurator services.ConfiguratorService
}

func NewSelectionHandler(log *logger.Logger, cfg services.ConfiguratorService) *SelectionHandler {
	return &SelectionHandler{log: log.With("handler", "SelectionHandler"), configurator: cfg}
}

// GET /api/session/selection
func (h *SelectionHandler) GetSelection(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	view, err := h.configurator.GetSession(c.Request.Context(), sid)
	if err != nil {
		respondServiceError(c, h.log, err, "load_session_failed")
		return
	}
	response.RespondOK(c, view)
}

// PATCH /api/session/selection/:fixture
//
// Body fields are tri-state: absent keeps, null clears, a value sets.
// Options may also be picked by position with modelIndex/materialIndex/colorIndex.
func (h *SelectionHandler) PatchFixture(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var patch configurator.FixturePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if patch.IsEmpty() {
		response.RespondError(c, http.StatusBadRequest, "empty_patch", fmt.Errorf("patch sets no field"))
		return
	}
	view, err := h.configurator.UpdateSelection(c.Request.Context(), sid, c.Param("fixture"), patch)
	if err != nil {
		respondServiceError(c, h.log, err, "update_selection_failed")
		return
	}
	response.RespondOK(c, view)
}

// PUT /api/session/selection
func (h *SelectionHandler) ReplaceSelection(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var req struct {
		Selection configurator.Selection `json:"selection"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.configurator.ReplaceSelection(c.Request.Context(), sid, req.Selection)
	if err != nil {
		respondServiceError(c, h.log, err, "update_selection_failed")
		return
	}
	response.RespondOK(c, view)
}

// GET /api/session/match
func (h *SelectionHandler) Match(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	res, err := h.configurator.Match(c.Request.Context(), sid)
	if err != nil {
		respondServiceError(c, h.log, err, "match_failed")
		return
	}
	response.RespondOK(c, res)
}

// POST /api/session/scene
func (h *SelectionHandler) SwitchScene(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var req struct {
		SceneID string `json:"sceneId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.configurator.SwitchScene(c.Request.Context(), sid, req.SceneID)
	if err != nil {
		respondServiceError(c, h.log, err, "switch_scene_failed")
		return
	}
	response.RespondOK(c, view)
}

// DELETE /api/session
func (h *SelectionHandler) Reset(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.configurator.ResetSession(c.Request.Context(), sid); err != nil {
		respondServiceError(c, h.log, err, "reset_failed")
		return
	}
	c.Status(http.StatusNoContent)
}
