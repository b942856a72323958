package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tourconfig-backend/internal/http/response"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
	"github.com/yungbote/tourconfig-backend/internal/services"
)

type ConfigurationHandler struct {
	log            *logger.Logger
	configurations services.ConfigurationService
}

func NewConfigurationHandler(log *logger.Logger, svc services.ConfigurationService) *ConfigurationHandler {
	return &ConfigurationHandler{log: log.With("handler", "ConfigurationHandler"), configurations: svc}
}

// POST /api/configurations
func (h *ConfigurationHandler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required,max=120"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	saved, err := h.configurations.Save(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, h.log, err, "save_configuration_failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"configuration": saved})
}

// GET /api/configurations
func (h *ConfigurationHandler) List(c *gin.Context) {
	list, err := h.configurations.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err, "list_configurations_failed")
		return
	}
	response.RespondOK(c, gin.H{"configurations": list})
}

// POST /api/configurations/:id/apply
func (h *ConfigurationHandler) Apply(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	view, err := h.configurations.Apply(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err, "apply_configuration_failed")
		return
	}
	response.RespondOK(c, view)
}

// DELETE /api/configurations/:id
func (h *ConfigurationHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.configurations.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, err, "delete_configuration_failed")
		return
	}
	c.Status(http.StatusNoContent)
}
