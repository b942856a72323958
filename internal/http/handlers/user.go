package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tourconfig-backend/internal/http/response"
	"github.com/yungbote/tourconfig-backend/internal/platform/gcp"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
	"github.com/yungbote/tourconfig-backend/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
	bucket      gcp.BucketService
}

func NewUserHandler(log *logger.Logger, userService services.UserService, bucket gcp.BucketService) *UserHandler {
	return &UserHandler{log: log.With("handler", "UserHandler"), userService: userService, bucket: bucket}
}

// GET /api/me
func (h *UserHandler) GetMe(c *gin.Context) {
	me, err := h.userService.GetMe(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err, "load_user_failed")
		return
	}
	normalizeUserAvatarURL(h.bucket, me)
	response.RespondOK(c, gin.H{"me": me})
}

// PATCH /api/me
func (h *UserHandler) UpdateName(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name" binding:"required,max=100"`
		LastName  string `json:"last_name" binding:"required,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	me, err := h.userService.UpdateName(c.Request.Context(), req.FirstName, req.LastName)
	if err != nil {
		respondServiceError(c, h.log, err, "update_user_failed")
		return
	}
	normalizeUserAvatarURL(h.bucket, me)
	response.RespondOK(c, gin.H{"me": me})
}
