package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tourconfig-backend/internal/http/response"
	"github.com/yungbote/tourconfig-backend/internal/platform/apierr"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
)

var errInternal = errors.New("internal error")

// respondServiceError maps service errors onto the error envelope. Anything that
// is not an *apierr.Error is logged and reported as a bare 500.
func respondServiceError(c *gin.Context, log *logger.Logger, err error, fallbackCode string) {
	ae := apierr.As(err, fallbackCode)
	if ae.Status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", "path", c.FullPath(), "code", ae.Code, "error", err)
		}
		response.RespondError(c, ae.Status, ae.Code, errInternal)
		return
	}
	response.RespondError(c, ae.Status, ae.Code, ae)
}
