package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/tourconfig-backend/internal/http/response"
	"github.com/yungbote/tourconfig-backend/internal/platform/ctxutil"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
	"github.com/yungbote/tourconfig-backend/internal/realtime"
)

type RealtimeHandler struct {
	Log *logger.Logger
	Hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{Log: log.With("handler", "RealtimeHandler"), Hub: hub}
}

// SSEStream subscribes the caller to its session channel and the broadcast
// channel, then blocks until the client goes away.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.SessionID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "missing_session", fmt.Errorf("no session"))
		return
	}
	client := h.Hub.NewSSEClient(rd.SessionID)
	client.Logger = h.Log.With("sse_client_id", client.ID.String(), "session_id", rd.SessionID.String())
	h.Hub.AddChannel(client, realtime.SessionChannel(rd.SessionID))
	h.Hub.AddChannel(client, realtime.BroadcastChannel)
	client.Logger.Debug("SSEStream open")

	h.Hub.ServeHTTP(c.Writer, c.Request, client)

	h.Hub.CloseClient(client)
	client.Logger.Debug("SSEStream closed")
}
