package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/tourconfig-backend/internal/platform/ctxutil"
)

const (
	HeaderSessionID   = "X-Session-Id"
	SessionCookieName = "tour_session"

	sessionCookieMaxAge = 60 * 60 * 24 * 30
)

// AttachRequestContext puts a RequestData carrying the configurator session on
// every request. The session comes from the X-Session-Id header, then the
// session cookie; a new one is minted and set as a cookie when neither parses.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sessionFromRequest(c)
		if !ok {
			sessionID = uuid.New()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookieName, sessionID.String(), sessionCookieMaxAge, "/", "", c.Request.TLS != nil, true)
		}
		ctx, rd := ctxutil.EnsureRequestData(c.Request.Context())
		rd.SessionID = sessionID
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(HeaderSessionID, sessionID.String())
		c.Next()
	}
}

func sessionFromRequest(c *gin.Context) (uuid.UUID, bool) {
	if raw := strings.TrimSpace(c.GetHeader(HeaderSessionID)); raw != "" {
		if id, err := uuid.Parse(raw); err == nil && id != uuid.Nil {
			return id, true
		}
	}
	if raw, err := c.Cookie(SessionCookieName); err == nil {
		if id, err := uuid.Parse(strings.TrimSpace(raw)); err == nil && id != uuid.Nil {
			return id, true
		}
	}
	return uuid.Nil, false
}
