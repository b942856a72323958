package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/tourconfig-backend/internal/http/handlers"
	httpMW "github.com/yungbote/tourconfig-backend/internal/http/middleware"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
	"github.com/yungbote/tourconfig-backend/internal/services"
)

func TestRouterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	authSvc := services.NewAuthService(nil, log, nil, nil, "secret", time.Minute, nil)
	r := NewRouter(RouterConfig{
		Log:            log,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, authSvc),
		CatalogHandler: httpH.NewCatalogHandler(log, nil, nil, false),
		HealthHandler:  httpH.NewHealthHandler(),
	})

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/healthcheck", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodPost, "/api/admin/catalog/reload", http.StatusUnauthorized},
		{http.MethodGet, "/api/nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.want {
			t.Fatalf("%s %s: want=%d got=%d", tc.method, tc.path, tc.want, rec.Code)
		}
		if rec.Header().Get(httpMW.HeaderSessionID) == "" {
			t.Fatalf("%s %s: no session header", tc.method, tc.path)
		}
	}
}
