package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/tourconfig-backend/internal/http/response"
	"github.com/yungbote/tourconfig-backend/internal/platform/gcp"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
	"github.com/yungbote/tourconfig-backend/internal/services"
)

type CatalogHandler struct {
	log          *logger.Logger
	configurator services.ConfiguratorService
	bucket       gcp.BucketService
	viaProxy     bool
}

func NewCatalogHandler(log *logger.Logger, cfg services.ConfiguratorService, bucket gcp.BucketService, assetsViaProxy bool) *CatalogHandler {
	return &CatalogHandler{
		log:          log.With("handler", "CatalogHandler"),
		configurator: cfg,
		bucket:       bucket,
		viaProxy:     assetsViaProxy,
	}
}

// GET /api/catalog
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	snap, err := h.configurator.Snapshot()
	if err != nil {
		respondServiceError(c, h.log, err, "catalog_unavailable")
		return
	}
	response.RespondOK(c, snap.Product)
}

// GET /api/scenes
func (h *CatalogHandler) ListScenes(c *gin.Context) {
	snap, err := h.configurator.Snapshot()
	if err != nil {
		respondServiceError(c, h.log, err, "catalog_unavailable")
		return
	}
	response.RespondOK(c, gin.H{"scenes": snap.Scenes.Records})
}

// GET /api/tour
func (h *CatalogHandler) GetTour(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	tour, err := h.configurator.Tour(c.Request.Context(), sid, tourAssetURL(h.bucket, h.viaProxy))
	if err != nil {
		respondServiceError(c, h.log, err, "tour_failed")
		return
	}
	response.RespondOK(c, tour)
}

// POST /api/admin/catalog/reload
func (h *CatalogHandler) Reload(c *gin.Context) {
	snap, err := h.configurator.ReloadCatalog(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err, "reload_failed")
		return
	}
	response.RespondOK(c, gin.H{
		"source":   snap.Source,
		"loadedAt": snap.LoadedAt,
		"scenes":   len(snap.Scenes.Records),
		"fixtures": len(snap.Product.Fixtures),
		"warnings": snap.Warnings,
	})
}
