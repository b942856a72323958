package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tourconfig-backend/internal/http/response"
	"github.com/yungbote/tourconfig-backend/internal/platform/gcp"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
)

// FileHandler streams tour bucket objects to the browser.
type FileHandler struct {
	log    *logger.Logger
	bucket gcp.BucketService
}

func NewFileHandler(log *logger.Logger, bucket gcp.BucketService) *FileHandler {
	return &FileHandler{log: log.With("handler", "FileHandler"), bucket: bucket}
}

// GET /api/files?key=<object key>
func (h *FileHandler) GetFile(c *gin.Context) {
	key, err := objectKeyParam(c.Query("key"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_key", err)
		return
	}
	ctx := c.Request.Context()

	attrs, err := h.bucket.GetObjectAttrs(ctx, gcp.BucketCategoryTour, key)
	if err != nil {
		h.respondStorageError(c, key, err)
		return
	}
	etag := quoteETag(attrs.ETag)
	if etag != "" && etagMatches(c.GetHeader("If-None-Match"), etag) {
		c.Header("ETag", etag)
		c.Status(http.StatusNotModified)
		return
	}

	// HEAD answers from the attrs; GET trusts only the reader it streams, since
	// the object may change between the two calls or be transcoded on read.
	length := attrs.Size
	var body io.ReadCloser
	if c.Request.Method != http.MethodHead {
		body, err = h.bucket.DownloadFile(ctx, gcp.BucketCategoryTour, key)
		if err != nil {
			h.respondStorageError(c, key, err)
			return
		}
		defer body.Close()
		length = -1
		if sr, ok := body.(gcp.SizedReader); ok {
			length = sr.Size()
		}
	}

	contentType := attrs.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	if length >= 0 {
		c.Header("Content-Length", strconv.FormatInt(length, 10))
	}
	if etag != "" {
		c.Header("ETag", etag)
	}
	if !attrs.Updated.IsZero() {
		c.Header("Last-Modified", attrs.Updated.UTC().Format(http.TimeFormat))
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.Status(http.StatusOK)
	if body == nil {
		return
	}
	if _, err := io.Copy(c.Writer, body); err != nil {
		// headers are gone; all that is left is to log it
		h.log.Warn("file stream interrupted", "key", key, "error", err)
	}
}

func (h *FileHandler) respondStorageError(c *gin.Context, key string, err error) {
	if errors.Is(err, gcp.ErrObjectNotFound) {
		response.RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("object not found"))
		return
	}
	h.log.Error("file proxy failed", "key", key, "error", err)
	response.RespondError(c, http.StatusInternalServerError, "storage_error", errInternal)
}

func objectKeyParam(raw string) (string, error) {
	key := strings.TrimLeft(strings.TrimSpace(raw), "/")
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("key must not contain '..'")
	}
	if strings.ContainsAny(key, "\x00\r\n") {
		return "", fmt.Errorf("key contains control characters")
	}
	return key, nil
}

func quoteETag(etag string) string {
	etag = strings.TrimSpace(etag)
	if etag == "" || strings.HasPrefix(etag, `"`) || strings.HasPrefix(etag, `W/"`) {
		return etag
	}
	return `"` + etag + `"`
}

// etagMatches does the weak comparison If-None-Match asks for.
func etagMatches(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == want {
			return true
		}
	}
	return false
}
