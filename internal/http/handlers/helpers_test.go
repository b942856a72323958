package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tourconfig-backend/internal/configurator"
	"github.com/yungbote/tourconfig-backend/internal/data/selectionstore"
	"github.com/yungbote/tourconfig-backend/internal/http/middleware"
	"github.com/yungbote/tourconfig-backend/internal/platform/gcp"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
	"github.com/yungbote/tourconfig-backend/internal/services"
)

type memObject struct {
	data        []byte
	contentType string
	etag        string
	updated     time.Time
}

type memBucket struct {
	mu      sync.Mutex
	objects map[string]memObject
	failAll error
	// rewrites replaces an object right after its attrs are read, the way a
	// concurrent upload would.
	rewrites map[string][]byte
	// unsized downloads do not report their length.
	unsized bool
}

type sizedBody struct {
	io.ReadCloser
	size int64
}

func (b sizedBody) Size() int64 { return b.size }

func newMemBucket() *memBucket { return &memBucket{objects: map[string]memObject{}} }

func (b *memBucket) put(key, contentType, etag string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = memObject{
		data:        data,
		contentType: contentType,
		etag:        etag,
		updated:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (b *memBucket) get(key string) (memObject, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failAll != nil {
		return memObject{}, b.failAll
	}
	obj, ok := b.objects[key]
	if !ok {
		return memObject{}, gcp.ErrObjectNotFound
	}
	return obj, nil
}

func (b *memBucket) UploadFile(_ context.Context, _ gcp.BucketCategory, key string, file io.Reader) error {
	raw, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.put(key, "", "", raw)
	return nil
}

func (b *memBucket) DeleteFile(_ context.Context, _ gcp.BucketCategory, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *memBucket) DownloadFile(_ context.Context, _ gcp.BucketCategory, key string) (io.ReadCloser, error) {
	obj, err := b.get(key)
	if err != nil {
		return nil, err
	}
	rc := io.NopCloser(bytes.NewReader(obj.data))
	if b.unsized {
		return rc, nil
	}
	return sizedBody{ReadCloser: rc, size: int64(len(obj.data))}, nil
}

func (b *memBucket) GetObjectAttrs(_ context.Context, _ gcp.BucketCategory, key string) (*gcp.ObjectAttrs, error) {
	obj, err := b.get(key)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	if data, ok := b.rewrites[key]; ok {
		next := obj
		next.data = data
		b.objects[key] = next
		delete(b.rewrites, key)
	}
	b.mu.Unlock()
	return &gcp.ObjectAttrs{Size: int64(len(obj.data)), ContentType: obj.contentType, ETag: obj.etag, Updated: obj.updated}, nil
}

func (b *memBucket) ListKeys(_ context.Context, _ gcp.BucketCategory, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for k := range b.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (b *memBucket) GetPublicURL(_ gcp.BucketCategory, key string) string {
	return "https://storage.test/" + key
}

var errBoom = errors.New("boom")

func newTestConfigurator(t *testing.T) services.ConfiguratorService {
	t.Helper()
	store := configurator.NewStore(logger.Nop(), configurator.DirSource{Dir: "../../configurator/testdata"})
	if _, err := store.Reload(context.Background()); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return services.NewConfiguratorService(logger.Nop(), store, selectionstore.NewMemoryStore(0), nil)
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.AttachRequestContext())
	return r
}

func doRequest(t *testing.T, r http.Handler, method, path, session string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			if err != nil {
				t.Fatalf("marshal body: %v", err)
			}
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(middleware.HeaderSessionID, session)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}
