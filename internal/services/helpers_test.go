package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/tourconfig-backend/internal/configurator"
	"github.com/yungbote/tourconfig-backend/internal/platform/ctxutil"
	"github.com/yungbote/tourconfig-backend/internal/platform/gcp"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
	"github.com/yungbote/tourconfig-backend/internal/realtime"
)

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

func (e *recordingEmitter) events() []realtime.SSEEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]realtime.SSEEvent, 0, len(e.msgs))
	for _, m := range e.msgs {
		out = append(out, m.Event)
	}
	return out
}

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeBucket() *fakeBucket { return &fakeBucket{objects: map[string][]byte{}} }

func (b *fakeBucket) UploadFile(_ context.Context, _ gcp.BucketCategory, key string, file io.Reader) error {
	raw, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = raw
	return nil
}

func (b *fakeBucket) DeleteFile(_ context.Context, _ gcp.BucketCategory, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *fakeBucket) DownloadFile(_ context.Context, _ gcp.BucketCategory, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	raw, ok := b.objects[key]
	if !ok {
		return nil, gcp.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (b *fakeBucket) GetObjectAttrs(_ context.Context, _ gcp.BucketCategory, key string) (*gcp.ObjectAttrs, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	raw, ok := b.objects[key]
	if !ok {
		return nil, gcp.ErrObjectNotFound
	}
	return &gcp.ObjectAttrs{Size: int64(len(raw))}, nil
}

func (b *fakeBucket) ListKeys(_ context.Context, _ gcp.BucketCategory, _ string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []string{}
	for k := range b.objects {
		out = append(out, k)
	}
	return out, nil
}

func (b *fakeBucket) GetPublicURL(_ gcp.BucketCategory, key string) string {
	return "https://cdn.test/" + key
}

func testCatalogStore(t *testing.T) *configurator.Store {
	t.Helper()
	store := configurator.NewStore(logger.Nop(), configurator.DirSource{Dir: "../configurator/testdata"})
	if _, err := store.Reload(context.Background()); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return store
}

func withRequestData(userID, sessionID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID, SessionID: sessionID})
}
