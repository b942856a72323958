package configurator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
)

type memSource struct {
	assets map[string]string
	reads  atomic.Int32
	delay  time.Duration
}

func (s *memSource) Read(ctx context.Context, name string) ([]byte, error) {
	s.reads.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	raw, ok := s.assets[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, os.ErrNotExist)
	}
	return []byte(raw), nil
}

func (s *memSource) String() string { return "mem" }

const minimalProduct = `{"fixtures":[{"type":"bathtub","categoryId":1,"models":[{"id":1}]},{"type":"sink","categoryId":2,"models":[{"id":4}]}]}`

func TestLoadTestdata(t *testing.T) {
	snap := loadTestSnapshot(t)
	if got := len(snap.Scenes.Records); got != 4 {
		t.Fatalf("scenes: want=4 got=%d", got)
	}
	if got := len(snap.Product.Fixtures); got != 3 {
		t.Fatalf("fixtures: want=3 got=%d", got)
	}
	if len(snap.Warnings) != 0 {
		t.Fatalf("warnings: want none got=%v", snap.Warnings)
	}
	if snap.Source != "dir:testdata" {
		t.Fatalf("source: got=%q", snap.Source)
	}
}

func TestLoadAcceptsRecordsObject(t *testing.T) {
	src := &memSource{assets: map[string]string{
		ProductCatalogAsset: minimalProduct,
		SceneCatalogAsset:   `{"records":[{"sceneId":"a","fixtures":{"bathtub":{"modelId":1}}}]}`,
	}}
	snap, err := Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Scenes.Records) != 1 || snap.Scenes.Records[0].SceneID != "a" {
		t.Fatalf("records: got=%+v", snap.Scenes.Records)
	}
}

func TestLoadMissingAsset(t *testing.T) {
	src := &memSource{assets: map[string]string{ProductCatalogAsset: minimalProduct}}
	_, err := Load(context.Background(), src)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load: want os.ErrNotExist got=%v", err)
	}
}

func TestValidateRejectsBrokenCatalogs(t *testing.T) {
	cases := map[string]string{
		"duplicate id":    `[{"sceneId":"a","fixtures":{}},{"sceneId":"a","fixtures":{}}]`,
		"empty id":        `[{"sceneId":" ","fixtures":{}}]`,
		"unknown fixture": `[{"sceneId":"a","fixtures":{"mirror":{"modelId":1}}}]`,
		"uncataloged":     `[{"sceneId":"a","fixtures":{"floor":{"modelId":1}}}]`,
	}
	for name, scenes := range cases {
		src := &memSource{assets: map[string]string{ProductCatalogAsset: minimalProduct, SceneCatalogAsset: scenes}}
		_, err := Load(context.Background(), src)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: want ValidationError got=%v", name, err)
		}
	}
}

func TestValidateWarnsOnDuplicateFixtures(t *testing.T) {
	scenes := `[
		{"sceneId":"a","fixtures":{"bathtub":{"modelId":1},"sink":{"modelId":4}}},
		{"sceneId":"b","fixtures":{"bathtub":{"modelId":"1"},"sink":{"modelId":4}}}
	]`
	src := &memSource{assets: map[string]string{ProductCatalogAsset: minimalProduct, SceneCatalogAsset: scenes}}
	snap, err := Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Warnings) != 1 || !strings.Contains(snap.Warnings[0], `"b"`) {
		t.Fatalf("warnings: got=%v", snap.Warnings)
	}
}

func TestStoreSnapshotBeforeLoad(t *testing.T) {
	s := NewStore(logger.Nop(), &memSource{})
	if _, err := s.Snapshot(); !errors.Is(err, ErrCatalogNotLoaded) {
		t.Fatalf("Snapshot: want ErrCatalogNotLoaded got=%v", err)
	}
}

func TestStoreReloadCollapsesConcurrentCalls(t *testing.T) {
	src := &memSource{
		assets: map[string]string{
			ProductCatalogAsset: minimalProduct,
			SceneCatalogAsset:   `[{"sceneId":"a","fixtures":{"bathtub":{"modelId":1}}}]`,
		},
		delay: 50 * time.Millisecond,
	}
	s := NewStore(logger.Nop(), src)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Reload(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Reload: %v", err)
		}
	}
	if got := src.reads.Load(); got >= 16 {
		t.Fatalf("reads: want fewer than one load per caller got=%d", got)
	}
	snap, err := s.Snapshot()
	if err != nil || snap.Scenes.Records[0].SceneID != "a" {
		t.Fatalf("Snapshot after reload: snap=%v err=%v", snap, err)
	}
}

func TestStoreReloadSurvivesFirstCallerCancel(t *testing.T) {
	src := &memSource{
		assets: map[string]string{
			ProductCatalogAsset: minimalProduct,
			SceneCatalogAsset:   `[{"sceneId":"a","fixtures":{"bathtub":{"modelId":1}}}]`,
		},
		delay: 200 * time.Millisecond,
	}
	s := NewStore(logger.Nop(), src)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := s.Reload(ctx)
		first <- err
	}()
	// Let the first caller start the shared load before the second joins it.
	time.Sleep(50 * time.Millisecond)
	second := make(chan error, 1)
	go func() {
		_, err := s.Reload(context.Background())
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller: want context.Canceled got=%v", err)
	}
	if err := <-second; err != nil {
		t.Fatalf("joined caller: want success got=%v", err)
	}
	snap, err := s.Snapshot()
	if err != nil || snap.Scenes.Records[0].SceneID != "a" {
		t.Fatalf("Snapshot after reload: snap=%v err=%v", snap, err)
	}
}

func TestStoreReloadFailureKeepsPreviousSnapshot(t *testing.T) {
	src := &memSource{assets: map[string]string{
		ProductCatalogAsset: minimalProduct,
		SceneCatalogAsset:   `[{"sceneId":"a","fixtures":{}}]`,
	}}
	s := NewStore(logger.Nop(), src)
	if _, err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	src.assets[SceneCatalogAsset] = `[{"sceneId":"a"},{"sceneId":"a"}]`
	if _, err := s.Reload(context.Background()); err == nil {
		t.Fatalf("Reload(broken): want error")
	}
	snap, _ := s.Snapshot()
	if len(snap.Scenes.Records) != 1 {
		t.Fatalf("snapshot replaced by broken catalog: %+v", snap.Scenes)
	}
}
