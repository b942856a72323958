package configurator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/tourconfig-backend/internal/observability"
	"github.com/yungbote/tourconfig-backend/internal/platform/gcp"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
)

const (
	ProductCatalogAsset = "product_catalog.json"
	SceneCatalogAsset   = "scenes.json"
)

var ErrCatalogNotLoaded = errors.New("catalog not loaded")

// Source reads catalog assets by name.
type Source interface {
	Read(ctx context.Context, name string) ([]byte, error)
	String() string
}

type DirSource struct {
	Dir string
}

func (s DirSource) Read(_ context.Context, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.Dir, name))
}

func (s DirSource) String() string { return "dir:" + s.Dir }

type BucketSource struct {
	Bucket gcp.BucketService
	Prefix string
}

func (s BucketSource) Read(ctx context.Context, name string) ([]byte, error) {
	rc, err := s.Bucket.DownloadFile(ctx, gcp.BucketCategoryTour, path.Join(s.Prefix, name))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s BucketSource) String() string { return "bucket:" + s.Prefix }

// Snapshot is an immutable view of both catalogs. Never mutate one after Load.
type Snapshot struct {
	Product  ProductCatalog
	Scenes   SceneCatalog
	Source   string
	LoadedAt time.Time
	Warnings []string
}

// Load reads and validates both catalog assets concurrently.
func Load(ctx context.Context, src Source) (*Snapshot, error) {
	ctx, span := observability.Tracer().Start(ctx, "configurator.Load")
	defer span.End()

	var (
		product ProductCatalog
		scenes  SceneCatalog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := src.Read(gctx, ProductCatalogAsset)
		if err != nil {
			return fmt.Errorf("read %s: %w", ProductCatalogAsset, err)
		}
		parsed, err := ParseProductCatalog(raw)
		if err != nil {
			return fmt.Errorf("decode %s: %w", ProductCatalogAsset, err)
		}
		product = parsed
		return nil
	})
	g.Go(func() error {
		raw, err := src.Read(gctx, SceneCatalogAsset)
		if err != nil {
			return fmt.Errorf("read %s: %w", SceneCatalogAsset, err)
		}
		parsed, err := ParseSceneCatalog(raw)
		if err != nil {
			return fmt.Errorf("decode %s: %w", SceneCatalogAsset, err)
		}
		scenes = parsed
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	warnings, err := Validate(product, scenes)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("catalog.scenes", len(scenes.Records)),
		attribute.Int("catalog.fixtures", len(product.Fixtures)),
	)
	return &Snapshot{
		Product:  product,
		Scenes:   scenes,
		Source:   src.String(),
		LoadedAt: time.Now().UTC(),
		Warnings: warnings,
	}, nil
}

func ParseProductCatalog(raw []byte) (ProductCatalog, error) {
	var p ProductCatalog
	if err := json.Unmarshal(raw, &p); err != nil {
		return ProductCatalog{}, err
	}
	return p, nil
}

// ParseSceneCatalog accepts a bare JSON array of records or {"records": [...]}.
func ParseSceneCatalog(raw []byte) (SceneCatalog, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var records []SceneRecord
		if err := json.Unmarshal(raw, &records); err != nil {
			return SceneCatalog{}, err
		}
		return SceneCatalog{Records: records}, nil
	}
	var c SceneCatalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return SceneCatalog{}, err
	}
	return c, nil
}

// Validate rejects catalogs the matcher cannot serve and returns warnings
// for ones it can serve with surprises, such as duplicate fixture tuples.
func Validate(product ProductCatalog, scenes SceneCatalog) ([]string, error) {
	var problems []string
	known := map[FixtureType]bool{}
	for _, f := range product.Fixtures {
		if !f.Type.Valid() {
			problems = append(problems, fmt.Sprintf("product catalog: unknown fixture type %q", f.Type))
			continue
		}
		if known[f.Type] {
			problems = append(problems, fmt.Sprintf("product catalog: duplicate fixture type %q", f.Type))
		}
		known[f.Type] = true
	}
	for _, h := range product.Hotspots {
		if !known[h.Fixture] {
			problems = append(problems, fmt.Sprintf("hotspot %q: fixture %q not in product catalog", h.ID, h.Fixture))
		}
	}

	warnings := []string{}
	seenIDs := map[string]int{}
	for i, r := range scenes.Records {
		if strings.TrimSpace(r.SceneID) == "" {
			problems = append(problems, fmt.Sprintf("scene #%d: empty sceneId", i))
			continue
		}
		if j, dup := seenIDs[r.SceneID]; dup {
			problems = append(problems, fmt.Sprintf("scene %q: duplicate id (records #%d and #%d)", r.SceneID, j, i))
			continue
		}
		seenIDs[r.SceneID] = i
		for ft := range r.Fixtures {
			if !known[ft] {
				problems = append(problems, fmt.Sprintf("scene %q: fixture %q not in product catalog", r.SceneID, ft))
			}
		}
		for j := 0; j < i; j++ {
			if sameFixtures(scenes.Records[j], r) {
				warnings = append(warnings, fmt.Sprintf("scene %q has the same fixtures as %q and is unreachable", r.SceneID, scenes.Records[j].SceneID))
				break
			}
		}
	}
	if len(problems) > 0 {
		return warnings, &ValidationError{Problems: problems}
	}
	return warnings, nil
}

func sameFixtures(a, b SceneRecord) bool {
	if len(a.Fixtures) != len(b.Fixtures) {
		return false
	}
	for ft, fa := range a.Fixtures {
		fb, ok := b.Fixtures[ft]
		if !ok || !fa.Equal(fb) {
			return false
		}
	}
	return true
}

type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid catalog: %s", strings.Join(e.Problems, "; "))
}

// Store holds the current snapshot. Readers never block; Reload swaps the
// pointer and collapses concurrent calls into one load.
type Store struct {
	log     *logger.Logger
	src     Source
	current atomic.Pointer[Snapshot]
	group   singleflight.Group
}

func NewStore(log *logger.Logger, src Source) *Store {
	return &Store{log: log.With("service", "CatalogStore"), src: src}
}

// NewStaticStore serves a fixed snapshot; Reload fails.
func NewStaticStore(log *logger.Logger, snap *Snapshot) *Store {
	s := &Store{log: log.With("service", "CatalogStore")}
	s.current.Store(snap)
	return s
}

func (s *Store) Snapshot() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrCatalogNotLoaded
	}
	return snap, nil
}

func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	if s.src == nil {
		return nil, fmt.Errorf("catalog store has no source")
	}
	// The load is shared by every waiting caller, so it must outlive whichever
	// of them started it. A caller that gives up only stops waiting.
	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("reload", func() (interface{}, error) {
		snap, err := Load(loadCtx, s.src)
		if err != nil {
			return nil, err
		}
		s.current.Store(snap)
		return snap, nil
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		s.log.Error("catalog reload failed", "source", s.src.String(), "error", res.Err)
		return nil, res.Err
	}
	snap := res.Val.(*Snapshot)
	if !res.Shared {
		s.log.Info("catalog loaded",
			"source", snap.Source,
			"scenes", len(snap.Scenes.Records),
			"fixtures", len(snap.Product.Fixtures),
			"warnings", len(snap.Warnings),
		)
		for _, w := range snap.Warnings {
			s.log.Warn("catalog warning", "detail", w)
		}
	}
	return snap, nil
}
