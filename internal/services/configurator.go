package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/tourconfig-backend/internal/configurator"
	"github.com/yungbote/tourconfig-backend/internal/data/selectionstore"
	"github.com/yungbote/tourconfig-backend/internal/observability"
	"github.com/yungbote/tourconfig-backend/internal/platform/apierr"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
)

// SessionView is the session state plus what the matcher makes of it.
type SessionView struct {
	SessionID      uuid.UUID              `json:"sessionId"`
	Selection      configurator.Selection `json:"selection"`
	SceneID        string                 `json:"sceneId,omitempty"`
	Matched        bool                   `json:"matched"`
	MatchedSceneID string                 `json:"matchedSceneId,omitempty"`
	SceneChanged   bool                   `json:"sceneChanged"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

type MatchResult struct {
	Matched    bool                      `json:"matched"`
	Index      int                       `json:"index"`
	Scene      *configurator.SceneRecord `json:"scene,omitempty"`
	Candidates []string                  `json:"candidates"`
}

type ConfiguratorService interface {
	Snapshot() (*configurator.Snapshot, error)
	ReloadCatalog(ctx context.Context) (*configurator.Snapshot, error)

	GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionView, error)
	// UpdateSelection applies one fixture patch, re-matches, and switches the
	// session scene when a different scene matched. NotFound keeps the scene.
	UpdateSelection(ctx context.Context, sessionID uuid.UUID, fixtureKey string, patch configurator.FixturePatch) (*SessionView, error)
	// ReplaceSelection swaps the whole selection, with the same switching rule.
	// Fixtures the catalog no longer has are dropped.
	ReplaceSelection(ctx context.Context, sessionID uuid.UUID, sel configurator.Selection) (*SessionView, error)
	SwitchScene(ctx context.Context, sessionID uuid.UUID, sceneID string) (*SessionView, error)
	ResetSession(ctx context.Context, sessionID uuid.UUID) error
	Match(ctx context.Context, sessionID uuid.UUID) (*MatchResult, error)
	Tour(ctx context.Context, sessionID uuid.UUID, assetURL func(key string) string) (configurator.Tour, error)
}

type configuratorService struct {
	log      *logger.Logger
	catalog  *configurator.Store
	store    selectionstore.Store
	notifier SessionNotifier
}

func NewConfiguratorService(log *logger.Logger, catalog *configurator.Store, store selectionstore.Store, notifier SessionNotifier) ConfiguratorService {
	return &configuratorService{
		log:      log.With("service", "ConfiguratorService"),
		catalog:  catalog,
		store:    store,
		notifier: notifier,
	}
}

func (s *configuratorService) Snapshot() (*configurator.Snapshot, error) {
	snap, err := s.catalog.Snapshot()
	if err != nil {
		return nil, apierr.New(http.StatusServiceUnavailable, "catalog_unavailable", err)
	}
	return snap, nil
}

func (s *configuratorService) ReloadCatalog(ctx context.Context) (*configurator.Snapshot, error) {
	snap, err := s.catalog.Reload(ctx)
	if err != nil {
		var verr *configurator.ValidationError
		if errors.As(err, &verr) {
			return nil, apierr.New(http.StatusUnprocessableEntity, "invalid_catalog", err)
		}
		return nil, fmt.Errorf("reload catalog: %w", err)
	}
	if s.notifier != nil {
		s.notifier.CatalogReloaded(ctx, snap)
	}
	return snap, nil
}

func (s *configuratorService) GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionView, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	st, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	sel := st.Selection.Normalize(snap.Product.FixtureTypes())
	view := newSessionView(st, sel)
	if rec, ok := configurator.Match(snap.Scenes, sel); ok {
		view.Matched = true
		view.MatchedSceneID = rec.SceneID
	}
	return view, nil
}

func (s *configuratorService) UpdateSelection(ctx context.Context, sessionID uuid.UUID, fixtureKey string, patch configurator.FixturePatch) (*SessionView, error) {
	ctx, span := observability.Tracer().Start(ctx, "configurator.UpdateSelection")
	defer span.End()

	fixture, ok := configurator.ParseFixtureType(fixtureKey)
	if !ok {
		return nil, apierr.BadRequest("unknown_fixture", fmt.Errorf("unknown fixture %q", fixtureKey))
	}
	span.SetAttributes(attribute.String("fixture", string(fixture)))

	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	if _, ok := snap.Product.Fixture(fixture); !ok {
		return nil, apierr.BadRequest("unknown_fixture", fmt.Errorf("fixture %q is not in the catalog", fixture))
	}

	view, err := s.apply(ctx, snap, sessionID, func(sel configurator.Selection) (configurator.Selection, error) {
		resolved, err := configurator.ResolvePatch(snap.Product, fixture, sel[fixture], patch)
		if err != nil {
			return nil, apierr.BadRequest("invalid_option_index", err)
		}
		return sel.Update(fixture, resolved), nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("matched", view.Matched),
		attribute.Bool("scene_changed", view.SceneChanged),
	)
	return view, nil
}

func (s *configuratorService) ReplaceSelection(ctx context.Context, sessionID uuid.UUID, sel configurator.Selection) (*SessionView, error) {
	ctx, span := observability.Tracer().Start(ctx, "configurator.ReplaceSelection")
	defer span.End()

	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	replacement := configurator.Selection{}
	for ft, fs := range sel {
		if _, ok := snap.Product.Fixture(ft); !ok {
			s.log.Debug("dropping fixture not in catalog", "fixture", string(ft))
			continue
		}
		replacement[ft] = fs
	}
	return s.apply(ctx, snap, sessionID, func(configurator.Selection) (configurator.Selection, error) {
		return replacement, nil
	})
}

// apply runs one read-modify-write of the session and emits events after it commits.
func (s *configuratorService) apply(
	ctx context.Context,
	snap *configurator.Snapshot,
	sessionID uuid.UUID,
	next func(configurator.Selection) (configurator.Selection, error),
) (*SessionView, error) {
	fixtures := snap.Product.FixtureTypes()
	var (
		matched    configurator.SceneRecord
		didMatch   bool
		changed    bool
		normalized configurator.Selection
	)
	st, err := s.store.Update(ctx, sessionID, func(st *selectionstore.SessionState) error {
		sel, err := next(st.Selection.Normalize(fixtures))
		if err != nil {
			return err
		}
		normalized = sel.Normalize(fixtures)
		matched, didMatch = configurator.Match(snap.Scenes, normalized)
		changed = didMatch && matched.SceneID != st.SceneID
		st.Selection = normalized
		if changed {
			st.SceneID = matched.SceneID
		}
		return nil
	})
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		if errors.Is(err, selectionstore.ErrConflict) {
			return nil, apierr.Conflict("selection_conflict", err)
		}
		return nil, fmt.Errorf("update session: %w", err)
	}

	view := newSessionView(st, normalized)
	view.Matched = didMatch
	view.SceneChanged = changed
	if didMatch {
		view.MatchedSceneID = matched.SceneID
	} else {
		s.log.Debug("selection matched no scene; keeping current", "session_id", sessionID.String(), "scene_id", st.SceneID)
	}
	if s.notifier != nil {
		s.notifier.SelectionChanged(ctx, view)
		if changed {
			s.notifier.SceneChanged(ctx, sessionID, matched)
		}
	}
	return view, nil
}

func (s *configuratorService) SwitchScene(ctx context.Context, sessionID uuid.UUID, sceneID string) (*SessionView, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	rec, ok := snap.Scenes.Find(sceneID)
	if !ok {
		return nil, apierr.NotFound("scene_not_found", fmt.Errorf("scene %q not found", sceneID))
	}
	var changed bool
	st, err := s.store.Update(ctx, sessionID, func(st *selectionstore.SessionState) error {
		changed = st.SceneID != rec.SceneID
		st.SceneID = rec.SceneID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("switch scene: %w", err)
	}
	sel := st.Selection.Normalize(snap.Product.FixtureTypes())
	view := newSessionView(st, sel)
	view.SceneChanged = changed
	if m, ok := configurator.Match(snap.Scenes, sel); ok {
		view.Matched = true
		view.MatchedSceneID = m.SceneID
	}
	if changed && s.notifier != nil {
		s.notifier.SceneChanged(ctx, sessionID, rec)
	}
	return view, nil
}

func (s *configuratorService) ResetSession(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

func (s *configuratorService) Match(ctx context.Context, sessionID uuid.UUID) (*MatchResult, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	st, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	sel := st.Selection.Normalize(snap.Product.FixtureTypes())
	out := &MatchResult{Index: -1, Candidates: []string{}}
	for _, i := range configurator.MatchAll(snap.Scenes, sel) {
		out.Candidates = append(out.Candidates, snap.Scenes.Records[i].SceneID)
		if !out.Matched {
			rec := snap.Scenes.Records[i]
			out.Matched, out.Index, out.Scene = true, i, &rec
		}
	}
	return out, nil
}

func (s *configuratorService) Tour(ctx context.Context, sessionID uuid.UUID, assetURL func(key string) string) (configurator.Tour, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return configurator.Tour{}, err
	}
	current := ""
	if sessionID != uuid.Nil {
		st, err := s.store.Get(ctx, sessionID)
		if err != nil {
			return configurator.Tour{}, fmt.Errorf("load session: %w", err)
		}
		current = st.SceneID
	}
	return configurator.BuildTour(snap, assetURL, current), nil
}

func newSessionView(st *selectionstore.SessionState, sel configurator.Selection) *SessionView {
	return &SessionView{
		SessionID: st.SessionID,
		Selection: sel,
		SceneID:   st.SceneID,
		UpdatedAt: st.UpdatedAt,
	}
}
