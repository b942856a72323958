package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/tourconfig-backend/internal/configurator"
	"github.com/yungbote/tourconfig-backend/internal/data/repos"
	types "github.com/yungbote/tourconfig-backend/internal/domain"
	"github.com/yungbote/tourconfig-backend/internal/platform/apierr"
	"github.com/yungbote/tourconfig-backend/internal/platform/dbctx"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
)

// ConfigurationService stores named selections for signed-in users. The
// caller's user and session come from the request data on ctx.
type ConfigurationService interface {
	Save(ctx context.Context, name string) (*types.SavedConfiguration, error)
	List(ctx context.Context) ([]*types.SavedConfiguration, error)
	Apply(ctx context.Context, id uuid.UUID) (*SessionView, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type configurationService struct {
	log          *logger.Logger
	repo         repos.SavedConfigurationRepo
	configurator ConfiguratorService
}

func NewConfigurationService(log *logger.Logger, repo repos.SavedConfigurationRepo, cfgSvc ConfiguratorService) ConfigurationService {
	return &configurationService{
		log:          log.With("service", "ConfigurationService"),
		repo:         repo,
		configurator: cfgSvc,
	}
}

func (s *configurationService) Save(ctx context.Context, name string) (*types.SavedConfiguration, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	sessionID, err := currentSessionID(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.BadRequest("invalid_name", fmt.Errorf("name required"))
	}

	view, err := s.configurator.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(view.Selection)
	if err != nil {
		return nil, fmt.Errorf("encode selection: %w", err)
	}
	saved, err := s.repo.Create(dbctx.Context{Ctx: ctx}, &types.SavedConfiguration{
		UserID:        userID,
		Name:          name,
		SelectionJSON: datatypes.JSON(raw),
		SceneID:       view.MatchedSceneID,
	})
	if err != nil {
		return nil, fmt.Errorf("save configuration: %w", err)
	}
	return saved, nil
}

func (s *configurationService) List(ctx context.Context) ([]*types.SavedConfiguration, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByUser(dbctx.Context{Ctx: ctx}, userID)
}

// Apply loads a saved selection into the session and re-matches it against
// the current catalog, so a scene removed since saving is not restored.
func (s *configurationService) Apply(ctx context.Context, id uuid.UUID) (*SessionView, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	sessionID, err := currentSessionID(ctx)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.GetForUser(dbctx.Context{Ctx: ctx}, userID, id)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if saved == nil {
		return nil, apierr.NotFound("configuration_not_found", fmt.Errorf("configuration not found"))
	}
	var sel configurator.Selection
	if err := json.Unmarshal(saved.SelectionJSON, &sel); err != nil {
		return nil, fmt.Errorf("decode saved selection: %w", err)
	}
	return s.configurator.ReplaceSelection(ctx, sessionID, sel)
}

func (s *configurationService) Delete(ctx context.Context, id uuid.UUID) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	deleted, err := s.repo.SoftDeleteForUser(dbctx.Context{Ctx: ctx}, userID, id)
	if err != nil {
		return fmt.Errorf("delete configuration: %w", err)
	}
	if !deleted {
		return apierr.NotFound("configuration_not_found", fmt.Errorf("configuration not found"))
	}
	return nil
}
