package user

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/tourconfig-backend/internal/domain"
	"github.com/yungbote/tourconfig-backend/internal/platform/dbctx"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
)

type SavedConfigurationRepo interface {
	Create(dbc dbctx.Context, cfg *types.SavedConfiguration) (*types.SavedConfiguration, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.SavedConfiguration, error)
	// GetForUser returns nil, nil when the id does not exist or belongs to another user.
	GetForUser(dbc dbctx.Context, userID, id uuid.UUID) (*types.SavedConfiguration, error)
	SoftDeleteForUser(dbc dbctx.Context, userID, id uuid.UUID) (bool, error)
}

type savedConfigurationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSavedConfigurationRepo(db *gorm.DB, baseLog *logger.Logger) SavedConfigurationRepo {
	return &savedConfigurationRepo{db: db, log: baseLog.With("repo", "SavedConfigurationRepo")}
}

func (r *savedConfigurationRepo) Create(dbc dbctx.Context, cfg *types.SavedConfiguration) (*types.SavedConfiguration, error) {
	if err := dbc.DB(r.db).Create(cfg).Error; err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *savedConfigurationRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.SavedConfiguration, error) {
	results := []*types.SavedConfiguration{}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *savedConfigurationRepo) GetForUser(dbc dbctx.Context, userID, id uuid.UUID) (*types.SavedConfiguration, error) {
	var out types.SavedConfiguration
	err := dbc.DB(r.db).
		Where("id = ? AND user_id = ?", id, userID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *savedConfigurationRepo) SoftDeleteForUser(dbc dbctx.Context, userID, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&types.SavedConfiguration{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
