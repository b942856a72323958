package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/tourconfig-backend/internal/data/repos/user"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type SavedConfigurationRepo = user.SavedConfigurationRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewSavedConfigurationRepo(db *gorm.DB, baseLog *logger.Logger) SavedConfigurationRepo {
	return user.NewSavedConfigurationRepo(db, baseLog)
}
