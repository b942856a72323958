package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/tourconfig-backend/internal/data/repos"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
)

type Repos struct {
	User               repos.UserRepo
	SavedConfiguration repos.SavedConfigurationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:               repos.NewUserRepo(db, log),
		SavedConfiguration: repos.NewSavedConfigurationRepo(db, log),
	}
}
