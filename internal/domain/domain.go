package domain

import "github.com/yungbote/tourconfig-backend/internal/domain/user"

type User = user.User
type SavedConfiguration = user.SavedConfiguration
