package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/tourconfig-backend/internal/data/repos"
	types "github.com/yungbote/tourconfig-backend/internal/domain"
	"github.com/yungbote/tourconfig-backend/internal/platform/apierr"
	"github.com/yungbote/tourconfig-backend/internal/platform/ctxutil"
	"github.com/yungbote/tourconfig-backend/internal/platform/dbctx"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
)

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateName(ctx context.Context, firstName, lastName string) (*types.User, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	avatars  AvatarService
}

// NewUserService wires profile reads and renames. avatars may be nil, in
// which case a rename leaves the avatar image as it was.
func NewUserService(log *logger.Logger, userRepo repos.UserRepo, avatars AvatarService) UserService {
	return &userService{log: log.With("service", "UserService"), userRepo: userRepo, avatars: avatars}
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	found, err := us.userRepo.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, apierr.NotFound("user_not_found", fmt.Errorf("user does not exist"))
	}
	return found[0], nil
}

func (us *userService) UpdateName(ctx context.Context, firstName, lastName string) (*types.User, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := us.userRepo.UpdateName(dbc, userID, firstName, lastName); err != nil {
		return nil, fmt.Errorf("update name: %w", err)
	}
	user, err := us.GetMe(ctx)
	if err != nil || us.avatars == nil {
		return user, err
	}

	// initials changed; the avatar follows, best effort
	if err := us.avatars.CreateAndUploadUserAvatar(ctx, user); err != nil {
		us.log.Warn("avatar refresh failed (ignored)", "user_id", userID.String(), "error", err)
		return user, nil
	}
	if err := us.userRepo.UpdateAvatarFields(dbc, user.ID, user.AvatarBucketKey, user.AvatarURL, user.AvatarColor); err != nil {
		us.log.Warn("avatar fields update failed (ignored)", "user_id", userID.String(), "error", err)
	}
	return user, nil
}

func currentUserID(ctx context.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("unauthorized", fmt.Errorf("not authenticated"))
	}
	return rd.UserID, nil
}

func currentSessionID(ctx context.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.SessionID == uuid.Nil {
		return uuid.Nil, apierr.BadRequest("missing_session", fmt.Errorf("no session"))
	}
	return rd.SessionID, nil
}
