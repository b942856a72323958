package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/tourconfig-backend/internal/data/db"
	"github.com/yungbote/tourconfig-backend/internal/data/repos"
	types "github.com/yungbote/tourconfig-backend/internal/domain"
	"github.com/yungbote/tourconfig-backend/internal/platform/apierr"
	"github.com/yungbote/tourconfig-backend/internal/platform/ctxutil"
	"github.com/yungbote/tourconfig-backend/internal/platform/dbctx"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
)

var errInvalidCredentials = errors.New("invalid email or password")

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type AuthService interface {
	RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (string, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type JWTClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	avatarService AvatarService
	jwtSecretKey  string
	accessTTL     time.Duration
	adminEmails   map[string]bool
	bcryptCost    int
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	avatarService AvatarService,
	jwtSecretKey string,
	accessTTL time.Duration,
	adminEmails []string,
) AuthService {
	admins := map[string]bool{}
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = true
		}
	}
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		avatarService: avatarService,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		adminEmails:   admins,
		bcryptCost:    bcrypt.DefaultCost,
	}
}

func (as *authService) GetAccessTTL() time.Duration { return as.accessTTL }

func (as *authService) RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	dbc := dbctx.Context{Ctx: ctx}

	exists, err := as.userRepo.EmailExists(dbc, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, apierr.Conflict("email_taken", fmt.Errorf("email already registered"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), as.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &types.User{
		Email:     email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
	if _, err := as.userRepo.Create(dbc, []*types.User{user}); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.Conflict("email_taken", fmt.Errorf("email already registered"))
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if as.avatarService != nil {
		if err := as.avatarService.CreateAndUploadUserAvatar(ctx, user); err != nil {
			as.log.Warn("avatar generation failed (ignored)", "user_id", user.ID.String(), "error", err)
		} else if err := as.userRepo.UpdateAvatarFields(dbc, user.ID, user.AvatarBucketKey, user.AvatarURL, user.AvatarColor); err != nil {
			as.log.Warn("avatar fields update failed (ignored)", "user_id", user.ID.String(), "error", err)
		}
	}
	as.log.Info("user registered", "user_id", user.ID.String(), "email", user.Email)
	return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, error) {
	found, err := as.userRepo.GetByEmails(dbctx.Context{Ctx: ctx}, []string{email})
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if len(found) == 0 {
		return "", apierr.Unauthorized("invalid_credentials", errInvalidCredentials)
	}
	user := found[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apierr.Unauthorized("invalid_credentials", errInvalidCredentials)
	}
	token, err := as.generateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken fills the caller identity into the request data already on ctx.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token")
	}
	claims := &JWTClaims{}
	parsedToken, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid subject: %w", err)
	}
	ctx, rd := ctxutil.EnsureRequestData(ctx)
	rd.UserID = userID
	rd.Email = claims.Email
	rd.IsAdmin = as.adminEmails[strings.ToLower(claims.Email)]
	return ctx, nil
}
