package services

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/tourconfig-backend/internal/data/repos"
	"github.com/yungbote/tourconfig-backend/internal/data/repos/testutil"
	"github.com/yungbote/tourconfig-backend/internal/platform/apierr"
	"github.com/yungbote/tourconfig-backend/internal/platform/ctxutil"
)

const testJWTSecret = "test-secret"

func newTestAuthService(t *testing.T, bucket *fakeBucket) (AuthService, repos.UserRepo) {
	t.Helper()
	log := testutil.Logger(t)
	gdb := testutil.DB(t)
	userRepo := repos.NewUserRepo(gdb, log)
	var avatars AvatarService
	if bucket != nil {
		var err error
		avatars, err = NewAvatarService(log, bucket, AvatarConfig{})
		if err != nil {
			t.Fatalf("NewAvatarService: %v", err)
		}
	}
	svc := NewAuthService(gdb, log, userRepo, avatars, testJWTSecret, time.Minute, []string{" Admin@Example.com "})
	svc.(*authService).bcryptCost = bcrypt.MinCost
	return svc, userRepo
}

func TestRegisterAndLogin(t *testing.T) {
	bucket := newFakeBucket()
	svc, _ := newTestAuthService(t, bucket)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, RegisterInput{Email: " Admin@Example.com", Password: "hunter2hunter2", FirstName: "ada", LastName: "lovelace"})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Email != "admin@example.com" {
		t.Fatalf("email: want normalized got=%q", user.Email)
	}
	if user.Password == "hunter2hunter2" {
		t.Fatalf("password stored in clear")
	}
	if !strings.HasPrefix(user.AvatarBucketKey, "user_avatar/"+user.ID.String()+"/") {
		t.Fatalf("avatar key: got=%q", user.AvatarBucketKey)
	}
	if _, ok := bucket.objects[user.AvatarBucketKey]; !ok {
		t.Fatalf("avatar not uploaded")
	}

	token, err := svc.LoginUser(ctx, "admin@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	authed, err := svc.SetContextFromToken(ctx, token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(authed)
	if rd == nil || rd.UserID != user.ID || !rd.IsAdmin {
		t.Fatalf("request data: %+v", rd)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t, nil)
	ctx := context.Background()
	in := RegisterInput{Email: "dup@example.com", Password: "password1", FirstName: "A", LastName: "B"}
	if _, err := svc.RegisterUser(ctx, in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	in.Email = "DUP@example.com"
	_, err := svc.RegisterUser(ctx, in)
	if ae := apierr.As(err, ""); ae.Status != http.StatusConflict || ae.Code != "email_taken" {
		t.Fatalf("duplicate: want 409 email_taken got=%v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t, nil)
	ctx := context.Background()
	if _, err := svc.RegisterUser(ctx, RegisterInput{Email: "u@example.com", Password: "password1", FirstName: "U", LastName: "V"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	for _, tc := range []struct{ email, password string }{
		{"u@example.com", "wrong-password"},
		{"nobody@example.com", "password1"},
	} {
		_, err := svc.LoginUser(ctx, tc.email, tc.password)
		if ae := apierr.As(err, ""); ae.Status != http.StatusUnauthorized {
			t.Fatalf("LoginUser(%s): want 401 got=%v", tc.email, err)
		}
	}
}

func TestSetContextFromTokenRejects(t *testing.T) {
	svc, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	claims := JWTClaims{
		Email: "x@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Minute))
	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	for name, tok := range map[string]string{"empty": "", "expired": expired, "wrong key": wrongKey, "alg none": none} {
		if _, err := svc.SetContextFromToken(ctx, tok); err == nil {
			t.Fatalf("%s: want error", name)
		}
	}
}
