package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/config"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/dto"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/model"
)

type stubUserRepo struct {
	users map[uuid.UUID]model.User
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = *u
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			cp := u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func newAuthFixture(t *testing.T) (AuthService, *stubUserRepo, uuid.UUID) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("bakery2026"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubUserRepo{users: map[uuid.UUID]model.User{}}
	u := model.User{Username: "baker1", Name: "Baker One", PasswordHash: string(hash), Role: "baker", Active: true}
	require.NoError(t, repo.Create(context.Background(), &u))

	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 1, JWTRefreshHours: 2}
	return NewAuthService(repo, cfg), repo, u.ID
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, _, userID := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "baker1", Password: "bakery2026"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, userID.String(), resp.User.ID)
	assert.Equal(t, "baker", resp.User.Role)

	// The access token carries the identity claims.
	token, err := jwt.Parse(resp.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, userID.String(), claims["user_id"])
	assert.Equal(t, "baker1", claims["username"])
	assert.Equal(t, "baker", claims["role"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "baker1", Password: "wrong"})
	assert.EqualError(t, err, "invalid credentials")
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "ghost", Password: "bakery2026"})
	assert.EqualError(t, err, "invalid credentials")
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "baker1", Password: "bakery2026"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, login.User.ID, refreshed.User.ID)
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, err := svc.Refresh(context.Background(), "not-a-token")
	assert.Error(t, err)
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	svc, repo, userID := newAuthFixture(t)
	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "baker1", Password: "bakery2026"})
	require.NoError(t, err)

	u := repo.users[userID]
	u.Active = false
	repo.users[userID] = u

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.EqualError(t, err, "user not found or inactive")
}

func TestRefreshRejectsWrongSigningKey(t *testing.T) {
	svc, _, userID := newAuthFixture(t)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	tokenStr, err := forged.SignedString([]byte("attacker-key"))
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), tokenStr)
	assert.EqualError(t, err, "refresh token invalid or expired")
}
