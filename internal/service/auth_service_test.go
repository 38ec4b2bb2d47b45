package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"appointment-backend/internal/models"
	"appointment-backend/internal/repository"
	"appointment-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCredentials struct {
	mu     sync.Mutex
	users  map[string]models.User
	tokens map[string]models.RefreshToken
}

func newFakeCredentials() *fakeCredentials {
	return &fakeCredentials{users: map[string]models.User{}, tokens: map[string]models.RefreshToken{}}
}

func (f *fakeCredentials) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f *fakeCredentials) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = uint(len(f.users) + 1)
	f.users[user.Username] = *user
	return nil
}

func (f *fakeCredentials) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == token.UserID {
			token.User = u
		}
	}
	f.tokens[token.TokenHash] = *token
	return nil
}

func (f *fakeCredentials) FindRefreshTokenByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[hash]
	if !ok || t.Revoked {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (f *fakeCredentials) RevokeRefreshTokenByHash(_ context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tokens[hash]; ok {
		t.Revoked = true
		f.tokens[hash] = t
	}
	return nil
}

func newAuthFixture() (*AuthService, *utils.JWTManager, *fakeAudit) {
	jwt := utils.NewJWTManager("test-secret", time.Minute, time.Hour)
	audit := &fakeAudit{}
	return NewAuthService(newFakeCredentials(), audit, jwt), jwt, audit
}

func TestAuthService_RegisterLoginRefreshLogout(t *testing.T) {
	svc, jwt, audit := newAuthFixture()

	reg, err := svc.Register(ctx, RegisterInput{Username: "jroe", Password: "secret1", Name: "Jane Roe"})
	require.NoError(t, err)
	assert.Equal(t, models.RolePatient, reg.User.Role)

	claims, err := jwt.ValidateAccessToken(reg.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)

	_, err = svc.Register(ctx, RegisterInput{Username: "jroe", Password: "other12"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Login(ctx, "jroe", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := svc.Login(ctx, "jroe", "secret1")
	require.NoError(t, err)

	access, err := svc.RefreshAccessToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken))
	_, err = svc.RefreshAccessToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	assert.Equal(t, []string{"user_registration", "user_login"}, audit.actions)
}

func TestAuthService_RefreshExpired(t *testing.T) {
	svc, _, _ := newAuthFixture()

	reg, err := svc.Register(ctx, RegisterInput{Username: "admin", Password: "secret1", Role: models.RoleAdmin})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.RefreshAccessToken(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenExpired)
}

func TestAuthService_LoginUnknownUser(t *testing.T) {
	svc, _, audit := newAuthFixture()

	_, err := svc.Login(ctx, "ghost", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, audit.actions)
}

func TestAuthService_RegisterPasswordTooLong(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Register(ctx, RegisterInput{Username: "jroe", Password: strings.Repeat("p", 73)})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
