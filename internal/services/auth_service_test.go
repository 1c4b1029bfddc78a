package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"testing"
	"time"

	"emporium_back_end/internal/apperr"
	"emporium_back_end/internal/models"
	"emporium_back_end/internal/repository"
	"emporium_back_end/internal/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/argon2"
)

func newAuthFixture() (*AuthService, *MockUserRepository, *MockRevoker, *MockNotifier) {
	users := new(MockUserRepository)
	revoker := new(MockRevoker)
	mailer := new(MockNotifier)
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	svc := NewAuthService(users, tokens, revoker, nopCache{}, mailer, zerolog.Nop(), 0)
	svc.async = syncRunner
	return svc, users, revoker, mailer
}

func TestSignup(t *testing.T) {
	svc, users, _, mailer := newAuthFixture()

	users.On("FindByEmail", "new@example.com").Return(nil, repository.ErrNotFound)
	users.On("Create", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.User).ID = primitive.NewObjectID()
	}).Return(nil)
	mailer.On("Send", "new@example.com", mock.Anything, mock.Anything).Return(nil)

	user, session, err := svc.Signup(context.Background(), SignupInput{
		Name:     " New ",
		Email:    " New@Example.com ",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "New", user.Name)
	assert.Equal(t, "new@example.com", user.Email)
	assert.True(t, user.IsEnabled)
	assert.False(t, user.IsAdmin)
	assert.True(t, utils.IsBcryptHash(user.Password))
	require.NotNil(t, session)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, user.ID.Hex(), session.Claims.UserID)
	mailer.AssertExpectations(t)
}

func TestSignup_Rejections(t *testing.T) {
	cases := []struct {
		name string
		in   SignupInput
	}{
		{"missing name", SignupInput{Email: "a@example.com", Password: "password123"}},
		{"bad email", SignupInput{Name: "A", Email: "not-an-email", Password: "password123"}},
		{"short password", SignupInput{Name: "A", Email: "a@example.com", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, users, _, _ := newAuthFixture()
			_, _, err := svc.Signup(context.Background(), tc.in)
			assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
			users.AssertNotCalled(t, "Create", mock.Anything)
		})
	}

	t.Run("duplicate email", func(t *testing.T) {
		svc, users, _, _ := newAuthFixture()
		users.On("FindByEmail", "dup@example.com").Return(&models.User{}, nil)
		_, _, err := svc.Signup(context.Background(), SignupInput{Name: "A", Email: "dup@example.com", Password: "password123"})
		assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
		assert.Equal(t, "User already exists", apperr.PublicMessage(err))
	})
}

func TestLogin(t *testing.T) {
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	id := primitive.NewObjectID()

	t.Run("success", func(t *testing.T) {
		svc, users, _, _ := newAuthFixture()
		users.On("FindByEmail", "a@example.com").Return(&models.User{ID: id, Email: "a@example.com", Password: hash, IsEnabled: true}, nil)
		user, session, err := svc.Login(context.Background(), LoginInput{Email: "A@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.NotEmpty(t, session.Token)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, users, _, _ := newAuthFixture()
		users.On("FindByEmail", "a@example.com").Return(&models.User{ID: id, Password: hash, IsEnabled: true}, nil)
		_, _, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "wrong-password"})
		assert.Equal(t, http.StatusNotFound, apperr.Status(err))
		assert.Equal(t, "Invalid Credentials", apperr.PublicMessage(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, users, _, _ := newAuthFixture()
		users.On("FindByEmail", "ghost@example.com").Return(nil, repository.ErrNotFound)
		_, _, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "password123"})
		assert.Equal(t, http.StatusNotFound, apperr.Status(err))
	})

	t.Run("disabled account", func(t *testing.T) {
		svc, users, _, _ := newAuthFixture()
		users.On("FindByEmail", "a@example.com").Return(&models.User{ID: id, Password: hash, IsEnabled: false}, nil)
		_, _, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "password123"})
		assert.Equal(t, http.StatusForbidden, apperr.Status(err))
		assert.Equal(t, "Your account has been disabled", apperr.PublicMessage(err))
	})
}

func legacyHash(password string) string {
	salt := []byte("0123456789abcdef")
	key := argon2.IDKey([]byte(password), salt, 1, 64*1024, 2, 32)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s", argon2.Version, 64*1024, 1, 2,
		base64.RawStdEncoding.EncodeToString(salt), base64.RawStdEncoding.EncodeToString(key))
}

func TestLogin_UpgradesLegacyHash(t *testing.T) {
	svc, users, _, _ := newAuthFixture()
	id := primitive.NewObjectID()
	users.On("FindByEmail", "old@example.com").Return(&models.User{ID: id, Password: legacyHash("password123"), IsEnabled: true}, nil)

	var stored string
	users.On("Update", id, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(bson.M)["password"].(string)
	}).Return(&models.User{ID: id}, nil)

	user, _, err := svc.Login(context.Background(), LoginInput{Email: "old@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.True(t, utils.IsBcryptHash(stored))
	assert.Equal(t, stored, user.Password)
}

func TestLogout_RevokesToken(t *testing.T) {
	svc, _, revoker, _ := newAuthFixture()
	_, claims, err := svc.tokens.GenerateJWT(models.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	revoker.On("BlacklistToken", claims.ID, mock.AnythingOfType("time.Duration")).Return(nil)
	require.NoError(t, svc.Logout(context.Background(), claims))
	revoker.AssertExpectations(t)

	assert.NoError(t, svc.Logout(context.Background(), nil))
}

func TestCheckAuth(t *testing.T) {
	id := primitive.NewObjectID()

	t.Run("returns user", func(t *testing.T) {
		svc, users, _, _ := newAuthFixture()
		users.On("FindByID", id).Return(&models.User{ID: id, IsEnabled: true}, nil)
		user, err := svc.CheckAuth(context.Background(), Actor{ID: id})
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
	})

	t.Run("deleted user", func(t *testing.T) {
		svc, users, _, _ := newAuthFixture()
		users.On("FindByID", id).Return(nil, repository.ErrNotFound)
		_, err := svc.CheckAuth(context.Background(), Actor{ID: id})
		assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))
	})

	t.Run("disabled user", func(t *testing.T) {
		svc, users, _, _ := newAuthFixture()
		users.On("FindByID", id).Return(&models.User{ID: id}, nil)
		_, err := svc.CheckAuth(context.Background(), Actor{ID: id})
		assert.Equal(t, http.StatusForbidden, apperr.Status(err))
	})
}
