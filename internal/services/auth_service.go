package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"emporium_back_end/internal/apperr"
	"emporium_back_end/internal/models"
	"emporium_back_end/internal/repository"
	"emporium_back_end/internal/utils"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
)

// Notifier delivers an HTML email.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// TokenRevoker remembers logged-out token ids.
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// UserCache keeps recently read users.
type UserCache interface {
	GetUser(ctx context.Context, id string) (*models.User, bool)
	SetUser(ctx context.Context, u *models.User) error
	InvalidateUser(ctx context.Context, id string) error
}

type SignupInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is a signed token and its claims.
type Session struct {
	Token  string
	Claims *utils.Claims
}

type IAuthService interface {
	Signup(ctx context.Context, in SignupInput) (*models.User, *Session, error)
	Login(ctx context.Context, in LoginInput) (*models.User, *Session, error)
	Logout(ctx context.Context, claims *utils.Claims) error
	CheckAuth(ctx context.Context, actor Actor) (*models.User, error)
}

type AuthService struct {
	users   repository.IUserRepository
	tokens  *utils.TokenManager
	revoker TokenRevoker
	cache   UserCache
	mailer  Notifier
	log     zerolog.Logger
	timeout time.Duration
	async   runner
}

func NewAuthService(users repository.IUserRepository, tokens *utils.TokenManager, revoker TokenRevoker,
	cache UserCache, mailer Notifier, log zerolog.Logger, timeout time.Duration) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		revoker: revoker,
		cache:   cache,
		mailer:  mailer,
		log:     log,
		timeout: timeout,
		async:   goRunner,
	}
}

var errInvalidCredentials = apperr.NotFound("Invalid Credentials")

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, *Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return nil, nil, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, nil, apperr.Validation("User already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, storeErr(err, "User not found")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, nil, apperr.Internal("Error occured during signup, please try again later", err)
	}

	user := &models.User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  hash,
		IsEnabled: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, apperr.Validation("User already exists")
		}
		return nil, nil, storeErr(err, "User not found")
	}

	session, err := s.issue(*user)
	if err != nil {
		return nil, nil, err
	}

	s.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		subject, body := utils.WelcomeEmail(user.Name)
		if err := s.mailer.Send(ctx, user.Email, subject, body); err != nil {
			s.log.Warn().Err(err).Str("user", user.ID.Hex()).Msg("welcome email not sent")
		}
	})

	s.log.Info().Str("user", user.ID.Hex()).Msg("user signed up")
	return user, session, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, *Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return nil, nil, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, errInvalidCredentials
	}
	if err != nil {
		return nil, nil, storeErr(err, "User not found")
	}

	ok, err := utils.VerifyPassword(in.Password, user.Password)
	if err != nil {
		s.log.Warn().Err(err).Str("user", user.ID.Hex()).Msg("stored password hash unreadable")
	}
	if !ok {
		return nil, nil, errInvalidCredentials
	}
	if !user.IsEnabled {
		return nil, nil, apperr.Forbidden("Your account has been disabled")
	}

	if utils.NeedsRehash(user.Password) {
		s.upgradeHash(ctx, user, in.Password)
	}

	session, err := s.issue(*user)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// upgradeHash replaces a legacy hash with bcrypt. Failure is not fatal.
func (s *AuthService) upgradeHash(ctx context.Context, user *models.User, password string) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return
	}
	if _, err := s.users.Update(ctx, user.ID, bson.M{"password": hash}); err != nil {
		s.log.Warn().Err(err).Str("user", user.ID.Hex()).Msg("password rehash failed")
		return
	}
	user.Password = hash
}

func (s *AuthService) Logout(ctx context.Context, claims *utils.Claims) error {
	if claims == nil {
		return nil
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.revoker.BlacklistToken(ctx, claims.ID, s.tokens.Remaining(claims)); err != nil {
		return apperr.Internal("Error logging out, please try again later", err)
	}
	return nil
}

func (s *AuthService) CheckAuth(ctx context.Context, actor Actor) (*models.User, error) {
	if u, ok := s.cache.GetUser(ctx, actor.ID.Hex()); ok {
		if !u.IsEnabled {
			return nil, apperr.Forbidden("Your account has been disabled")
		}
		return u, nil
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.users.FindByID(ctx, actor.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("Token expired, please login again")
	}
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	if !user.IsEnabled {
		return nil, apperr.Forbidden("Your account has been disabled")
	}
	if err := s.cache.SetUser(ctx, user); err != nil {
		s.log.Debug().Err(err).Msg("user cache write failed")
	}
	return user, nil
}

func (s *AuthService) issue(user models.User) (*Session, error) {
	token, claims, err := s.tokens.GenerateJWT(user)
	if err != nil {
		return nil, apperr.Internal("Error creating session", err)
	}
	return &Session{Token: token, Claims: claims}, nil
}
