package services

import (
	"context"
	"strings"
	"time"

	"emporium_back_end/internal/apperr"
	"emporium_back_end/internal/models"
	"emporium_back_end/internal/repository"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IUserService interface {
	List(ctx context.Context, excludeAdmins bool) ([]models.User, error)
	Get(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, actor Actor, id primitive.ObjectID, patch models.UserPatch) (*models.User, error)
	ToggleStatus(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type UserService struct {
	users   repository.IUserRepository
	cache   UserCache
	log     zerolog.Logger
	timeout time.Duration
}

func NewUserService(users repository.IUserRepository, cache UserCache, log zerolog.Logger, timeout time.Duration) *UserService {
	return &UserService{users: users, cache: cache, log: log, timeout: timeout}
}

func (s *UserService) List(ctx context.Context, excludeAdmins bool) ([]models.User, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	users, err := s.users.List(ctx, excludeAdmins)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.User, error) {
	if err := ensureOwner(actor, id); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return user, nil
}

// Update lets users rename themselves. Only admins may change isAdmin.
func (s *UserService) Update(ctx context.Context, actor Actor, id primitive.ObjectID, patch models.UserPatch) (*models.User, error) {
	if err := ensureOwner(actor, id); err != nil {
		return nil, err
	}

	set := bson.M{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validation("name is required")
		}
		set["name"] = name
	}
	if patch.IsAdmin != nil {
		if !actor.IsAdmin {
			return nil, apperr.Forbidden("Only admins can change roles")
		}
		set["isAdmin"] = *patch.IsAdmin
	}
	if len(set) == 0 {
		return nil, apperr.Validation("Nothing to update")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	user, err := s.users.Update(ctx, id, set)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	s.invalidate(ctx, id)
	return user, nil
}

func (s *UserService) ToggleStatus(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	user, err := s.users.ToggleEnabled(ctx, id)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	s.invalidate(ctx, id)
	s.log.Info().Str("user", id.Hex()).Bool("enabled", user.IsEnabled).Msg("user status toggled")
	return user, nil
}

func (s *UserService) invalidate(ctx context.Context, id primitive.ObjectID) {
	if err := s.cache.InvalidateUser(ctx, id.Hex()); err != nil {
		s.log.Debug().Err(err).Msg("user cache invalidation failed")
	}
}
