// Package services holds the shop's business rules. Handlers call the
// I*Service interfaces; repositories and integrations are injected.
package services

import (
	"context"
	"errors"
	"time"

	"emporium_back_end/internal/apperr"
	"emporium_back_end/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultTimeout bounds each database round trip when none is configured.
const DefaultTimeout = 5 * time.Second

// Actor is the authenticated caller.
type Actor struct {
	ID      primitive.ObjectID
	Email   string
	IsAdmin bool
}

// CanAccess reports whether the actor may touch a resource owned by owner.
func (a Actor) CanAccess(owner primitive.ObjectID) bool {
	return a.IsAdmin || a.ID == owner
}

func ensureOwner(actor Actor, owner primitive.ObjectID) error {
	if !actor.CanAccess(owner) {
		return apperr.Forbidden("You are not allowed to access this resource")
	}
	return nil
}

// ParseID validates a 24-hex ObjectID taken from a path or body.
func ParseID(raw, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid %s id", what)
	}
	return id, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(ctx, d)
}

// storeErr classifies a repository error for the given resource name.
func storeErr(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("%s", notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict("Resource already exists")
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Unavailable("Database timed out, please try again later")
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Internal("Something went wrong, please try again later", err)
}

// runner executes background work such as emails and events.
type runner func(func())

func goRunner(f func()) { go f() }
