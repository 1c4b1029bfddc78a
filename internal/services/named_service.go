package services

import (
	"context"
	"strings"
	"time"

	"emporium_back_end/internal/apperr"
	"emporium_back_end/internal/models"
	"emporium_back_end/internal/repository"
)

// INamedService lists and creates brands or categories.
type INamedService interface {
	List(ctx context.Context) ([]models.Named, error)
	Create(ctx context.Context, name string) (*models.Named, error)
}

type NamedService struct {
	repo    repository.INamedRepository
	label   string
	timeout time.Duration
}

// NewNamedService builds the service for one collection. label is the
// capitalised resource name used in messages, e.g. "Brand".
func NewNamedService(repo repository.INamedRepository, label string, timeout time.Duration) *NamedService {
	return &NamedService{repo: repo, label: label, timeout: timeout}
}

func (s *NamedService) List(ctx context.Context) ([]models.Named, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeErr(err, s.label+" not found")
	}
	return out, nil
}

func (s *NamedService) Create(ctx context.Context, name string) (*models.Named, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	out, err := s.repo.Create(ctx, name)
	if err != nil {
		return nil, storeErr(err, s.label+" not found")
	}
	return out, nil
}
