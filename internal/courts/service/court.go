package service

import (
	"context"
	"errors"

	courterrors "courtbook/internal/courts/errors"
	"courtbook/internal/courts/repository"
	"courtbook/pkg/config"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"
)

type CourtService interface {
	GetByID(ctx context.Context, id string) (*model.Court, error)
	List(ctx context.Context, category string) ([]*model.Court, error)
}

type courtService struct {
	repo repository.CourtRepository
	cfg  *config.Config
}

func NewCourtService(repo repository.CourtRepository, cfg *config.Config) CourtService {
	return &courtService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *courtService) GetByID(ctx context.Context, id string) (*model.Court, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Court ID cannot be empty")
	}

	court, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, courterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Court", id)
		}
		if errors.Is(err, courterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid court ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve court", err)
	}

	return court, nil
}

func (s *courtService) List(ctx context.Context, category string) ([]*model.Court, error) {
	if category != "" && !validCategory(category) {
		return nil, apperrors.InvalidInput("Unknown court category: " + category)
	}

	courts, err := s.repo.ListActive(ctx, category)
	if err != nil {
		s.cfg.Log.Error("Failed to list courts", "category", category, "error", err)
		return nil, apperrors.Internal("Failed to list courts", err)
	}

	return courts, nil
}

func validCategory(category string) bool {
	switch category {
	case model.CategoryTennis, model.CategoryBasketball, model.CategoryVolleyball:
		return true
	}
	return false
}
