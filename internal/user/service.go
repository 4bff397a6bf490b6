package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/vesta-ledger/internal"
)

type Repository interface {
	GetByID(ctx context.Context, userID string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, profile Profile) (*User, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetCurrent(ctx context.Context) (*User, error) {
	userID, err := internal.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, internal.NewStorageError("failed to get user by id", err)
	}
	return u, nil
}

func (s *Service) UpdateCurrent(ctx context.Context, dto UpdateProfileDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}

	profile := Profile{Name: current.Name, Currency: current.Currency}
	if dto.Name != nil {
		profile.Name = *dto.Name
	}
	if dto.Currency != nil {
		profile.Currency = *dto.Currency
	}

	updated, err := s.repo.UpdateProfile(ctx, current.ID, profile)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, internal.NewStorageError("failed to update user profile", err)
	}

	s.logger.Info("user profile updated", "user_id", updated.ID, "currency", updated.Currency)
	return updated, nil
}
