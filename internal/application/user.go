package app

import (
	"context"
	"fmt"

	"window-measure/internal/domain/entity"
	"window-measure/internal/domain/port"
)

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) BeginMeasure(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

// SetMarker проверяет и сохраняет личные настройки маркера
func (s *UserService) SetMarker(ctx context.Context, userID, chatID int64, marker entity.MarkerConfig) (*entity.User, error) {
	if err := marker.Validate(); err != nil {
		return nil, fmt.Errorf("marker config: %w", err)
	}
	if _, err := s.repo.Get(ctx, userID, chatID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateMarker(ctx, userID, marker); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID, chatID)
}
