package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"window-measure/internal/domain/entity"
	"window-measure/internal/infrastructure/storage"
)

func TestUserService_BeginMeasureAndCancel(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.BeginMeasure(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)

	user, err = svc.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
}

func TestUserService_SetState(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.SetState(ctx, 2, 20, entity.StateProcessing)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, user.State)
}

func TestUserService_SetMarker(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	marker := entity.MarkerConfig{SizeMM: 150, ID: 0, Count: 2, Family: entity.FamilyAprilTag16h5}
	user, err := svc.SetMarker(ctx, 3, 30, marker)
	require.NoError(t, err)
	require.Equal(t, marker, user.MarkerOr(entity.DefaultMarkerConfig()))

	_, err = svc.SetMarker(ctx, 3, 30, entity.MarkerConfig{SizeMM: 0, Count: 1, Family: entity.FamilyAruco4x4})
	require.Error(t, err)
}
