package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkerDetectionError_Is(t *testing.T) {
	err := fmt.Errorf("get scale: %w", &MarkerDetectionError{
		Kind:          ErrMarkerCountMismatch,
		ExpectedCount: 2,
		DetectedCount: 1,
		ExpectedID:    -1,
		DetectedIDs:   []int{3},
	})

	require.ErrorIs(t, err, ErrMarkerCountMismatch)
	require.NotErrorIs(t, err, ErrMarkerNotFound)

	var mde *MarkerDetectionError
	require.True(t, errors.As(err, &mde))
	require.Equal(t, 2, mde.ExpectedCount)
	require.Equal(t, []int{3}, mde.DetectedIDs)
	require.Contains(t, err.Error(), "expected 2 markers but found 1")
}

func TestMarkerDetectionError_ExpectedID(t *testing.T) {
	err := &MarkerDetectionError{Kind: ErrMarkerNotFound, ExpectedCount: 1, DetectedCount: 2, ExpectedID: 0, DetectedIDs: []int{4, 7}}
	require.Equal(t, "marker not found: expected marker id 0, detected 2 markers with ids [4 7]", err.Error())
}

func TestLineAndQuadErrors_Unwrap(t *testing.T) {
	require.ErrorIs(t, &LineError{Found: 2, Required: 4}, ErrInsufficientLines)
	require.ErrorIs(t, &QuadFitError{Reason: "empty quadrant", Points: 3}, ErrQuadrilateralFit)
	require.Equal(t, "quadrilateral fit failure: approximation (4 points, 3 vertices)",
		(&QuadFitError{Reason: "approximation", Points: 4, Vertices: 3}).Error())
}

func TestMarkerConfigValidate(t *testing.T) {
	require.NoError(t, DefaultMarkerConfig().Validate())

	cfg := DefaultMarkerConfig()
	cfg.Count = 3
	require.Error(t, cfg.Validate())

	cfg = DefaultMarkerConfig()
	cfg.SizeMM = 0
	require.Error(t, cfg.Validate())

	fam, err := ParseMarkerFamily("AprilTag")
	require.NoError(t, err)
	require.Equal(t, FamilyAprilTag16h5, fam)
}
