//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"window-measure/internal/domain/entity"
	"window-measure/internal/infrastructure/raster"
)

func TestStubBackend_UsesPureGo(t *testing.T) {
	require.Equal(t, "pure-go", Backend)
	require.IsType(t, &raster.EdgeMapBuilder{}, NewEdgeMapBuilder(DefaultConfig()))
	require.IsType(t, &raster.HoughDetector{}, NewSegmentDetector(DefaultConfig()))
}

func TestStubMarkerDetector_Unavailable(t *testing.T) {
	_, err := NewMarkerDetector().DetectMarkers(context.Background(), image.NewGray(image.Rect(0, 0, 4, 4)), entity.FamilyAruco4x4, nil)
	require.ErrorIs(t, err, entity.ErrBackendUnavailable)
}
