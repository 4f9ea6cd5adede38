package geometry

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"window-measure/internal/domain/entity"
)

var frame = image.Rect(0, 0, 400, 300)

func windowSegments() []entity.LineSegment {
	return []entity.LineSegment{
		entity.Seg(50, 40, 350, 40),   // top
		entity.Seg(350, 40, 350, 260), // right
		entity.Seg(50, 260, 350, 260), // bottom
		entity.Seg(50, 40, 50, 260),   // left
		entity.Seg(60, 60, 340, 60),   // inner frame edge
		entity.Seg(0, 0, 100, 100),    // diagonal noise
	}
}

func TestLineSelector_SelectsOuterSides(t *testing.T) {
	sel := NewLineSelector(DefaultSelectorConfig())

	res, err := sel.Select(windowSegments(), frame)
	require.NoError(t, err)
	require.Equal(t, entity.ConfidenceFull, res.Confidence)
	require.Len(t, res.Filtered, 5)
	require.Equal(t, []entity.LineSegment{
		entity.Seg(50, 40, 350, 40),
		entity.Seg(350, 40, 350, 260),
		entity.Seg(50, 260, 350, 260),
		entity.Seg(50, 40, 50, 260),
	}, res.Lines)
	require.InDelta(t, 200.0, res.Centroid.X, 1e-9)
	require.InDelta(t, 132.0, res.Centroid.Y, 1e-9)
}

func TestLineSelector_SelectSidesIdempotent(t *testing.T) {
	sel := NewLineSelector(DefaultSelectorConfig())
	filtered, _ := sel.Filter(windowSegments())

	first, err := sel.SelectSides(filtered, frame)
	require.NoError(t, err)
	second, err := sel.SelectSides(first.Lines(), frame)
	require.NoError(t, err)
	require.Equal(t, first.Lines(), second.Lines())
}

func TestLineSelector_EmptyRegionFallsBackToPartial(t *testing.T) {
	sel := NewLineSelector(DefaultSelectorConfig())
	segs := []entity.LineSegment{
		entity.Seg(50, 40, 350, 40),
		entity.Seg(50, 260, 350, 260),
		entity.Seg(350, 40, 350, 260),
		entity.Seg(300, 40, 300, 260),
	}

	_, err := sel.SelectSides(segs, frame)
	var regionErr *RegionError
	require.True(t, errors.As(err, &regionErr))
	require.Equal(t, RegionLeft, regionErr.Region)
	require.ErrorIs(t, err, ErrNoRegionCandidates)

	res, err := sel.Select(segs, frame)
	require.NoError(t, err)
	require.Equal(t, entity.ConfidencePartial, res.Confidence)
	require.Len(t, res.Lines, 4)
}

func TestLineSelector_TooFewLines(t *testing.T) {
	sel := NewLineSelector(DefaultSelectorConfig())

	_, err := sel.Select(windowSegments()[:3], frame)
	require.ErrorIs(t, err, entity.ErrInsufficientLines)

	var lineErr *entity.LineError
	require.True(t, errors.As(err, &lineErr))
	require.Equal(t, 3, lineErr.Found)
}

func TestLineSelector_NoLongLines(t *testing.T) {
	sel := NewLineSelector(DefaultSelectorConfig())
	segs := []entity.LineSegment{
		entity.Seg(10, 10, 20, 10),
		entity.Seg(10, 30, 20, 30),
		entity.Seg(10, 10, 10, 20),
		entity.Seg(30, 10, 30, 20),
	}
	_, err := sel.SelectSides(segs, frame)
	require.ErrorIs(t, err, ErrNoRegionCandidates)
}

func TestModeBin_FirstSeenWinsTies(t *testing.T) {
	segs := []entity.LineSegment{
		entity.Seg(0, 0, 0, 100), // 90
		entity.Seg(0, 0, 4, 100), // ~87.7 -> 88
		entity.Seg(0, 0, 0, 50),  // 90
		entity.Seg(0, 0, 4, 100), // 88
	}
	require.Equal(t, 90, modeBin(segs))
}
