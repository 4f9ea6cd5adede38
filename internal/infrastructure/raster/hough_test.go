package raster

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"window-measure/internal/domain/entity"
	"window-measure/internal/domain/geometry"
)

func rectangleMask(w, h int, r image.Rectangle) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, w, h))
	for x := r.Min.X; x <= r.Max.X; x++ {
		m.Pix[m.PixOffset(x, r.Min.Y)] = 255
		m.Pix[m.PixOffset(x, r.Max.Y)] = 255
	}
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		m.Pix[m.PixOffset(r.Min.X, y)] = 255
		m.Pix[m.PixOffset(r.Max.X, y)] = 255
	}
	return m
}

func TestHoughDetector_FindsRectangleSides(t *testing.T) {
	d := NewHoughDetector(DefaultHoughConfig())
	mask := rectangleMask(400, 300, image.Rect(50, 40, 350, 260))

	segs, err := d.Detect(context.Background(), mask)
	require.NoError(t, err)
	require.Len(t, segs, 4)
	for _, s := range segs {
		require.Greater(t, s.Length(), 150.0)
	}
}

func TestHoughDetector_RoundTripThroughFitter(t *testing.T) {
	d := NewHoughDetector(DefaultHoughConfig())
	mask := rectangleMask(400, 300, image.Rect(50, 40, 350, 260))

	segs, err := d.Detect(context.Background(), mask)
	require.NoError(t, err)

	sel, err := geometry.NewLineSelector(geometry.DefaultSelectorConfig()).Select(segs, mask.Bounds())
	require.NoError(t, err)
	require.Equal(t, entity.ConfidenceFull, sel.Confidence)

	quad, err := geometry.NewQuadFitter(geometry.DefaultFitterConfig()).Fit(sel.Lines, mask.Bounds())
	require.NoError(t, err)

	want := entity.Quadrilateral{entity.Pt(50, 40), entity.Pt(350, 40), entity.Pt(350, 260), entity.Pt(50, 260)}
	for i := range want {
		require.InDelta(t, want[i].X, quad[i].X, 2, "corner %d", i)
		require.InDelta(t, want[i].Y, quad[i].Y, 2, "corner %d", i)
	}
}

func TestHoughDetector_ShortRunsIgnored(t *testing.T) {
	d := NewHoughDetector(DefaultHoughConfig())
	m := image.NewGray(image.Rect(0, 0, 200, 200))
	for x := 10; x < 30; x++ {
		m.Pix[m.PixOffset(x, 100)] = 255
	}

	segs, err := d.Detect(context.Background(), m)
	require.NoError(t, err)
	require.Empty(t, segs)
}

func TestHoughDetector_EmptyMask(t *testing.T) {
	d := NewHoughDetector(DefaultHoughConfig())

	segs, err := d.Detect(context.Background(), image.NewGray(image.Rect(0, 0, 50, 50)))
	require.NoError(t, err)
	require.Empty(t, segs)

	_, err = d.Detect(context.Background(), nil)
	require.Error(t, err)
}
