package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"window-measure/internal/domain/entity"
)

func TestAnnotator_DrawsQuadOnCopy(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 200, 100))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	quad := entity.Quadrilateral{entity.Pt(20, 30), entity.Pt(180, 30), entity.Pt(180, 90), entity.Pt(20, 90)}

	out, err := NewAnnotator(3).Annotate(src, quad, entity.Dimensions{WidthIn: 30, HeightIn: 12, Confidence: entity.ConfidenceFull})
	require.NoError(t, err)
	require.Equal(t, src.Bounds(), out.Bounds())

	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	require.NotEqual(t, white, color.NRGBAModel.Convert(out.At(100, 30)))
	require.NotEqual(t, white, color.NRGBAModel.Convert(out.At(180, 60)))
	require.Equal(t, white, color.NRGBAModel.Convert(out.At(100, 60)))
	require.Equal(t, white, src.NRGBAAt(100, 30))
}

func TestAnnotator_EmptyImage(t *testing.T) {
	_, err := NewAnnotator(0).Annotate(nil, entity.Quadrilateral{}, entity.Dimensions{})
	require.Error(t, err)
}
