package app

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"window-measure/internal/domain/entity"
	"window-measure/internal/infrastructure/raster"
)

func photo(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 200, 200, 200, 255
	}
	img.SetNRGBA(1, 1, color.NRGBA{A: 255})
	data, err := raster.NewCodec(90).EncodeJPEG(img)
	require.NoError(t, err)
	return data
}

func TestMeasurementService_EndToEnd(t *testing.T) {
	markers := &fakeMarkers{markers: []entity.Marker{squareMarker(0, 300, 400, 310)}}
	sink := &recordingSink{}
	svc := newService(newFactory(markers, fakeSegments{segs: windowSides()}), sink)

	out, err := svc.Measure(context.Background(), photo(t, 700, 1200), entity.DefaultMarkerConfig())
	require.NoError(t, err)
	require.Equal(t, entity.ConfidenceFull, out.Dimensions.Confidence)
	require.NotEmpty(t, out.Annotated)

	// у эталонного окна 6.25 x 12 дюймов
	require.InEpsilon(t, 6.25, out.Dimensions.WidthIn, 0.2)
	require.InEpsilon(t, 12.0, out.Dimensions.HeightIn, 0.2)
	require.InDelta(t, 454*100.0/310/entity.MMPerInch, out.Dimensions.WidthIn, 1e-6)

	require.Equal(t, []string{"run1_marker", "run1_window", "run1_dimension"}, sink.stages)
}

func TestMeasurementService_DownscalesToMaxSide(t *testing.T) {
	markers := &fakeMarkers{markers: []entity.Marker{squareMarker(0, 10, 40, 10)}}
	segs := fakeSegments{segs: []entity.LineSegment{
		entity.Seg(5, 10, 30, 10), entity.Seg(30, 10, 30, 110),
		entity.Seg(5, 110, 30, 110), entity.Seg(5, 10, 5, 110),
	}}
	svc := newService(newFactory(markers, segs), nil)
	svc.maxSide = 120

	out, err := svc.Measure(context.Background(), photo(t, 70, 240), entity.DefaultMarkerConfig())
	require.NoError(t, err)
	img, ok := out.Context.Window.Image("edges")
	require.True(t, ok)
	require.Equal(t, 120, img.Bounds().Dy())
	require.Equal(t, 35, img.Bounds().Dx())
}

func TestMeasurementService_MarkerErrorPropagates(t *testing.T) {
	svc := newService(newFactory(&fakeMarkers{}, fakeSegments{segs: windowSides()}), nil)

	_, err := svc.Measure(context.Background(), photo(t, 700, 1200), entity.DefaultMarkerConfig())
	var mErr *entity.MarkerDetectionError
	require.True(t, errors.As(err, &mErr))
	require.Equal(t, 0, mErr.ExpectedID)
}

func TestMeasurementService_InvalidInput(t *testing.T) {
	svc := newService(newFactory(&fakeMarkers{}, fakeSegments{}), nil)

	_, err := svc.Measure(context.Background(), []byte("garbage"), entity.DefaultMarkerConfig())
	require.Error(t, err)

	_, err = svc.Measure(context.Background(), photo(t, 50, 50), entity.MarkerConfig{SizeMM: 100, Count: 3, Family: entity.FamilyAruco4x4})
	require.Error(t, err)
}

func TestMeasurementService_AcceptPhotoUsesUserMarker(t *testing.T) {
	markers := &fakeMarkers{markers: []entity.Marker{squareMarker(4, 300, 400, 310)}}
	svc := newService(newFactory(markers, fakeSegments{segs: windowSides()}), nil)
	ctx := context.Background()

	_, err := svc.AcceptPhoto(ctx, 1, 10, photo(t, 700, 1200))
	require.ErrorIs(t, err, entity.ErrMarkerNotFound)

	_, err = svc.users.SetMarker(ctx, 1, 10, entity.MarkerConfig{SizeMM: 200, ID: 4, Count: 1, Family: entity.FamilyAruco4x4})
	require.NoError(t, err)

	out, err := svc.AcceptPhoto(ctx, 1, 10, photo(t, 700, 1200))
	require.NoError(t, err)
	require.InDelta(t, 454*200.0/310/entity.MMPerInch, out.Dimensions.WidthIn, 1e-6)

	user, err := svc.users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
}

func TestMeasurementService_DetectCornersAndComputeDimensions(t *testing.T) {
	markers := &fakeMarkers{markers: []entity.Marker{squareMarker(0, 300, 400, 254)}}
	svc := newService(newFactory(markers, fakeSegments{segs: windowSides()}), nil)
	ctx := context.Background()
	img := image.NewGray(image.Rect(0, 0, 700, 1200))

	corners, sc, err := svc.DetectCorners(ctx, img, entity.DefaultMarkerConfig())
	require.NoError(t, err)
	require.NotNil(t, sc)
	require.InDelta(t, 454.0, corners.Quad.Width(), 1e-6)

	dims, err := svc.ComputeDimensions(ctx, img, corners.Quad, entity.DefaultMarkerConfig())
	require.NoError(t, err)
	require.InDelta(t, 454*100.0/254/entity.MMPerInch, dims.WidthIn, 1e-6)
	require.InDelta(t, 945*100.0/254/entity.MMPerInch, dims.HeightIn, 1e-6)
}
