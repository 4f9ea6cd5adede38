package scale

import (
	"testing"

	"github.com/stretchr/testify/require"

	"window-measure/internal/domain/entity"
)

func marker(id int, pts ...float64) entity.Marker {
	m := entity.Marker{ID: id}
	for i := 0; i < 4; i++ {
		m.Corners[i] = entity.Pt(pts[2*i], pts[2*i+1])
	}
	return m
}

func TestMeanSideLength(t *testing.T) {
	cases := []struct {
		corners  entity.Marker
		expected float64
	}{
		{marker(0, 0, 0, 0, 100, 100, 100, 100, 0), 100},
		{marker(0, 0, 100, 100, 100, 100, 0, 0, 0), 100},
		{marker(0, 100, 100, 100, 0, 0, 0, 0, 100), 100},
		{marker(0, 100, 0, 0, 0, 0, 100, 100, 100), 100},
		{marker(0, 0, 0, 0, 100, 50, 100, 50, 0), 75},
	}
	for _, c := range cases {
		require.InDelta(t, c.expected, MeanSideLength(c.corners.Corners), 1e-9)
	}
}

func TestSingleMarkerScale(t *testing.T) {
	m := marker(3, 10, 10, 60, 10, 60, 60, 10, 60)
	s, err := SingleMarkerScale(m, 100)
	require.NoError(t, err)
	require.InDelta(t, 2.0, s, 1e-9)

	_, err = SingleMarkerScale(marker(3, 5, 5, 5, 5, 5, 5, 5, 5), 100)
	require.ErrorIs(t, err, entity.ErrDegenerateScale)
}

func TestDualMarkerScale_OrderIndependent(t *testing.T) {
	a := marker(0, 0, 0, 100, 0, 100, 100, 0, 100)
	b := marker(1, 500, 500, 550, 500, 550, 550, 500, 550)

	ab, err := DualMarkerScale(a, b, 150)
	require.NoError(t, err)
	ba, err := DualMarkerScale(b, a, 150)
	require.NoError(t, err)
	require.InDelta(t, 2.0, ab, 1e-9)
	require.InDelta(t, ab, ba, 1e-12)
}

func TestExtremeCorners(t *testing.T) {
	pts := func(v ...float64) []entity.Point {
		out := make([]entity.Point, 0, len(v)/2)
		for i := 0; i < len(v); i += 2 {
			out = append(out, entity.Pt(v[i], v[i+1]))
		}
		return out
	}
	cases := []struct {
		name     string
		corners  []entity.Point
		diag     Diagonal
		expected [4]float64
	}{
		{"single tlbr", pts(0, 0, 1, 101, 100, 100, 101, 1), DiagonalTLBR, [4]float64{0, 0, 100, 100}},
		{"single trbl", pts(0, 0, 1, 101, 100, 100, 101, 1), DiagonalTRBL, [4]float64{101, 1, 1, 101}},
		{"rotated input", pts(101, 1, 0, 0, 1, 101, 100, 100), DiagonalTLBR, [4]float64{0, 0, 100, 100}},
		{"two markers tlbr", pts(0, 0, 1, 101, 100, 100, 101, 1, 200, 200, 201, 301, 300, 300, 301, 200), DiagonalTLBR, [4]float64{0, 0, 300, 300}},
		{"two markers trbl", pts(1, 200, 0, 300, 100, 200, 101, 300, 300, 0, 200, 0, 201, 100, 301, 100), DiagonalTRBL, [4]float64{300, 0, 0, 300}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			near, far, err := ExtremeCorners(c.corners, c.diag)
			require.NoError(t, err)
			require.Equal(t, c.expected, [4]float64{near.X, near.Y, far.X, far.Y})
		})
	}

	_, _, err := ExtremeCorners(pts(0, 0, 1, 1), DiagonalTLBR)
	require.Error(t, err)
}

func TestResolveDiagonal(t *testing.T) {
	tl := marker(0, 0, 0, 100, 0, 100, 100, 0, 100)
	br := marker(1, 900, 700, 1000, 700, 1000, 800, 900, 800)
	d, top, bottom := ResolveDiagonal(br, tl)
	require.Equal(t, DiagonalTLBR, d)
	require.Equal(t, 0, top.ID)
	require.Equal(t, 1, bottom.ID)

	tr := marker(2, 900, 0, 1000, 0, 1000, 100, 900, 100)
	bl := marker(3, 0, 700, 100, 700, 100, 800, 0, 800)
	d, top, _ = ResolveDiagonal(bl, tr)
	require.Equal(t, DiagonalTRBL, d)
	require.Equal(t, 2, top.ID)
	require.Equal(t, "TRBL", d.String())
}

func TestPixelSpan(t *testing.T) {
	w, h := PixelSpan(entity.Pt(300, 0), entity.Pt(0, 300))
	require.InDelta(t, 300.0, w, 1e-9)
	require.InDelta(t, 300.0, h, 1e-9)
	require.Len(t, Corners(marker(0, 0, 0, 1, 0, 1, 1, 0, 1), marker(1, 0, 0, 1, 0, 1, 1, 0, 1)), 8)
}
