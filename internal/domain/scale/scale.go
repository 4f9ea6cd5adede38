// Package scale переводит размер маркера в пикселях в миллиметры на пиксель.
package scale

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"window-measure/internal/domain/entity"
)

const degenerateLength = 1e-9

func dist(a, b entity.Point) float64 {
	return r2.Norm(r2.Sub(r2.Vec{X: b.X, Y: b.Y}, r2.Vec{X: a.X, Y: a.Y}))
}

// SideLength длина стороны маркера между углами 0 и 1
func SideLength(corners [4]entity.Point) float64 {
	return dist(corners[0], corners[1])
}

// MeanSideLength средняя длина четырёх сторон маркера
func MeanSideLength(corners [4]entity.Point) float64 {
	sides := make([]float64, 4)
	for i := range corners {
		sides[i] = dist(corners[i], corners[(i+1)%4])
	}
	return stat.Mean(sides, nil)
}

// SingleMarkerScale мм на пиксель по одному маркеру известного размера
func SingleMarkerScale(m entity.Marker, sizeMM float64) (float64, error) {
	side := SideLength(m.Corners)
	if side < degenerateLength {
		return 0, fmt.Errorf("marker %d side is %.3g px: %w", m.ID, side, entity.ErrDegenerateScale)
	}
	return sizeMM / side, nil
}

// DualMarkerScale мм на пиксель по среднему размеру двух маркеров
func DualMarkerScale(a, b entity.Marker, sizeMM float64) (float64, error) {
	side := stat.Mean([]float64{MeanSideLength(a.Corners), MeanSideLength(b.Corners)}, nil)
	if side < degenerateLength {
		return 0, fmt.Errorf("mean marker side is %.3g px: %w", side, entity.ErrDegenerateScale)
	}
	return sizeMM / side, nil
}

// Diagonal на какой диагонали окна стоят маркеры
type Diagonal int

const (
	DiagonalTLBR Diagonal = iota // верхний левый и нижний правый
	DiagonalTRBL                 // верхний правый и нижний левый
)

func (d Diagonal) String() string {
	if d == DiagonalTRBL {
		return "TRBL"
	}
	return "TLBR"
}

// ResolveDiagonal определяет верхний маркер (меньший Y угла 0, при равенстве меньший X)
// и диагональ: если верхний маркер левее нижнего, это TLBR.
func ResolveDiagonal(a, b entity.Marker) (d Diagonal, top, bottom entity.Marker) {
	top, bottom = a, b
	ta, tb := a.Corners[0], b.Corners[0]
	if tb.Y < ta.Y || (tb.Y == ta.Y && tb.X < ta.X) {
		top, bottom = b, a
	}
	if top.Corners[0].X < bottom.Corners[0].X {
		return DiagonalTLBR, top, bottom
	}
	return DiagonalTRBL, top, bottom
}

// ExtremeCorners крайние углы маркеров по диагонали d. Точки сортируются по (Y, X):
// первые две образуют верхнюю пару, последние две нижнюю.
func ExtremeCorners(pts []entity.Point, d Diagonal) (near, far entity.Point, err error) {
	if len(pts) < 4 {
		return near, far, fmt.Errorf("need at least 4 corners, got %d", len(pts))
	}
	sorted := append([]entity.Point(nil), pts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})
	t0, t1 := sorted[0], sorted[1]
	b0, b1 := sorted[len(sorted)-2], sorted[len(sorted)-1]

	minX := func(p, q entity.Point) entity.Point {
		if q.X < p.X {
			return q
		}
		return p
	}
	maxX := func(p, q entity.Point) entity.Point {
		if q.X > p.X {
			return q
		}
		return p
	}

	if d == DiagonalTRBL {
		return maxX(t0, t1), minX(b0, b1), nil
	}
	return minX(t0, t1), maxX(b0, b1), nil
}

// PixelSpan ширина и высота в пикселях между двумя крайними углами
func PixelSpan(near, far entity.Point) (width, height float64) {
	dx := far.X - near.X
	dy := far.Y - near.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx, dy
}

// Corners все углы маркеров подряд
func Corners(markers ...entity.Marker) []entity.Point {
	out := make([]entity.Point, 0, 4*len(markers))
	for _, m := range markers {
		out = append(out, m.Corners[:]...)
	}
	return out
}
