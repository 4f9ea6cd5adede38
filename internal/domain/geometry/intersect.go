package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"window-measure/internal/domain/entity"
)

// DefaultParallelEpsilon порог определителя, ниже которого прямые считаются параллельными
const DefaultParallelEpsilon = 1e-6

// Intersect точка пересечения бесконечных прямых, проходящих через отрезки.
// Координаты нормируются на наибольший модуль, чтобы порог eps не зависел от размера кадра.
func Intersect(l1, l2 entity.LineSegment, eps float64) (entity.Point, bool) {
	s := 1.0
	for _, v := range []float64{l1.A.X, l1.A.Y, l1.B.X, l1.B.Y, l2.A.X, l2.A.Y, l2.B.X, l2.B.Y} {
		s = math.Max(s, math.Abs(v))
	}

	p1 := r2.Scale(1/s, r2.Vec{X: l1.A.X, Y: l1.A.Y})
	d1 := r2.Sub(r2.Scale(1/s, r2.Vec{X: l1.B.X, Y: l1.B.Y}), p1)
	p2 := r2.Scale(1/s, r2.Vec{X: l2.A.X, Y: l2.A.Y})
	d2 := r2.Sub(r2.Scale(1/s, r2.Vec{X: l2.B.X, Y: l2.B.Y}), p2)

	det := r2.Cross(d1, d2)
	if math.Abs(det) < eps {
		return entity.Point{}, false
	}
	t := r2.Cross(r2.Sub(p2, p1), d2) / det
	hit := r2.Scale(s, r2.Add(p1, r2.Scale(t, d1)))
	return entity.Point{X: hit.X, Y: hit.Y}, true
}

// Intersections пересечения всех пар прямых, параллельные пары пропускаются
func Intersections(lines []entity.LineSegment, eps float64) []entity.Point {
	var out []entity.Point
	for i := 0; i < len(lines); i++ {
		for j := i + 1; j < len(lines); j++ {
			if p, ok := Intersect(lines[i], lines[j], eps); ok {
				out = append(out, p)
			}
		}
	}
	return out
}
