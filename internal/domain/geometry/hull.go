package geometry

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
	"gonum.org/v1/gonum/spatial/r2"

	"window-measure/internal/domain/entity"
)

// ConvexHull выпуклая оболочка (монотонная цепь), обход против часовой стрелки в осях x вправо, y вверх
func ConvexHull(pts []entity.Point) []entity.Point {
	if len(pts) < 3 {
		return append([]entity.Point(nil), pts...)
	}
	sorted := append([]entity.Point(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	cross := func(o, a, b entity.Point) float64 {
		return r2.Cross(r2.Vec{X: a.X - o.X, Y: a.Y - o.Y}, r2.Vec{X: b.X - o.X, Y: b.Y - o.Y})
	}

	hull := make([]entity.Point, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// Perimeter длина замкнутого контура
func Perimeter(ring []entity.Point) float64 {
	var total float64
	for i := range ring {
		a := ring[i]
		b := ring[(i+1)%len(ring)]
		total += r2.Norm(r2.Sub(r2.Vec{X: b.X, Y: b.Y}, r2.Vec{X: a.X, Y: a.Y}))
	}
	return total
}

// ApproximatePolygon упрощает замкнутый контур алгоритмом Дугласа-Пекера
func ApproximatePolygon(ring []entity.Point, epsilon float64) []entity.Point {
	if len(ring) < 3 {
		return append([]entity.Point(nil), ring...)
	}
	ls := make(orb.LineString, 0, len(ring)+1)
	for _, p := range ring {
		ls = append(ls, orb.Point{p.X, p.Y})
	}
	ls = append(ls, ls[0])

	simplified, ok := simplify.DouglasPeucker(epsilon).Simplify(ls.Clone()).(orb.LineString)
	if !ok {
		return append([]entity.Point(nil), ring...)
	}
	out := make([]entity.Point, 0, len(simplified))
	for i, p := range simplified {
		if i == len(simplified)-1 && len(simplified) > 1 && p == simplified[0] {
			break
		}
		out = append(out, entity.Point{X: p[0], Y: p[1]})
	}
	return out
}
