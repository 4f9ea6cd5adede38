// Package geometry выбирает стороны окна среди найденных отрезков и подбирает по ним четырёхугольник.
package geometry

import (
	"math"

	"window-measure/internal/domain/entity"
)

// AngularDistance кратчайшее расстояние между неориентированными углами в градусах, [0, 90]
func AngularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 180)
	return math.Min(d, 180-d)
}

// ReferenceAngle угол самого длинного отрезка, он задаёт "горизонталь" снимка
func ReferenceAngle(segs []entity.LineSegment) (float64, bool) {
	if len(segs) == 0 {
		return 0, false
	}
	longest := segs[0]
	for _, s := range segs[1:] {
		if s.Length() > longest.Length() {
			longest = s
		}
	}
	return longest.Angle(), true
}

// FilterByAngle оставляет отрезки в пределах tol от ref или перпендикуляра к нему
func FilterByAngle(segs []entity.LineSegment, ref, tol float64) []entity.LineSegment {
	perp := math.Mod(ref+90, 180)
	out := make([]entity.LineSegment, 0, len(segs))
	for _, s := range segs {
		a := s.Angle()
		if AngularDistance(a, ref) <= tol || AngularDistance(a, perp) <= tol {
			out = append(out, s)
		}
	}
	return out
}

// angleBin целый градус угла по модулю 180
func angleBin(a float64) int {
	return int(math.Round(a)) % 180
}

// binDistance круговое расстояние между целыми градусами
func binDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	d %= 180
	if 180-d < d {
		return 180 - d
	}
	return d
}
