package entity

import "math"

// Point точка в пиксельных координатах изображения (Y растёт вниз)
type Point struct {
	X float64
	Y float64
}

// Pt сокращённый конструктор точки
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Dist возвращает евклидово расстояние до другой точки
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// LineSegment отрезок, найденный детектором линий
type LineSegment struct {
	A Point
	B Point
}

// Seg создаёт отрезок по координатам концов
func Seg(x1, y1, x2, y2 float64) LineSegment {
	return LineSegment{A: Pt(x1, y1), B: Pt(x2, y2)}
}

// Length длина отрезка
func (s LineSegment) Length() float64 {
	return s.A.Dist(s.B)
}

// Angle угол неориентированной прямой в градусах, [0, 180)
func (s LineSegment) Angle() float64 {
	deg := math.Atan2(s.B.Y-s.A.Y, s.B.X-s.A.X) * 180 / math.Pi
	deg = math.Mod(deg, 180)
	if deg < 0 {
		deg += 180
	}
	if deg >= 180 {
		deg -= 180
	}
	return deg
}

// Midpoint середина отрезка
func (s LineSegment) Midpoint() Point {
	return Point{X: (s.A.X + s.B.X) / 2, Y: (s.A.Y + s.B.Y) / 2}
}

// Quadrilateral четыре угла окна в порядке TL, TR, BR, BL.
// Стороны 0-1 (горизонтальная) и 0-3 (вертикальная) используются для расчёта размеров.
type Quadrilateral [4]Point

// Width длина стороны 0-1 в пикселях
func (q Quadrilateral) Width() float64 {
	return q[0].Dist(q[1])
}

// Height длина стороны 0-3 в пикселях
func (q Quadrilateral) Height() float64 {
	return q[0].Dist(q[3])
}

// RectQuad строит осевой прямоугольник по двум противоположным углам
func RectQuad(a, b Point) Quadrilateral {
	minX, maxX := math.Min(a.X, b.X), math.Max(a.X, b.X)
	minY, maxY := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return Quadrilateral{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
	}
}
