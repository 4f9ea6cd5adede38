package geometry

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"window-measure/internal/domain/entity"
)

// FitterConfig параметры подгонки четырёхугольника
type FitterConfig struct {
	BoundsMargin    float64 // допуск за пределы кадра, доля ширины/высоты
	ApproxEpsilon   float64 // точность аппроксимации, доля периметра оболочки
	ParallelEpsilon float64
}

// DefaultFitterConfig значения по умолчанию
func DefaultFitterConfig() FitterConfig {
	return FitterConfig{
		BoundsMargin:    0.1,
		ApproxEpsilon:   0.02,
		ParallelEpsilon: DefaultParallelEpsilon,
	}
}

// QuadFitter строит четырёхугольник окна по выбранным прямым
type QuadFitter struct {
	cfg FitterConfig
}

// NewQuadFitter создаёт подгонщик
func NewQuadFitter(cfg FitterConfig) *QuadFitter {
	return &QuadFitter{cfg: cfg}
}

// Fit пересекает прямые попарно и сводит точки к четырём углам TL, TR, BR, BL
func (f *QuadFitter) Fit(lines []entity.LineSegment, bounds image.Rectangle) (entity.Quadrilateral, error) {
	return f.FitPoints(Intersections(lines, f.cfg.ParallelEpsilon), bounds)
}

// FitPoints то же, что Fit, но по готовым точкам пересечения
func (f *QuadFitter) FitPoints(points []entity.Point, bounds image.Rectangle) (entity.Quadrilateral, error) {
	inside := f.withinBounds(points, bounds)
	if len(inside) < 4 {
		return entity.Quadrilateral{}, &entity.QuadFitError{Reason: "fewer than 4 intersections inside the image", Points: len(inside)}
	}

	corners, ok := PickQuadrants(inside)
	if !ok {
		return entity.Quadrilateral{}, &entity.QuadFitError{Reason: "intersections do not cover all four quadrants", Points: len(inside)}
	}

	hull := ConvexHull(corners[:])
	approx := ApproximatePolygon(hull, f.cfg.ApproxEpsilon*Perimeter(hull))
	if len(approx) != 4 {
		return entity.Quadrilateral{}, &entity.QuadFitError{Reason: "approximated polygon is not a quadrilateral", Points: len(inside), Vertices: len(approx)}
	}

	var quad [4]entity.Point
	copy(quad[:], approx)
	return OrderCorners(quad), nil
}

func (f *QuadFitter) withinBounds(points []entity.Point, bounds image.Rectangle) []entity.Point {
	bx := float64(bounds.Dx()) * f.cfg.BoundsMargin
	by := float64(bounds.Dy()) * f.cfg.BoundsMargin
	minX, maxX := float64(bounds.Min.X)-bx, float64(bounds.Max.X)+bx
	minY, maxY := float64(bounds.Min.Y)-by, float64(bounds.Max.Y)+by

	out := make([]entity.Point, 0, len(points))
	for _, p := range points {
		if p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY {
			out = append(out, p)
		}
	}
	return out
}

// PickQuadrants делит точки по центроиду на четверти и берёт в каждой ближайшую к центру.
// Возвращает false, если какая-то четверть пуста.
func PickQuadrants(points []entity.Point) ([4]entity.Point, bool) {
	var out [4]entity.Point
	if len(points) == 0 {
		return out, false
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	c := entity.Point{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}

	var found [4]bool
	best := [4]float64{math.Inf(1), math.Inf(1), math.Inf(1), math.Inf(1)}
	for _, p := range points {
		q := quadrantOf(p, c)
		if d := p.Dist(c); d < best[q] {
			best[q], out[q], found[q] = d, p, true
		}
	}
	for _, ok := range found {
		if !ok {
			return out, false
		}
	}
	return out, true
}

// quadrantOf 0 TL, 1 TR, 2 BR, 3 BL
func quadrantOf(p, c entity.Point) int {
	switch {
	case p.X < c.X && p.Y < c.Y:
		return 0
	case p.Y < c.Y:
		return 1
	case p.X >= c.X:
		return 2
	default:
		return 3
	}
}

// OrderCorners приводит четыре вершины к порядку TL, TR, BR, BL: обход по часовой стрелке
// на экране, первая вершина с наименьшим x+y.
func OrderCorners(q [4]entity.Point) entity.Quadrilateral {
	var area float64
	for i := 0; i < 4; i++ {
		a, b := q[i], q[(i+1)%4]
		area += a.X*b.Y - b.X*a.Y
	}
	if area < 0 {
		q[1], q[3] = q[3], q[1]
	}

	start := 0
	for i := 1; i < 4; i++ {
		if q[i].X+q[i].Y < q[start].X+q[start].Y {
			start = i
		}
	}
	var out entity.Quadrilateral
	for i := 0; i < 4; i++ {
		out[i] = q[(start+i)%4]
	}
	return out
}
