package geometry

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"window-measure/internal/domain/entity"
)

// Region сторона окна относительно его центра
type Region string

const (
	RegionTop    Region = "top"
	RegionRight  Region = "right"
	RegionBottom Region = "bottom"
	RegionLeft   Region = "left"
)

var regionOrder = []Region{RegionTop, RegionRight, RegionBottom, RegionLeft}

// ErrNoRegionCandidates для одной из сторон не осталось кандидатов
var ErrNoRegionCandidates = errors.New("no candidate lines for region")

// RegionError указывает, на какой стороне выбор не удался
type RegionError struct {
	Region Region
	Reason string
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("%v %s: %s", ErrNoRegionCandidates, e.Region, e.Reason)
}

func (e *RegionError) Unwrap() error {
	return ErrNoRegionCandidates
}

// SelectorConfig параметры отбора сторон
type SelectorConfig struct {
	AngleTolerance  float64 // допуск к опорному углу и перпендикуляру, градусы
	RegionTolerance float64 // допуск к ожидаемой ориентации стороны, градусы
	LongLineDivisor float64 // "длинная" линия длиннее диагонали кадра / LongLineDivisor
	ModeWindow      int     // допуск к модальному углу стороны, градусы
}

// DefaultSelectorConfig значения, подобранные по тестовым снимкам
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		AngleTolerance:  12,
		RegionTolerance: 45,
		LongLineDivisor: 4,
		ModeWindow:      1,
	}
}

// SideLines по одному отрезку на каждую сторону окна
type SideLines struct {
	Top      entity.LineSegment
	Right    entity.LineSegment
	Bottom   entity.LineSegment
	Left     entity.LineSegment
	Centroid entity.Point
}

// Lines стороны в порядке top, right, bottom, left
func (s SideLines) Lines() []entity.LineSegment {
	return []entity.LineSegment{s.Top, s.Right, s.Bottom, s.Left}
}

// Selection итог отбора линий для подгонки четырёхугольника
type Selection struct {
	Lines          []entity.LineSegment // линии для подгонки
	Filtered       []entity.LineSegment // все линии после фильтра по углу
	ReferenceAngle float64
	Centroid       entity.Point
	Confidence     entity.Confidence
}

// LineSelector сводит сырые отрезки к четырём сторонам окна
type LineSelector struct {
	cfg SelectorConfig
}

// NewLineSelector создаёт селектор
func NewLineSelector(cfg SelectorConfig) *LineSelector {
	return &LineSelector{cfg: cfg}
}

// Filter оставляет отрезки, близкие к опорному углу или перпендикуляру к нему
func (s *LineSelector) Filter(segs []entity.LineSegment) ([]entity.LineSegment, float64) {
	ref, ok := ReferenceAngle(segs)
	if !ok {
		return nil, 0
	}
	return FilterByAngle(segs, ref, s.cfg.AngleTolerance), ref
}

// Centroid средняя середина длинных отрезков, приближённый центр окна
func (s *LineSelector) Centroid(segs []entity.LineSegment, bounds image.Rectangle) (entity.Point, bool) {
	diag := math.Hypot(float64(bounds.Dx()), float64(bounds.Dy()))
	minLen := diag / s.cfg.LongLineDivisor
	var xs, ys []float64
	for _, seg := range segs {
		if seg.Length() <= minLen {
			continue
		}
		mp := seg.Midpoint()
		xs = append(xs, mp.X)
		ys = append(ys, mp.Y)
	}
	if len(xs) == 0 {
		return entity.Point{}, false
	}
	return entity.Point{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}, true
}

// SelectSides выбирает по одному отрезку на сторону. Ожидает уже отфильтрованные по углу отрезки.
func (s *LineSelector) SelectSides(filtered []entity.LineSegment, bounds image.Rectangle) (SideLines, error) {
	c, ok := s.Centroid(filtered, bounds)
	if !ok {
		return SideLines{}, &RegionError{Region: RegionTop, Reason: "no long lines to estimate the center"}
	}

	regions := make(map[Region][]entity.LineSegment, 4)
	for _, seg := range filtered {
		if seg.A.Y < c.Y && seg.B.Y < c.Y {
			regions[RegionTop] = append(regions[RegionTop], seg)
		}
		if seg.A.X > c.X && seg.B.X > c.X {
			regions[RegionRight] = append(regions[RegionRight], seg)
		}
		if seg.A.Y > c.Y && seg.B.Y > c.Y {
			regions[RegionBottom] = append(regions[RegionBottom], seg)
		}
		if seg.A.X < c.X && seg.B.X < c.X {
			regions[RegionLeft] = append(regions[RegionLeft], seg)
		}
	}

	picked := make(map[Region]entity.LineSegment, 4)
	for _, r := range regionOrder {
		best, err := s.pickRegion(r, regions[r], c)
		if err != nil {
			return SideLines{}, err
		}
		picked[r] = best
	}

	return SideLines{
		Top:      picked[RegionTop],
		Right:    picked[RegionRight],
		Bottom:   picked[RegionBottom],
		Left:     picked[RegionLeft],
		Centroid: c,
	}, nil
}

func (s *LineSelector) pickRegion(r Region, items []entity.LineSegment, c entity.Point) (entity.LineSegment, error) {
	if len(items) == 0 {
		return entity.LineSegment{}, &RegionError{Region: r, Reason: "no lines on this side"}
	}

	expected := 0.0
	if r == RegionLeft || r == RegionRight {
		expected = 90
	}
	oriented := make([]entity.LineSegment, 0, len(items))
	for _, seg := range items {
		if AngularDistance(seg.Angle(), expected) <= s.cfg.RegionTolerance {
			oriented = append(oriented, seg)
		}
	}
	if len(oriented) == 0 {
		return entity.LineSegment{}, &RegionError{Region: r, Reason: "no lines with the expected orientation"}
	}

	mode := modeBin(oriented)
	var (
		best    entity.LineSegment
		bestOff = -1.0
	)
	for _, seg := range oriented {
		if binDistance(angleBin(seg.Angle()), mode) > s.cfg.ModeWindow {
			continue
		}
		mp := seg.Midpoint()
		off := math.Abs(mp.Y - c.Y)
		if expected == 90 {
			off = math.Abs(mp.X - c.X)
		}
		if off > bestOff {
			best, bestOff = seg, off
		}
	}
	if bestOff < 0 {
		return entity.LineSegment{}, &RegionError{Region: r, Reason: "no lines near the dominant angle"}
	}
	return best, nil
}

// modeBin самый частый целый угол; при равенстве побеждает встреченный первым
func modeBin(segs []entity.LineSegment) int {
	counts := make(map[int]int, len(segs))
	order := make([]int, 0, len(segs))
	for _, seg := range segs {
		b := angleBin(seg.Angle())
		if counts[b] == 0 {
			order = append(order, b)
		}
		counts[b]++
	}
	mode := order[0]
	for _, b := range order[1:] {
		if counts[b] > counts[mode] {
			mode = b
		}
	}
	return mode
}

// Select полный отбор: фильтр по углу, затем стороны по регионам.
// Если регионы не сложились, возвращаются все отфильтрованные линии с ConfidencePartial.
func (s *LineSelector) Select(segs []entity.LineSegment, bounds image.Rectangle) (Selection, error) {
	if len(segs) < 4 {
		return Selection{}, &entity.LineError{Found: len(segs), Required: 4}
	}
	filtered, ref := s.Filter(segs)
	if len(filtered) < 4 {
		return Selection{}, &entity.LineError{Found: len(filtered), Required: 4}
	}

	sides, err := s.SelectSides(filtered, bounds)
	if err == nil {
		return Selection{
			Lines:          sides.Lines(),
			Filtered:       filtered,
			ReferenceAngle: ref,
			Centroid:       sides.Centroid,
			Confidence:     entity.ConfidenceFull,
		}, nil
	}
	if !errors.Is(err, ErrNoRegionCandidates) {
		return Selection{}, err
	}

	xs := make([]float64, len(filtered))
	ys := make([]float64, len(filtered))
	for i, seg := range filtered {
		mp := seg.Midpoint()
		xs[i], ys[i] = mp.X, mp.Y
	}
	return Selection{
		Lines:          filtered,
		Filtered:       filtered,
		ReferenceAngle: ref,
		Centroid:       entity.Point{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)},
		Confidence:     entity.ConfidencePartial,
	}, nil
}
