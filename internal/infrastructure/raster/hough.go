package raster

import (
	"context"
	"errors"
	"image"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"window-measure/internal/domain/entity"
)

// HoughConfig параметры вероятностного поиска отрезков
type HoughConfig struct {
	Threshold    int     // минимум голосов в ячейке аккумулятора
	MinLineRatio float64 // минимальная длина отрезка, доля длинной стороны кадра
	MaxGapRatio  float64 // допустимый разрыв внутри отрезка, доля длинной стороны кадра
	Band         float64 // полуширина полосы вокруг прямой, px
	StrokeWidth  float64 // полуширина толстых штрихов, сводимых к одной осевой прямой, px
	MaxPeaks     int
}

// DefaultHoughConfig значения по умолчанию
func DefaultHoughConfig() HoughConfig {
	return HoughConfig{
		Threshold:    10,
		MinLineRatio: 0.18,
		MaxGapRatio:  0.014,
		Band:         1,
		StrokeWidth:  12,
		MaxPeaks:     400,
	}
}

// HoughDetector ищет отрезки на бинарной маске: пики аккумулятора (rho, theta)
// разбираются по убыванию голосов, точки уже найденных отрезков больше не участвуют.
type HoughDetector struct {
	cfg HoughConfig
}

// NewHoughDetector создаёт детектор
func NewHoughDetector(cfg HoughConfig) *HoughDetector {
	return &HoughDetector{cfg: cfg}
}

type houghPeak struct {
	rho   int
	theta int
	votes int
}

type maskPoint struct {
	x, y float64
}

const numAngles = 180

// Detect возвращает отрезки в координатах маски
func (d *HoughDetector) Detect(ctx context.Context, mask *image.Gray) ([]entity.LineSegment, error) {
	if mask == nil || mask.Bounds().Empty() {
		return nil, errors.New("empty mask")
	}
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	longSide := float64(max(w, h))
	minLen := d.cfg.MinLineRatio * longSide
	maxGap := d.cfg.MaxGapRatio * longSide

	var points []maskPoint
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.GrayAt(b.Min.X+x, b.Min.Y+y).Y > 127 {
				points = append(points, maskPoint{float64(x), float64(y)})
			}
		}
	}
	if len(points) == 0 {
		return nil, nil
	}

	cosT, sinT := trigTables()
	maxDist := int(math.Ceil(math.Hypot(float64(w), float64(h))))
	size := 2*maxDist + 1
	acc := make([]int, size*numAngles)
	for _, p := range points {
		for t := 0; t < numAngles; t++ {
			r := int(math.Round(p.x*cosT[t]+p.y*sinT[t])) + maxDist
			acc[r*numAngles+t]++
		}
	}

	peaks := d.findPeaks(acc, size, maxDist)

	consumed := make([]bool, len(points))
	var out []entity.LineSegment
	for _, pk := range peaks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, seg := range d.trace(pk, points, consumed, cosT[pk.theta], sinT[pk.theta], minLen, maxGap) {
			seg.A.X += float64(b.Min.X)
			seg.A.Y += float64(b.Min.Y)
			seg.B.X += float64(b.Min.X)
			seg.B.Y += float64(b.Min.Y)
			out = append(out, seg)
		}
	}
	return out, nil
}

func (d *HoughDetector) findPeaks(acc []int, size, maxDist int) []houghPeak {
	var peaks []houghPeak
	for r := 0; r < size; r++ {
		for t := 0; t < numAngles; t++ {
			v := acc[r*numAngles+t]
			if v < d.cfg.Threshold || !isLocalMax(acc, size, r, t, v) {
				continue
			}
			peaks = append(peaks, houghPeak{rho: r - maxDist, theta: t, votes: v})
		}
	}
	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].votes > peaks[j].votes
	})
	if d.cfg.MaxPeaks > 0 && len(peaks) > d.cfg.MaxPeaks {
		peaks = peaks[:d.cfg.MaxPeaks]
	}
	return peaks
}

// isLocalMax окно 5x5, theta замыкается по модулю 180
func isLocalMax(acc []int, size, r, t, v int) bool {
	for dr := -2; dr <= 2; dr++ {
		nr := r + dr
		if nr < 0 || nr >= size {
			continue
		}
		for dt := -2; dt <= 2; dt++ {
			if dr == 0 && dt == 0 {
				continue
			}
			nt := (t + dt + numAngles) % numAngles
			if acc[nr*numAngles+nt] > v {
				return false
			}
		}
	}
	return true
}

// trace уточняет прямую пика по точкам штриха, собирает свободные точки в полосе
// вокруг неё и режет их на отрезки по разрывам
func (d *HoughDetector) trace(pk houghPeak, points []maskPoint, consumed []bool, cos, sin, minLen, maxGap float64) []entity.LineSegment {
	rho := float64(pk.rho)
	origin := r2.Vec{X: rho * cos, Y: rho * sin}
	dir := r2.Vec{X: -sin, Y: cos}
	width := math.Max(d.cfg.Band, d.cfg.StrokeWidth)

	if d.cfg.StrokeWidth > d.cfg.Band {
		var ok bool
		if origin, dir, ok = d.fitStroke(origin, dir, width, points, consumed); !ok {
			return nil
		}
	}

	type onLine struct {
		idx int
		t   float64
	}
	var band []onLine
	for i, p := range points {
		if consumed[i] {
			continue
		}
		v := r2.Sub(r2.Vec{X: p.x, Y: p.y}, origin)
		if math.Abs(r2.Cross(dir, v)) <= width {
			band = append(band, onLine{idx: i, t: r2.Dot(dir, v)})
		}
	}
	if len(band) < 2 {
		return nil
	}
	sort.SliceStable(band, func(i, j int) bool { return band[i].t < band[j].t })

	var out []entity.LineSegment
	emit := func(run []onLine) {
		t0, t1 := run[0].t, run[len(run)-1].t
		if t1-t0 < minLen {
			return
		}
		for _, o := range run {
			consumed[o.idx] = true
		}
		a := r2.Add(origin, r2.Scale(t0, dir))
		b := r2.Add(origin, r2.Scale(t1, dir))
		out = append(out, entity.LineSegment{A: entity.Pt(a.X, a.Y), B: entity.Pt(b.X, b.Y)})
	}

	start := 0
	for i := 1; i < len(band); i++ {
		if band[i].t-band[i-1].t > maxGap {
			emit(band[start:i])
			start = i
		}
	}
	emit(band[start:])
	return out
}

// fitStroke подгоняет прямую к толстому штриху: центр и главная ось свободных точек
// в полосе width, полоса пересобирается вокруг новой прямой до сходимости.
// ok=false, если в полосе меньше Threshold точек.
func (d *HoughDetector) fitStroke(origin, dir r2.Vec, width float64, points []maskPoint, consumed []bool) (r2.Vec, r2.Vec, bool) {
	xs := make([]float64, 0, 1024)
	ys := make([]float64, 0, 1024)
	for iter := 0; iter < 10; iter++ {
		xs, ys = xs[:0], ys[:0]
		for i, p := range points {
			if consumed[i] {
				continue
			}
			v := r2.Vec{X: p.x, Y: p.y}
			if math.Abs(r2.Cross(dir, r2.Sub(v, origin))) <= width {
				xs = append(xs, p.x)
				ys = append(ys, p.y)
			}
		}
		if len(xs) < max(d.cfg.Threshold, 2) {
			return origin, dir, false
		}

		center := r2.Vec{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}
		sxx := stat.Variance(xs, nil)
		syy := stat.Variance(ys, nil)
		sxy := stat.Covariance(xs, ys, nil)
		phi := 0.5 * math.Atan2(2*sxy, sxx-syy)
		next := r2.Vec{X: math.Cos(phi), Y: math.Sin(phi)}
		if r2.Dot(next, dir) < 0 {
			next = r2.Scale(-1, next)
		}

		shift := math.Abs(r2.Cross(dir, r2.Sub(center, origin)))
		turn := math.Abs(r2.Cross(dir, next))
		origin, dir = center, next
		if shift < 0.05 && turn < 1e-4 {
			break
		}
	}
	return origin, dir, true
}

func trigTables() (cos, sin [numAngles]float64) {
	for t := 0; t < numAngles; t++ {
		a := float64(t) * math.Pi / 180
		cos[t], sin[t] = math.Cos(a), math.Sin(a)
	}
	return cos, sin
}
