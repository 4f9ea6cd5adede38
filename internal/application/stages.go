package app

import (
	"context"
	"fmt"
	"image"
	"math"

	"window-measure/internal/domain/entity"
	"window-measure/internal/domain/geometry"
	"window-measure/internal/domain/port"
	"window-measure/internal/domain/scale"
)

func markerIDs(markers []entity.Marker) []int {
	ids := make([]int, len(markers))
	for i, m := range markers {
		ids[i] = m.ID
	}
	return ids
}

func debugImage(sc *entity.StageContext) image.Image {
	img, _ := sc.Image(entity.ImageMarkers)
	return img
}

// SingleMarkerScale масштаб по одному маркеру с заданным ID
type SingleMarkerScale struct {
	detector port.MarkerDetector
	cfg      entity.MarkerConfig
}

// NewSingleMarkerScale создаёт стадию масштаба по одному маркеру
func NewSingleMarkerScale(detector port.MarkerDetector, cfg entity.MarkerConfig) *SingleMarkerScale {
	return &SingleMarkerScale{detector: detector, cfg: cfg}
}

// GetScale мм на пиксель
func (s *SingleMarkerScale) GetScale(ctx context.Context, img image.Image, sc *entity.StageContext) (float64, error) {
	markers, err := s.detector.DetectMarkers(ctx, img, s.cfg.Family, sc)
	if err != nil {
		return 0, fmt.Errorf("detect markers: %w", err)
	}
	sc.Put("markers", markers)

	for _, m := range markers {
		if m.ID != s.cfg.ID {
			continue
		}
		v, err := scale.SingleMarkerScale(m, float64(s.cfg.SizeMM))
		if err != nil {
			return 0, err
		}
		sc.Put("scale", v)
		return v, nil
	}

	return 0, &entity.MarkerDetectionError{
		Kind:          entity.ErrMarkerNotFound,
		ExpectedCount: 1,
		DetectedCount: len(markers),
		ExpectedID:    s.cfg.ID,
		DetectedIDs:   markerIDs(markers),
		DebugImage:    debugImage(sc),
	}
}

// DualMarkerStage два маркера в противоположных углах окна: дают и масштаб, и контур
type DualMarkerStage struct {
	detector port.MarkerDetector
	cfg      entity.MarkerConfig

	markers []entity.Marker
}

// NewDualMarkerStage создаёт стадию для двух маркеров. Стадия живёт один прогон.
func NewDualMarkerStage(detector port.MarkerDetector, cfg entity.MarkerConfig) *DualMarkerStage {
	return &DualMarkerStage{detector: detector, cfg: cfg}
}

func (s *DualMarkerStage) detect(ctx context.Context, img image.Image, sc *entity.StageContext) ([]entity.Marker, error) {
	if s.markers != nil {
		sc.Put("markers", s.markers)
		return s.markers, nil
	}
	markers, err := s.detector.DetectMarkers(ctx, img, s.cfg.Family, sc)
	if err != nil {
		return nil, fmt.Errorf("detect markers: %w", err)
	}
	sc.Put("markers", markers)

	if len(markers) != 2 {
		kind := entity.ErrMarkerCountMismatch
		if len(markers) == 0 {
			kind = entity.ErrMarkerNotFound
		}
		return nil, &entity.MarkerDetectionError{
			Kind:          kind,
			ExpectedCount: 2,
			DetectedCount: len(markers),
			ExpectedID:    -1,
			DetectedIDs:   markerIDs(markers),
			DebugImage:    debugImage(sc),
		}
	}
	s.markers = markers
	return markers, nil
}

// GetScale мм на пиксель по среднему размеру двух маркеров
func (s *DualMarkerStage) GetScale(ctx context.Context, img image.Image, sc *entity.StageContext) (float64, error) {
	markers, err := s.detect(ctx, img, sc)
	if err != nil {
		return 0, err
	}
	v, err := scale.DualMarkerScale(markers[0], markers[1], float64(s.cfg.SizeMM))
	if err != nil {
		return 0, err
	}
	sc.Put("scale", v)
	return v, nil
}

// Detect контур окна как прямоугольник между крайними углами маркеров
func (s *DualMarkerStage) Detect(ctx context.Context, img image.Image, sc *entity.StageContext) (entity.WindowCorners, error) {
	markers, err := s.detect(ctx, img, sc)
	if err != nil {
		return entity.WindowCorners{}, err
	}
	diag, top, bottom := scale.ResolveDiagonal(markers[0], markers[1])
	near, far, err := scale.ExtremeCorners(scale.Corners(top, bottom), diag)
	if err != nil {
		return entity.WindowCorners{}, err
	}
	sc.Put("diagonal", diag.String())
	sc.Put("extreme_corners", [2]entity.Point{near, far})

	quad := entity.RectQuad(near, far)
	sc.Put("quad", quad)
	return entity.WindowCorners{Quad: quad, Confidence: entity.ConfidenceFull}, nil
}

// LineWindowDetector контур окна по линиям: карта краёв, отрезки, выбор сторон, подгонка
type LineWindowDetector struct {
	edges    port.EdgeMapBuilder
	segments port.SegmentDetector
	selector *geometry.LineSelector
	fitter   *geometry.QuadFitter
}

// NewLineWindowDetector создаёт детектор окна
func NewLineWindowDetector(edges port.EdgeMapBuilder, segments port.SegmentDetector, selector *geometry.LineSelector, fitter *geometry.QuadFitter) *LineWindowDetector {
	return &LineWindowDetector{edges: edges, segments: segments, selector: selector, fitter: fitter}
}

// Detect находит четыре угла окна
func (d *LineWindowDetector) Detect(ctx context.Context, img image.Image, sc *entity.StageContext) (entity.WindowCorners, error) {
	mask, err := d.edges.Build(ctx, img, sc)
	if err != nil {
		return entity.WindowCorners{}, fmt.Errorf("build edge map: %w", err)
	}
	sc.PutImage("edges", mask)

	segs, err := d.segments.Detect(ctx, mask)
	if err != nil {
		return entity.WindowCorners{}, fmt.Errorf("detect segments: %w", err)
	}
	sc.Put("segments", segs)

	sel, err := d.selector.Select(segs, img.Bounds())
	if err != nil {
		return entity.WindowCorners{}, err
	}
	sc.Put("filtered", sel.Filtered)
	sc.Put("selected", sel.Lines)
	sc.Put("centroid", sel.Centroid)

	quad, err := d.fitter.Fit(sel.Lines, img.Bounds())
	if err != nil {
		return entity.WindowCorners{}, err
	}
	sc.Put("quad", quad)
	return entity.WindowCorners{Quad: quad, Confidence: sel.Confidence}, nil
}

// QuadDimensionCalculator размеры по сторонам 0-1 и 0-3 четырёхугольника
type QuadDimensionCalculator struct{}

// Calculate переводит пиксели в дюймы
func (QuadDimensionCalculator) Calculate(ctx context.Context, quad entity.Quadrilateral, scaleMM float64, sc *entity.StageContext) (entity.Dimensions, error) {
	_ = ctx
	if !(scaleMM > 0) || math.IsInf(scaleMM, 0) {
		return entity.Dimensions{}, fmt.Errorf("scale %v mm/px: %w", scaleMM, entity.ErrDegenerateScale)
	}
	w, h := quad.Width(), quad.Height()
	sc.Put("width_px", w)
	sc.Put("height_px", h)
	return entity.Dimensions{
		WidthIn:  w * scaleMM / entity.MMPerInch,
		HeightIn: h * scaleMM / entity.MMPerInch,
	}, nil
}

// StageFactory собирает свежий конвейер на каждый прогон
type StageFactory struct {
	Markers  port.MarkerDetector
	Edges    port.EdgeMapBuilder
	Segments port.SegmentDetector
	Selector geometry.SelectorConfig
	Fitter   geometry.FitterConfig
}

// ScaleProvider стадия масштаба для настроек маркера
func (f *StageFactory) ScaleProvider(cfg entity.MarkerConfig) port.ScaleProvider {
	if cfg.Count == 2 {
		return NewDualMarkerStage(f.Markers, cfg)
	}
	return NewSingleMarkerScale(f.Markers, cfg)
}

// WindowDetector стадия поиска окна для настроек маркера
func (f *StageFactory) WindowDetector(cfg entity.MarkerConfig) port.WindowDetector {
	if cfg.Count == 2 {
		return NewDualMarkerStage(f.Markers, cfg)
	}
	return f.lineDetector()
}

func (f *StageFactory) lineDetector() *LineWindowDetector {
	return NewLineWindowDetector(f.Edges, f.Segments,
		geometry.NewLineSelector(f.Selector), geometry.NewQuadFitter(f.Fitter))
}

// NewPipeline конвейер для настроек маркера; для двух маркеров одна стадия отвечает за масштаб и контур
func (f *StageFactory) NewPipeline(cfg entity.MarkerConfig) *Pipeline {
	if cfg.Count == 2 {
		dual := NewDualMarkerStage(f.Markers, cfg)
		return NewPipeline(dual, dual, QuadDimensionCalculator{})
	}
	return NewPipeline(NewSingleMarkerScale(f.Markers, cfg), f.lineDetector(), QuadDimensionCalculator{})
}
