//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"image"

	"window-measure/internal/domain/entity"
	"window-measure/internal/domain/port"
	"window-measure/internal/infrastructure/raster"
)

// Backend имя активного бэкенда
const Backend = "pure-go"

// NewEdgeMapBuilder без OpenCV карта краёв строится на чистом Go.
func NewEdgeMapBuilder(cfg Config) port.EdgeMapBuilder {
	return raster.NewEdgeMapBuilder(cfg.Edge)
}

// NewSegmentDetector без OpenCV используется собственное преобразование Хафа.
func NewSegmentDetector(cfg Config) port.SegmentDetector {
	return raster.NewHoughDetector(cfg.Hough)
}

// NewMarkerDetector создаёт детектор-заглушку (без OpenCV).
func NewMarkerDetector() port.MarkerDetector {
	return &GoCVMarkerDetector{}
}

// GoCVMarkerDetector заглушка детектора маркеров
type GoCVMarkerDetector struct{}

// DetectMarkers возвращает ошибку, если сборка без тега gocv.
func (d *GoCVMarkerDetector) DetectMarkers(ctx context.Context, img image.Image, family entity.MarkerFamily, sc *entity.StageContext) ([]entity.Marker, error) {
	_ = ctx
	_ = img
	_ = family
	_ = sc
	return nil, entity.ErrBackendUnavailable
}
