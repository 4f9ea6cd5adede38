package port

import (
	"context"
	"image"

	"window-measure/internal/domain/entity"
)

// ScaleProvider определяет масштаб (мм на пиксель) по маркерам
type ScaleProvider interface {
	GetScale(ctx context.Context, img image.Image, sc *entity.StageContext) (float64, error)
}

// WindowDetector находит четыре угла окна
type WindowDetector interface {
	Detect(ctx context.Context, img image.Image, sc *entity.StageContext) (entity.WindowCorners, error)
}

// DimensionCalculator переводит углы окна в физические размеры
type DimensionCalculator interface {
	Calculate(ctx context.Context, quad entity.Quadrilateral, scaleMM float64, sc *entity.StageContext) (entity.Dimensions, error)
}
