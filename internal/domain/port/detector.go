package port

import (
	"context"
	"image"

	"window-measure/internal/domain/entity"
)

// EdgeMapBuilder строит бинарную маску границ (0 или 255) того же размера, что и вход
type EdgeMapBuilder interface {
	// Build сохраняет промежуточные проходы в sc, если он не nil
	Build(ctx context.Context, img image.Image, sc *entity.StageContext) (*image.Gray, error)
}

// SegmentDetector ищет отрезки прямых на бинарной маске
type SegmentDetector interface {
	Detect(ctx context.Context, mask *image.Gray) ([]entity.LineSegment, error)
}

// MarkerDetector ищет фидуциальные маркеры заданного словаря
type MarkerDetector interface {
	// DetectMarkers возвращает найденные маркеры; пустой список не является ошибкой
	DetectMarkers(ctx context.Context, img image.Image, family entity.MarkerFamily, sc *entity.StageContext) ([]entity.Marker, error)
}
