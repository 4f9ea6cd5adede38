package app

import (
	"context"
	"image"

	"window-measure/internal/domain/entity"
	"window-measure/internal/domain/port"
)

// PipelineContext отладочные данные одного прогона, по контексту на стадию
type PipelineContext struct {
	Marker    *entity.StageContext
	Window    *entity.StageContext
	Dimension *entity.StageContext

	Scale   float64
	Corners entity.WindowCorners
}

// Pipeline масштаб, затем контур окна, затем размеры
type Pipeline struct {
	scale  port.ScaleProvider
	window port.WindowDetector
	dims   port.DimensionCalculator
}

// NewPipeline собирает конвейер из трёх стадий
func NewPipeline(scale port.ScaleProvider, window port.WindowDetector, dims port.DimensionCalculator) *Pipeline {
	return &Pipeline{scale: scale, window: window, dims: dims}
}

// Run выполняет стадии по порядку. Первая ошибка возвращается без изменений,
// контекст возвращается и при ошибке, чтобы можно было сохранить отладочные картинки.
func (p *Pipeline) Run(ctx context.Context, img image.Image) (entity.Dimensions, *PipelineContext, error) {
	pc := &PipelineContext{
		Marker:    entity.NewStageContext(),
		Window:    entity.NewStageContext(),
		Dimension: entity.NewStageContext(),
	}

	scale, err := p.scale.GetScale(ctx, img, pc.Marker)
	if err != nil {
		return entity.Dimensions{}, pc, err
	}
	pc.Scale = scale

	corners, err := p.window.Detect(ctx, img, pc.Window)
	if err != nil {
		return entity.Dimensions{}, pc, err
	}
	pc.Corners = corners

	dims, err := p.dims.Calculate(ctx, corners.Quad, scale, pc.Dimension)
	if err != nil {
		return entity.Dimensions{}, pc, err
	}
	dims.Confidence = corners.Confidence
	return dims, pc, nil
}
