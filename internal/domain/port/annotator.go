package port

import (
	"image"

	"window-measure/internal/domain/entity"
)

// ImageCodec декодирует фото и кодирует ответы
type ImageCodec interface {
	// Decode учитывает EXIF-ориентацию снимков с телефона
	Decode(data []byte) (image.Image, error)
	EncodeJPEG(img image.Image) ([]byte, error)
	// Fit уменьшает изображение так, чтобы длинная сторона не превышала maxSide
	Fit(img image.Image, maxSide int) image.Image
}

// Annotator рисует найденный контур окна поверх фото
type Annotator interface {
	Annotate(img image.Image, quad entity.Quadrilateral, dims entity.Dimensions) (image.Image, error)
}

// ArtifactSink сохраняет отладочные изображения стадий
type ArtifactSink interface {
	Save(run, stage string, sc *entity.StageContext) error
}
