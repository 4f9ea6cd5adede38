package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Codec декодирует и кодирует снимки
type Codec struct {
	Quality int
}

// NewCodec создаёт кодек с заданным качеством JPEG
func NewCodec(quality int) *Codec {
	return &Codec{Quality: quality}
}

// Decode декодирует снимок с учётом EXIF-ориентации
func (c *Codec) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodeJPEG кодирует изображение в JPEG
func (c *Codec) EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(c.Quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Fit уменьшает изображение так, чтобы длинная сторона не превышала maxSide
func (c *Codec) Fit(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	if maxSide <= 0 || (b.Dx() <= maxSide && b.Dy() <= maxSide) {
		return img
	}
	return imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
}
