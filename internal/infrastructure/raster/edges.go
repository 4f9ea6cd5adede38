// Package raster чистый Go бэкенд обработки изображений: декодирование, карта краёв,
// поиск отрезков и отрисовка результатов.
package raster

import (
	"context"
	"errors"
	"image"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"

	"window-measure/internal/domain/entity"
)

// Имена промежуточных изображений в StageContext
const (
	ImageCanny       = "canny"
	ImageDoGFine     = "dog_fine"
	ImageDoGCoarse   = "dog_coarse"
	ImageDoGCombined = "dog_combined"
	ImageDoGMask     = "dog_mask"
	ImageEdgeMask    = "edge_mask"
)

// EdgeConfig параметры построения карты краёв
type EdgeConfig struct {
	FineSigmas    [2]float64
	CoarseSigmas  [2]float64
	CoarseWeight  float64 // вес грубой DoG при смешивании, тонкая получает 1-CoarseWeight
	MaskSigmas    [2]float64
	BoxRadius     float64
	MaskDilations int
	EdgeDilations int
	EdgeClosings  int
	MorphRadius   float64 // радиус ядра морфологии, 2 соответствует 5x5
	EdgeBlurSigma float64
}

// DefaultEdgeConfig параметры, подобранные на снимках окон
func DefaultEdgeConfig() EdgeConfig {
	return EdgeConfig{
		FineSigmas:    [2]float64{4, 7},
		CoarseSigmas:  [2]float64{20, 25},
		CoarseWeight:  0.4,
		MaskSigmas:    [2]float64{10, 13},
		BoxRadius:     5,
		MaskDilations: 3,
		EdgeDilations: 2,
		EdgeClosings:  2,
		MorphRadius:   2,
		EdgeBlurSigma: 1,
	}
}

// EdgeMapBuilder строит бинарную маску краёв окна: пересечение маски DoG и маски градиента.
// Вместо Canny используется модуль градиента Собеля с порогом Оцу.
type EdgeMapBuilder struct {
	cfg EdgeConfig
}

// NewEdgeMapBuilder создаёт построитель
func NewEdgeMapBuilder(cfg EdgeConfig) *EdgeMapBuilder {
	return &EdgeMapBuilder{cfg: cfg}
}

// Build возвращает маску того же размера, что и img, со значениями 0 и 255
func (b *EdgeMapBuilder) Build(ctx context.Context, img image.Image, sc *entity.StageContext) (*image.Gray, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("empty image")
	}
	gray := ToGray(img)

	fine := differenceOfGaussians(gray, b.cfg.FineSigmas)
	sc.PutImage(ImageDoGFine, fine)
	coarse := differenceOfGaussians(gray, b.cfg.CoarseSigmas)
	sc.PutImage(ImageDoGCoarse, coarse)
	combined := ToGray(blend.Opacity(fine, coarse, b.cfg.CoarseWeight))
	sc.PutImage(ImageDoGCombined, combined)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mask := differenceOfGaussians(combined, b.cfg.MaskSigmas)
	mask = ToGray(blur.Box(mask, b.cfg.BoxRadius))
	mask = binarize(mask)
	for i := 0; i < b.cfg.MaskDilations; i++ {
		mask = ToGray(effect.Dilate(mask, b.cfg.MorphRadius))
	}
	sc.PutImage(ImageDoGMask, mask)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	edges := binarize(sobelMagnitude(ToGray(imaging.Blur(gray, b.cfg.EdgeBlurSigma))))
	sc.PutImage(ImageCanny, edges)
	for i := 0; i < b.cfg.EdgeDilations; i++ {
		edges = ToGray(effect.Dilate(edges, b.cfg.MorphRadius))
	}
	for i := 0; i < b.cfg.EdgeClosings; i++ {
		edges = ToGray(effect.Erode(effect.Dilate(edges, b.cfg.MorphRadius), b.cfg.MorphRadius))
	}
	sc.PutImage(ImageEdgeMask, edges)

	out := segment.Threshold(blend.Multiply(mask, edges), 128)
	return rebase(out, img.Bounds()), nil
}

// differenceOfGaussians насыщающая разность двух размытий, растянутая на [0, 255]
func differenceOfGaussians(src image.Image, sigmas [2]float64) *image.Gray {
	small := imaging.Blur(src, sigmas[0])
	large := imaging.Blur(src, sigmas[1])
	return normalize(ToGray(blend.Subtract(small, large)))
}

// binarize порог Оцу: пиксели выше порога становятся 255
func binarize(g *image.Gray) *image.Gray {
	t := OtsuThreshold(g)
	if t == 255 {
		return image.NewGray(g.Bounds())
	}
	return segment.Threshold(g, t+1)
}

// normalize min-max растяжение яркостей на [0, 255]; однотонное изображение становится чёрным
func normalize(g *image.Gray) *image.Gray {
	lo, hi := uint8(255), uint8(0)
	for _, v := range g.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := image.NewGray(g.Bounds())
	if hi <= lo {
		return out
	}
	span := float64(hi - lo)
	for i, v := range g.Pix {
		out.Pix[i] = uint8(float64(v-lo)*255/span + 0.5)
	}
	return out
}

// ToGray копирует изображение в *image.Gray с началом координат в (0, 0)
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

// sobelMagnitude модуль градиента Собеля |(gx, gy)|, растянутый на [0, 255].
// Считается в float64, поэтому перепады обоих знаков дают одинаковый отклик.
func sobelMagnitude(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	at := func(x, y int) float64 {
		x = min(max(x, 0), w-1)
		y = min(max(y, 0), h-1)
		return float64(g.Pix[y*g.Stride+x])
	}

	mag := make([]float64, w*h)
	peak := 0.0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			m := math.Sqrt(gx*gx + gy*gy)
			mag[y*w+x] = m
			peak = math.Max(peak, m)
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	if peak == 0 {
		return out
	}
	for i, m := range mag {
		out.Pix[i] = uint8(m*255/peak + 0.5)
	}
	return out
}

// rebase переносит маску в систему координат исходного изображения
func rebase(g *image.Gray, bounds image.Rectangle) *image.Gray {
	if g.Bounds() == bounds {
		return g
	}
	g.Rect = bounds
	return g
}
