package raster

import "image"

// Histogram гистограмма яркостей серого изображения
func Histogram(g *image.Gray) [256]int {
	var hist [256]int
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := g.Pix[g.PixOffset(b.Min.X, y):g.PixOffset(b.Max.X, y)]
		for _, v := range row {
			hist[v]++
		}
	}
	return hist
}

// OtsuThreshold порог Оцу: фон [0, t], передний план (t, 255].
// Для однотонного изображения возвращает 0.
func OtsuThreshold(g *image.Gray) uint8 {
	hist := Histogram(g)
	var total, sum float64
	for i, h := range hist {
		total += float64(h)
		sum += float64(i) * float64(h)
	}

	var (
		wB, sumB float64
		best     int
		maxVar   float64
	)
	for t := 0; t < 255; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		if v := wB * wF * (mB - mF) * (mB - mF); v > maxVar {
			maxVar, best = v, t
		}
	}
	return uint8(best)
}
