package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"window-measure/internal/domain/entity"
)

// Annotator рисует найденный четырёхугольник и размеры поверх снимка
type Annotator struct {
	StrokeWidth float64
}

// NewAnnotator создаёт аннотатор; толщина линии подбирается под размер снимка, если width <= 0
func NewAnnotator(width float64) *Annotator {
	return &Annotator{StrokeWidth: width}
}

// sidePalette цвета сторон: верх, право, низ, лево
func sidePalette() [4]color.Color {
	var out [4]color.Color
	for i := range out {
		out[i] = colorful.Hsv(float64(i)*90+20, 0.85, 1)
	}
	return out
}

// Annotate возвращает копию img с контуром окна и подписью размеров
func (a *Annotator) Annotate(img image.Image, quad entity.Quadrilateral, dims entity.Dimensions) (image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("empty image")
	}
	b := img.Bounds()
	dst := imaging.Clone(img)

	width := a.StrokeWidth
	if width <= 0 {
		width = math.Max(2, float64(max(b.Dx(), b.Dy()))/250)
	}

	palette := sidePalette()
	for i := 0; i < 4; i++ {
		p, q := quad[i], quad[(i+1)%4]
		p.X, p.Y = p.X-float64(b.Min.X), p.Y-float64(b.Min.Y)
		q.X, q.Y = q.X-float64(b.Min.X), q.Y-float64(b.Min.Y)
		strokeSegment(dst, p, q, width, palette[i])
	}

	label := fmt.Sprintf("W %.2f in  H %.2f in", dims.WidthIn, dims.HeightIn)
	if dims.Confidence == entity.ConfidencePartial {
		label += " (partial)"
	}
	drawLabel(dst, label, quad[0].X-float64(b.Min.X), quad[0].Y-float64(b.Min.Y))
	return dst, nil
}

// strokeSegment закрашивает прямоугольник толщины width вдоль отрезка pq
func strokeSegment(dst *image.NRGBA, p, q entity.Point, width float64, c color.Color) {
	dx, dy := q.X-p.X, q.Y-p.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2

	r := dst.Bounds()
	w, h := float64(r.Dx()), float64(r.Dy())
	clamp := func(x, y float64) (float32, float32) {
		return float32(math.Min(math.Max(x, 0), w)), float32(math.Min(math.Max(y, 0), h))
	}
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	z.MoveTo(clamp(p.X+nx, p.Y+ny))
	z.LineTo(clamp(q.X+nx, q.Y+ny))
	z.LineTo(clamp(q.X-nx, q.Y-ny))
	z.LineTo(clamp(p.X-nx, p.Y-ny))
	z.ClosePath()
	z.Draw(dst, r, image.NewUniform(c), image.Point{})
}

func drawLabel(dst *image.NRGBA, text string, x, y float64) {
	face := basicfont.Face7x13
	r := dst.Bounds()
	px := int(math.Max(4, math.Min(x, float64(r.Dx()-7*len(text)-4))))
	py := int(math.Max(17, y-6))

	bg := image.Rect(px-3, py-13, px+7*len(text)+3, py+4).Intersect(r)
	for yy := bg.Min.Y; yy < bg.Max.Y; yy++ {
		for xx := bg.Min.X; xx < bg.Max.X; xx++ {
			dst.Set(xx, yy, color.NRGBA{A: 255})
		}
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(px, py),
	}
	d.DrawString(text)
}
