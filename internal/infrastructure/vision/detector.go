//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"window-measure/internal/domain/entity"
	"window-measure/internal/domain/port"
	"window-measure/internal/infrastructure/raster"
)

// Backend имя активного бэкенда
const Backend = "gocv"

// NewEdgeMapBuilder карта краёв на OpenCV
func NewEdgeMapBuilder(cfg Config) port.EdgeMapBuilder {
	return &GoCVEdgeMapBuilder{cfg: cfg.Edge}
}

// NewSegmentDetector HoughLinesP из OpenCV
func NewSegmentDetector(cfg Config) port.SegmentDetector {
	return &GoCVSegmentDetector{cfg: cfg.Hough}
}

// NewMarkerDetector детектор ArUco/AprilTag
func NewMarkerDetector() port.MarkerDetector {
	return &GoCVMarkerDetector{}
}

// GoCVEdgeMapBuilder маска краёв: пересечение маски DoG и расширенного Canny
type GoCVEdgeMapBuilder struct {
	cfg raster.EdgeConfig
}

// Build возвращает бинарную маску размера img
func (b *GoCVEdgeMapBuilder) Build(ctx context.Context, img image.Image, sc *entity.StageContext) (*image.Gray, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("empty image")
	}
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	fine := dog(gray, b.cfg.FineSigmas)
	defer fine.Close()
	putMat(sc, raster.ImageDoGFine, fine)
	coarse := dog(gray, b.cfg.CoarseSigmas)
	defer coarse.Close()
	putMat(sc, raster.ImageDoGCoarse, coarse)

	combined := gocv.NewMat()
	defer combined.Close()
	gocv.AddWeighted(fine, 1-b.cfg.CoarseWeight, coarse, b.cfg.CoarseWeight, 0, &combined)
	putMat(sc, raster.ImageDoGCombined, combined)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(5, 5))
	defer kernel.Close()

	third := dog(combined, b.cfg.MaskSigmas)
	defer third.Close()
	boxed := gocv.NewMat()
	defer boxed.Close()
	box := int(2 * b.cfg.BoxRadius)
	gocv.Blur(third, &boxed, image.Pt(box, box))
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(boxed, &mask, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	for i := 0; i < b.cfg.MaskDilations; i++ {
		gocv.Dilate(mask, &mask, kernel)
	}
	putMat(sc, raster.ImageDoGMask, mask)

	// Пороги Canny из порога Оцу по серому изображению.
	otsu := gocv.NewMat()
	defer otsu.Close()
	t := gocv.Threshold(gray, &otsu, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, t, 1.5*t)
	putMat(sc, raster.ImageCanny, edges)
	for i := 0; i < b.cfg.EdgeDilations; i++ {
		gocv.Dilate(edges, &edges, kernel)
	}
	for i := 0; i < b.cfg.EdgeClosings; i++ {
		gocv.MorphologyEx(edges, &edges, gocv.MorphClose, kernel)
	}
	putMat(sc, raster.ImageEdgeMask, edges)

	out := gocv.NewMat()
	defer out.Close()
	gocv.BitwiseAnd(mask, edges, &out)
	g, err := matToGray(out)
	if err != nil {
		return nil, err
	}
	g.Rect = img.Bounds()
	return g, nil
}

// dog насыщающая разность двух гауссовых размытий, нормированная на [0, 255]
func dog(src gocv.Mat, sigmas [2]float64) gocv.Mat {
	small := gocv.NewMat()
	defer small.Close()
	large := gocv.NewMat()
	defer large.Close()
	gocv.GaussianBlur(src, &small, image.Pt(0, 0), sigmas[0], sigmas[0], gocv.BorderDefault)
	gocv.GaussianBlur(src, &large, image.Pt(0, 0), sigmas[1], sigmas[1], gocv.BorderDefault)

	out := gocv.NewMat()
	gocv.Subtract(small, large, &out)
	gocv.Normalize(out, &out, 0, 255, gocv.NormMinMax)
	return out
}

func putMat(sc *entity.StageContext, name string, m gocv.Mat) {
	if sc == nil {
		return
	}
	img, err := m.ToImage()
	if err != nil {
		return
	}
	sc.PutImage(name, img)
}

func matToGray(m gocv.Mat) (*image.Gray, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert mask: %w", err)
	}
	if g, ok := img.(*image.Gray); ok {
		return g, nil
	}
	return raster.ToGray(img), nil
}

// GoCVSegmentDetector вероятностное преобразование Хафа
type GoCVSegmentDetector struct {
	cfg raster.HoughConfig
}

// Detect возвращает отрезки в координатах маски
func (d *GoCVSegmentDetector) Detect(ctx context.Context, mask *image.Gray) ([]entity.LineSegment, error) {
	if mask == nil || mask.Bounds().Empty() {
		return nil, errors.New("empty mask")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := mask.Bounds()
	m, err := gocv.ImageGrayToMatGray(mask)
	if err != nil {
		return nil, fmt.Errorf("convert mask: %w", err)
	}
	defer m.Close()

	longSide := float64(max(b.Dx(), b.Dy()))
	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(m, &lines, 1, math.Pi/180, d.cfg.Threshold,
		float32(d.cfg.MinLineRatio*longSide), float32(d.cfg.MaxGapRatio*longSide))

	out := make([]entity.LineSegment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		out = append(out, entity.Seg(
			float64(v[0])+float64(b.Min.X), float64(v[1])+float64(b.Min.Y),
			float64(v[2])+float64(b.Min.X), float64(v[3])+float64(b.Min.Y),
		))
	}
	return out, nil
}

// GoCVMarkerDetector поиск квадратных маркеров ArUco и AprilTag
type GoCVMarkerDetector struct{}

// DetectMarkers возвращает все найденные маркеры; пустой результат не ошибка
func (d *GoCVMarkerDetector) DetectMarkers(ctx context.Context, img image.Image, family entity.MarkerFamily, sc *entity.StageContext) ([]entity.Marker, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("empty image")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := gocv.NewArucoDetectorParameters()
	dict := gocv.ArucoDict4x4_50
	if family == entity.FamilyAprilTag16h5 {
		dict = gocv.ArucoDictAprilTag_16h5
		params.SetMarkerBorderBits(2)
		params.SetAdaptiveThreshWinSizeStep(1)
	}
	detector := gocv.NewArucoDetectorWithParams(gocv.GetPredefinedDictionary(dict), params)
	defer detector.Close()

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer src.Close()
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	corners, ids, rejected := detector.DetectMarkers(gray)

	b := img.Bounds()
	markers := make([]entity.Marker, 0, len(ids))
	for i, id := range ids {
		if len(corners[i]) < 4 {
			continue
		}
		m := entity.Marker{ID: id}
		for j := 0; j < 4; j++ {
			m.Corners[j] = entity.Pt(float64(corners[i][j].X)+float64(b.Min.X), float64(corners[i][j].Y)+float64(b.Min.Y))
		}
		markers = append(markers, m)
	}

	if sc != nil {
		debug := src.Clone()
		defer debug.Close()
		if len(ids) > 0 {
			gocv.ArucoDrawDetectedMarkers(debug, corners, ids, gocv.NewScalar(0, 255, 0, 0))
		}
		// отвергнутые кандидаты красным, без идентификаторов
		if outlines := candidateOutlines(rejected); len(outlines) > 0 {
			pv := gocv.NewPointsVectorFromPoints(outlines)
			gocv.Polylines(&debug, pv, true, color.RGBA{R: 255, A: 255}, 2)
			pv.Close()
		}
		putMat(sc, entity.ImageMarkers, debug)
	}
	return markers, nil
}

// candidateOutlines переводит углы кандидатов в замкнутые ломаные для отрисовки
func candidateOutlines(candidates [][]gocv.Point2f) [][]image.Point {
	out := make([][]image.Point, 0, len(candidates))
	for _, c := range candidates {
		if len(c) < 3 {
			continue
		}
		pts := make([]image.Point, len(c))
		for i, p := range c {
			pts[i] = image.Pt(int(math.Round(float64(p.X))), int(math.Round(float64(p.Y))))
		}
		out = append(out, pts)
	}
	return out
}
