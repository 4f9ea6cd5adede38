package app

import (
	"context"
	"image"
	"sync"
	"sync/atomic"

	"window-measure/internal/domain/entity"
	"window-measure/internal/domain/geometry"
	"window-measure/internal/infrastructure/logging"
	"window-measure/internal/infrastructure/raster"
	"window-measure/internal/infrastructure/storage"
)

type fakeMarkers struct {
	markers []entity.Marker
	err     error
	calls   atomic.Int32
}

func (f *fakeMarkers) DetectMarkers(ctx context.Context, img image.Image, family entity.MarkerFamily, sc *entity.StageContext) ([]entity.Marker, error) {
	f.calls.Add(1)
	sc.PutImage(entity.ImageMarkers, image.NewGray(image.Rect(0, 0, 2, 2)))
	return f.markers, f.err
}

type fakeEdges struct{}

func (fakeEdges) Build(ctx context.Context, img image.Image, sc *entity.StageContext) (*image.Gray, error) {
	mask := image.NewGray(img.Bounds())
	sc.PutImage("edge_mask", mask)
	return mask, nil
}

type fakeSegments struct {
	segs []entity.LineSegment
	err  error
}

func (f fakeSegments) Detect(ctx context.Context, mask *image.Gray) ([]entity.LineSegment, error) {
	return f.segs, f.err
}

type recordingSink struct {
	mu     sync.Mutex
	stages []string
}

func (r *recordingSink) Save(run, stage string, sc *entity.StageContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, run+"_"+stage)
	return nil
}

func squareMarker(id int, x, y, side float64) entity.Marker {
	return entity.Marker{ID: id, Corners: [4]entity.Point{
		entity.Pt(x, y), entity.Pt(x+side, y), entity.Pt(x+side, y+side), entity.Pt(x, y+side),
	}}
}

// windowSides стороны окна TL(100,100), BR(554,1045) с шумом внутри рамы
func windowSides() []entity.LineSegment {
	return []entity.LineSegment{
		entity.Seg(100, 100, 554, 100),
		entity.Seg(554, 100, 554, 1045),
		entity.Seg(100, 1045, 554, 1045),
		entity.Seg(100, 100, 100, 1045),
		entity.Seg(130, 140, 520, 141),
		entity.Seg(200, 300, 400, 500),
	}
}

func newFactory(markers *fakeMarkers, segs fakeSegments) *StageFactory {
	return &StageFactory{
		Markers:  markers,
		Edges:    fakeEdges{},
		Segments: segs,
		Selector: geometry.DefaultSelectorConfig(),
		Fitter:   geometry.DefaultFitterConfig(),
	}
}

func newService(factory *StageFactory, sink *recordingSink) *MeasurementService {
	opts := MeasurementOptions{
		Defaults: entity.DefaultMarkerConfig(),
		MaxSide:  2000,
		Logger:   logging.Discard(),
	}
	if sink != nil {
		opts.Sink = sink
	}
	users := NewUserService(storage.NewMemoryUserRepository())
	return NewMeasurementService(users, factory, raster.NewCodec(85), raster.NewAnnotator(0), opts)
}
