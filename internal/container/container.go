package container

import (
	"github.com/sirupsen/logrus"

	"window-measure/config"
	app "window-measure/internal/application"
	"window-measure/internal/domain/geometry"
	"window-measure/internal/domain/port"
	"window-measure/internal/infrastructure/raster"
	"window-measure/internal/infrastructure/vision"
)

const jpegQuality = 90

type Container struct {
	UserService        *app.UserService
	MeasurementService *app.MeasurementService
	Codec              port.ImageCodec
}

// VisionConfig параметры бэкенда зрения из общей конфигурации
func VisionConfig(cfg *config.Config) vision.Config {
	vc := vision.DefaultConfig()
	vc.Hough.Threshold = cfg.HoughThreshold
	vc.Hough.MinLineRatio = cfg.MinLineRatio
	vc.Hough.MaxGapRatio = cfg.MaxGapRatio
	return vc
}

func New(cfg *config.Config, userRepo port.UserRepository, log logrus.FieldLogger) *Container {
	vc := VisionConfig(cfg)
	factory := &app.StageFactory{
		Markers:  vision.NewMarkerDetector(),
		Edges:    vision.NewEdgeMapBuilder(vc),
		Segments: vision.NewSegmentDetector(vc),
		Selector: geometry.DefaultSelectorConfig(),
		Fitter:   geometry.DefaultFitterConfig(),
	}

	opts := app.MeasurementOptions{
		Defaults: cfg.Marker,
		MaxSide:  cfg.MaxSide,
		Logger:   log,
	}
	if cfg.DebugDir != "" {
		opts.Sink = raster.NewDirSink(cfg.DebugDir)
	}

	codec := raster.NewCodec(jpegQuality)
	userService := app.NewUserService(userRepo)
	measurementService := app.NewMeasurementService(userService, factory, codec, raster.NewAnnotator(0), opts)

	log.WithField("backend", vision.Backend).Info("vision backend selected")

	return &Container{
		UserService:        userService,
		MeasurementService: measurementService,
		Codec:              codec,
	}
}
