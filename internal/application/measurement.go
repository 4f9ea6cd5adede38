package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strconv"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"window-measure/internal/domain/entity"
	"window-measure/internal/domain/port"
)

// MeasurementService измеряет окно на фото: декодирование, конвейер, подпись результата
type MeasurementService struct {
	users     *UserService
	factory   *StageFactory
	codec     port.ImageCodec
	annotator port.Annotator
	sink      port.ArtifactSink
	defaults  entity.MarkerConfig
	maxSide   int
	log       logrus.FieldLogger
	runs      atomic.Int64
}

// MeasurementOptions необязательные зависимости и настройки сервиса
type MeasurementOptions struct {
	Sink     port.ArtifactSink // nil, если отладочные картинки не нужны
	Defaults entity.MarkerConfig
	MaxSide  int
	Logger   logrus.FieldLogger
}

// MeasurementOutput результат измерения и фото с контуром окна
type MeasurementOutput struct {
	Dimensions entity.Dimensions
	Corners    entity.WindowCorners
	Scale      float64
	Annotated  []byte
	Context    *PipelineContext
}

// NewMeasurementService создаёт сервис измерения окон.
func NewMeasurementService(users *UserService, factory *StageFactory, codec port.ImageCodec, annotator port.Annotator, opts MeasurementOptions) *MeasurementService {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &MeasurementService{
		users:     users,
		factory:   factory,
		codec:     codec,
		annotator: annotator,
		sink:      opts.Sink,
		defaults:  opts.Defaults,
		maxSide:   opts.MaxSide,
		log:       log,
	}
}

// Defaults настройки маркера по умолчанию
func (s *MeasurementService) Defaults() entity.MarkerConfig {
	return s.defaults
}

// AcceptPhoto измеряет окно на фото пользователя и возвращает его в главное меню.
// Используются личные настройки маркера пользователя, если они заданы.
func (s *MeasurementService) AcceptPhoto(ctx context.Context, userID, chatID int64, photo []byte) (*MeasurementOutput, error) {
	user, err := s.users.SetState(ctx, userID, chatID, entity.StateProcessing)
	if err != nil {
		return nil, err
	}
	cfg := user.MarkerOr(s.defaults)

	out, measureErr := s.Measure(ctx, photo, cfg)
	if _, err := s.users.SetState(ctx, userID, chatID, entity.StateMainMenu); err != nil {
		return nil, err
	}
	return out, measureErr
}

// Measure декодирует снимок, уменьшает до MaxSide и измеряет окно
func (s *MeasurementService) Measure(ctx context.Context, imageData []byte, cfg entity.MarkerConfig) (*MeasurementOutput, error) {
	if s.codec == nil {
		return nil, errors.New("image codec is not configured")
	}
	img, err := s.codec.Decode(imageData)
	if err != nil {
		return nil, err
	}
	img = s.codec.Fit(img, s.maxSide)
	return s.MeasureImage(ctx, s.nextRun(), img, cfg)
}

// MeasureImage прогоняет конвейер на готовом изображении. run задаёт имя отладочных файлов.
func (s *MeasurementService) MeasureImage(ctx context.Context, run string, img image.Image, cfg entity.MarkerConfig) (*MeasurementOutput, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("marker config: %w", err)
	}
	if s.factory == nil {
		return nil, errors.New("pipeline factory is not configured")
	}
	log := s.log.WithFields(logrus.Fields{
		"run":          run,
		"marker_count": cfg.Count,
		"marker_size":  cfg.SizeMM,
		"family":       cfg.Family,
	})

	dims, pc, err := s.factory.NewPipeline(cfg).Run(ctx, img)
	s.saveArtifacts(run, pc, log)
	if err != nil {
		log.WithError(err).Warn("measurement failed")
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"scale_mm_px": pc.Scale,
		"corners":     pc.Corners.Quad,
		"confidence":  dims.Confidence,
	}).Debug("window detected")
	log.WithFields(logrus.Fields{
		"width_in":  dims.WidthIn,
		"height_in": dims.HeightIn,
	}).Info("window measured")

	out := &MeasurementOutput{
		Dimensions: dims,
		Corners:    pc.Corners,
		Scale:      pc.Scale,
		Context:    pc,
	}
	if s.annotator != nil && s.codec != nil {
		annotated, err := s.annotator.Annotate(img, pc.Corners.Quad, dims)
		if err != nil {
			return nil, fmt.Errorf("annotate: %w", err)
		}
		if out.Annotated, err = s.codec.EncodeJPEG(annotated); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DetectCorners находит углы окна без расчёта масштаба
func (s *MeasurementService) DetectCorners(ctx context.Context, img image.Image, cfg entity.MarkerConfig) (entity.WindowCorners, *entity.StageContext, error) {
	if err := cfg.Validate(); err != nil {
		return entity.WindowCorners{}, nil, fmt.Errorf("marker config: %w", err)
	}
	sc := entity.NewStageContext()
	corners, err := s.factory.WindowDetector(cfg).Detect(ctx, img, sc)
	return corners, sc, err
}

// ComputeDimensions переводит готовые углы окна в дюймы по маркерам на img
func (s *MeasurementService) ComputeDimensions(ctx context.Context, img image.Image, quad entity.Quadrilateral, cfg entity.MarkerConfig) (entity.Dimensions, error) {
	if err := cfg.Validate(); err != nil {
		return entity.Dimensions{}, fmt.Errorf("marker config: %w", err)
	}
	mm, err := s.factory.ScaleProvider(cfg).GetScale(ctx, img, entity.NewStageContext())
	if err != nil {
		return entity.Dimensions{}, err
	}
	dims, err := QuadDimensionCalculator{}.Calculate(ctx, quad, mm, nil)
	if err != nil {
		return entity.Dimensions{}, err
	}
	dims.Confidence = entity.ConfidenceFull
	return dims, nil
}

func (s *MeasurementService) saveArtifacts(run string, pc *PipelineContext, log logrus.FieldLogger) {
	if s.sink == nil || pc == nil {
		return
	}
	stages := []struct {
		name string
		sc   *entity.StageContext
	}{
		{"marker", pc.Marker},
		{"window", pc.Window},
		{"dimension", pc.Dimension},
	}
	for _, st := range stages {
		if err := s.sink.Save(run, st.name, st.sc); err != nil {
			log.WithError(err).WithField("stage", st.name).Warn("save debug images")
		}
	}
}

func (s *MeasurementService) nextRun() string {
	return "run" + strconv.FormatInt(s.runs.Add(1), 10)
}
