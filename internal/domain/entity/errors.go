package entity

import (
	"errors"
	"fmt"
	"image"
)

var (
	ErrMarkerNotFound      = errors.New("marker not found")
	ErrMarkerCountMismatch = errors.New("marker count mismatch")
	ErrInsufficientLines   = errors.New("insufficient boundary lines")
	ErrQuadrilateralFit    = errors.New("quadrilateral fit failure")
	ErrDegenerateScale     = errors.New("degenerate scale")
	ErrBackendUnavailable  = errors.New("gocv build tag is not enabled")
)

// MarkerDetectionError ошибка поиска маркеров с ожидаемыми и найденными значениями
type MarkerDetectionError struct {
	Kind          error // ErrMarkerNotFound или ErrMarkerCountMismatch
	ExpectedCount int
	DetectedCount int
	ExpectedID    int // -1, если конкретный ID не требуется
	DetectedIDs   []int
	DebugImage    image.Image // необязательная картинка с найденными кандидатами
}

func (e *MarkerDetectionError) Error() string {
	if e.ExpectedID >= 0 {
		return fmt.Sprintf("%v: expected marker id %d, detected %d markers with ids %v",
			e.Kind, e.ExpectedID, e.DetectedCount, e.DetectedIDs)
	}
	return fmt.Sprintf("%v: expected %d markers but found %d (ids %v)",
		e.Kind, e.ExpectedCount, e.DetectedCount, e.DetectedIDs)
}

func (e *MarkerDetectionError) Unwrap() error {
	return e.Kind
}

// LineError после фильтрации осталось меньше линий, чем нужно для четырёхугольника
type LineError struct {
	Found    int
	Required int
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%v: found %d lines, need %d", ErrInsufficientLines, e.Found, e.Required)
}

func (e *LineError) Unwrap() error {
	return ErrInsufficientLines
}

// QuadFitError пересечения не сводятся к чистому четырёхугольнику
type QuadFitError struct {
	Reason   string
	Points   int // число пригодных пересечений
	Vertices int // число вершин после аппроксимации, 0 если до неё не дошли
}

func (e *QuadFitError) Error() string {
	if e.Vertices > 0 {
		return fmt.Sprintf("%v: %s (%d points, %d vertices)", ErrQuadrilateralFit, e.Reason, e.Points, e.Vertices)
	}
	return fmt.Sprintf("%v: %s (%d points)", ErrQuadrilateralFit, e.Reason, e.Points)
}

func (e *QuadFitError) Unwrap() error {
	return ErrQuadrilateralFit
}
