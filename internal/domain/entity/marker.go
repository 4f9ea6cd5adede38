package entity

import "fmt"

// MarkerFamily словарь фидуциальных маркеров
type MarkerFamily string

const (
	FamilyAruco4x4     MarkerFamily = "aruco4x4_50"  // ArUco 4x4, 50 символов
	FamilyAprilTag16h5 MarkerFamily = "apriltag16h5" // AprilTag 16h5
)

// ParseMarkerFamily принимает также короткие имена из CSV отчётов ("ArUco", "AprilTag")
func ParseMarkerFamily(s string) (MarkerFamily, error) {
	switch s {
	case string(FamilyAruco4x4), "aruco", "ArUco":
		return FamilyAruco4x4, nil
	case string(FamilyAprilTag16h5), "apriltag", "AprilTag":
		return FamilyAprilTag16h5, nil
	default:
		return "", fmt.Errorf("unknown marker family %q", s)
	}
}

// Marker обнаруженный маркер: идентификатор и 4 угла в порядке детектора
type Marker struct {
	ID      int
	Corners [4]Point
}

// MarkerConfig параметры калибровочных маркеров на фото
type MarkerConfig struct {
	SizeMM int          // сторона маркера в миллиметрах
	ID     int          // ожидаемый идентификатор (режим одного маркера)
	Count  int          // 1 или 2 маркера
	Family MarkerFamily // словарь маркеров
}

// DefaultMarkerConfig маркер ArUco 100 мм с ID 0
func DefaultMarkerConfig() MarkerConfig {
	return MarkerConfig{SizeMM: 100, ID: 0, Count: 1, Family: FamilyAruco4x4}
}

// Validate проверяет конфигурацию маркеров
func (c MarkerConfig) Validate() error {
	if c.SizeMM <= 0 {
		return fmt.Errorf("marker size must be positive, got %d", c.SizeMM)
	}
	if c.Count != 1 && c.Count != 2 {
		return fmt.Errorf("marker count must be 1 or 2, got %d", c.Count)
	}
	if c.ID < 0 {
		return fmt.Errorf("marker id must not be negative, got %d", c.ID)
	}
	if _, err := ParseMarkerFamily(string(c.Family)); err != nil {
		return err
	}
	return nil
}
