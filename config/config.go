package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"window-measure/internal/domain/entity"
)

type Config struct {
	TelegramToken string

	Marker  entity.MarkerConfig
	MaxSide int

	DebugDir  string
	LogLevel  string
	LogFormat string

	ReportWorkers int

	HoughThreshold int
	MinLineRatio   float64
	MaxGapRatio    float64
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		DebugDir:      os.Getenv("DEBUG_DIR"),
		LogLevel:      getString("LOG_LEVEL", "info"),
		LogFormat:     getString("LOG_FORMAT", "json"),
	}

	family, err := entity.ParseMarkerFamily(getString("MARKER_FAMILY", string(entity.FamilyAruco4x4)))
	if err != nil {
		return nil, fmt.Errorf("MARKER_FAMILY: %w", err)
	}
	cfg.Marker.Family = family

	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"MARKER_SIZE_MM", 100, &cfg.Marker.SizeMM},
		{"MARKER_ID", 0, &cfg.Marker.ID},
		{"MARKER_COUNT", 1, &cfg.Marker.Count},
		{"MAX_SIDE", 2000, &cfg.MaxSide},
		{"REPORT_WORKERS", 4, &cfg.ReportWorkers},
		{"HOUGH_THRESHOLD", 10, &cfg.HoughThreshold},
	}
	for _, v := range ints {
		if *v.dst, err = getInt(v.key, v.def); err != nil {
			return nil, err
		}
	}
	if cfg.MinLineRatio, err = getFloat("MIN_LINE_RATIO", 0.18); err != nil {
		return nil, err
	}
	if cfg.MaxGapRatio, err = getFloat("MAX_GAP_RATIO", 0.014); err != nil {
		return nil, err
	}

	if err := cfg.Marker.Validate(); err != nil {
		return nil, fmt.Errorf("marker config: %w", err)
	}
	if cfg.ReportWorkers < 1 {
		return nil, fmt.Errorf("REPORT_WORKERS must be positive, got %d", cfg.ReportWorkers)
	}

	return cfg, nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, v)
	}
	return f, nil
}
