// Package vision выбирает бэкенд компьютерного зрения: OpenCV (тег сборки gocv) или чистый Go.
package vision

import "window-measure/internal/infrastructure/raster"

// Config параметры обоих бэкендов
type Config struct {
	Edge  raster.EdgeConfig
	Hough raster.HoughConfig
}

// DefaultConfig параметры по умолчанию
func DefaultConfig() Config {
	return Config{
		Edge:  raster.DefaultEdgeConfig(),
		Hough: raster.DefaultHoughConfig(),
	}
}
