package raster

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"window-measure/internal/domain/entity"
)

// DefaultPreviewHeight высота сохраняемых промежуточных картинок
const DefaultPreviewHeight = 700

// DirSink сохраняет промежуточные изображения этапов в каталог
type DirSink struct {
	Dir    string
	Height int
}

// NewDirSink создаёт хранилище артефактов в dir
func NewDirSink(dir string) *DirSink {
	return &DirSink{Dir: dir, Height: DefaultPreviewHeight}
}

// Save пишет каждое изображение sc как <dir>/<run>_<stage>_<name>.jpg
func (s *DirSink) Save(run, stage string, sc *entity.StageContext) error {
	names := sc.ImageNames()
	if len(names) == 0 {
		return nil
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create debug dir: %w", err)
	}
	for _, name := range names {
		img, _ := sc.Image(name)
		if s.Height > 0 && img.Bounds().Dy() > s.Height {
			img = imaging.Resize(img, 0, s.Height, imaging.Lanczos)
		}
		path := filepath.Join(s.Dir, fmt.Sprintf("%s_%s_%s.jpg", run, stage, name))
		if err := imaging.Save(img, path); err != nil {
			return fmt.Errorf("save %s: %w", name, err)
		}
	}
	return nil
}
