// Команда measure измеряет окно на одном снимке или строит отчёт по набору снимков.
//
//	measure -image photo.jpg [-annotated out.jpg]
//	measure -report data.csv -images dir [-out results.csv]
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"window-measure/config"
	"window-measure/internal/container"
	"window-measure/internal/domain/entity"
	"window-measure/internal/domain/port"
	"window-measure/internal/infrastructure/logging"
	"window-measure/internal/infrastructure/storage"
)

func main() {
	imagePath := flag.String("image", "", "photo to measure")
	annotated := flag.String("annotated", "", "write the annotated photo to this path")
	reportPath := flag.String("report", "", "CSV with expected window sizes")
	imagesDir := flag.String("images", ".", "directory with report photos")
	outPath := flag.String("out", "", "write report results CSV here (stdout if empty)")
	workers := flag.Int("workers", 0, "report workers (REPORT_WORKERS if 0)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("Failed to init logger: %v", err)
	}
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := container.New(cfg, storage.NewMemoryUserRepository(), log)

	switch {
	case *imagePath != "":
		err = measureOne(ctx, c, cfg.Marker, *imagePath, *annotated)
	case *reportPath != "":
		n := *workers
		if n <= 0 {
			n = cfg.ReportWorkers
		}
		err = runReport(ctx, c, log, *reportPath, *imagesDir, *outPath, n)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.WithError(err).Fatal("measure failed")
	}
}

func measureOne(ctx context.Context, c *container.Container, marker entity.MarkerConfig, path, annotated string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := c.MeasurementService.Measure(ctx, data, marker)
	if err != nil {
		return err
	}

	fmt.Printf("width: %.2f in\nheight: %.2f in\nconfidence: %s\n",
		out.Dimensions.WidthIn, out.Dimensions.HeightIn, out.Dimensions.Confidence)

	if annotated != "" {
		if err := os.WriteFile(annotated, out.Annotated, 0o644); err != nil {
			return fmt.Errorf("write annotated: %w", err)
		}
	}
	return nil
}

func runReport(ctx context.Context, c *container.Container, log logrus.FieldLogger, reportPath, imagesDir, outPath string, workers int) error {
	f, err := os.Open(reportPath)
	if err != nil {
		return err
	}
	cases, err := storage.ReadReportCases(f)
	f.Close()
	if err != nil {
		return err
	}

	summary := c.MeasurementService.RunReport(ctx, cases, fileLoader(c.Codec, imagesDir), workers)

	var w io.Writer = os.Stdout
	if outPath != "" {
		out, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer out.Close()
		w = out
	}
	if err := storage.WriteReportResults(w, summary.Results); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"measured": summary.Measured,
		"failed":   summary.Failed,
		"skipped":  summary.Skipped,
		"accuracy": summary.Accuracy,
	}).Info("report finished")
	return nil
}

// fileLoader читает снимки отчёта из каталога dir
func fileLoader(codec port.ImageCodec, dir string) func(ctx context.Context, id string) (image.Image, error) {
	return func(_ context.Context, id string) (image.Image, error) {
		data, err := os.ReadFile(filepath.Join(dir, id))
		if err != nil {
			return nil, err
		}
		return codec.Decode(data)
	}
}
