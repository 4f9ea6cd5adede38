package app

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"window-measure/internal/domain/entity"
)

// ImageLoader загружает снимок строки отчёта по её id
type ImageLoader func(ctx context.Context, id string) (image.Image, error)

// RunReport измеряет все неотмеченные строки пулом из workers горутин.
// Результаты идут в порядке входных строк.
func (s *MeasurementService) RunReport(ctx context.Context, cases []entity.ReportCase, load ImageLoader, workers int) entity.ReportSummary {
	if workers < 1 {
		workers = 1
	}

	var summary entity.ReportSummary
	indexes := make([]int, 0, len(cases))
	for i, c := range cases {
		if c.Ignore {
			summary.Skipped++
			continue
		}
		indexes = append(indexes, i)
	}
	results := make([]entity.ReportResult, len(indexes))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for slot := range jobs {
				results[slot] = s.measureCase(ctx, cases[indexes[slot]], load)
			}
		}()
	}
	for slot := range indexes {
		jobs <- slot
	}
	close(jobs)
	wg.Wait()

	var total float64
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			continue
		}
		summary.Measured++
		total += r.Accuracy
	}
	if summary.Measured > 0 {
		summary.Accuracy = total / float64(summary.Measured)
	}
	summary.Results = results

	s.log.WithFields(logrus.Fields{
		"measured": summary.Measured,
		"failed":   summary.Failed,
		"skipped":  summary.Skipped,
		"accuracy": summary.Accuracy,
	}).Info("report finished")
	return summary
}

func (s *MeasurementService) measureCase(ctx context.Context, c entity.ReportCase, load ImageLoader) entity.ReportResult {
	res := entity.ReportResult{Case: c}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	img, err := load(ctx, c.ID)
	if err != nil {
		res.Err = fmt.Errorf("load %s: %w", c.ID, err)
		return res
	}
	if s.codec != nil {
		img = s.codec.Fit(img, s.maxSide)
	}

	out, err := s.MeasureImage(ctx, runName(c.ID), img, c.Marker)
	if err != nil {
		res.Err = err
		return res
	}
	res.Dimensions = out.Dimensions
	res.Accuracy = entity.CaseAccuracy(c, out.Dimensions)
	return res
}

// runName имя файла снимка без расширения
func runName(id string) string {
	if i := strings.LastIndexByte(id, '.'); i > 0 {
		return id[:i]
	}
	return id
}
