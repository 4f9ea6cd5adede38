package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"window-measure/internal/domain/entity"
)

var requiredReportColumns = []string{
	"id", "window_width", "window_height", "marker_quantity", "marker_size", "marker_type", "ignore",
}

// ReadReportCases читает эталонный CSV (id, window_width, window_height, marker_quantity,
// marker_size, marker_type, ignore и необязательный marker_id)
func ReadReportCases(r io.Reader) ([]entity.ReportCase, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredReportColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var cases []entity.ReportCase
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		c, err := parseCase(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func parseCase(rec []string, cols map[string]int) (entity.ReportCase, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	num := func(name string) (float64, error) {
		f, err := strconv.ParseFloat(get(name), 64)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid number %q", name, get(name))
		}
		return f, nil
	}

	c := entity.ReportCase{ID: get("id")}
	if c.ID == "" {
		return c, errors.New("empty id")
	}
	var err error
	if c.ExpectedWidthIn, err = num("window_width"); err != nil {
		return c, err
	}
	if c.ExpectedHeightIn, err = num("window_height"); err != nil {
		return c, err
	}
	if c.ExpectedWidthIn <= 0 || c.ExpectedHeightIn <= 0 {
		return c, fmt.Errorf("window size must be positive, got %gx%g", c.ExpectedWidthIn, c.ExpectedHeightIn)
	}
	count, err := num("marker_quantity")
	if err != nil {
		return c, err
	}
	size, err := num("marker_size")
	if err != nil {
		return c, err
	}
	family, err := entity.ParseMarkerFamily(get("marker_type"))
	if err != nil {
		return c, err
	}
	c.Marker = entity.MarkerConfig{
		SizeMM: int(math.Round(size)),
		Count:  int(count),
		Family: family,
	}
	if id := get("marker_id"); id != "" {
		if c.Marker.ID, err = strconv.Atoi(id); err != nil {
			return c, fmt.Errorf("marker_id: invalid integer %q", id)
		}
	}
	switch strings.ToLower(get("ignore")) {
	case "", "0", "false", "no", "n":
	case "1", "true", "yes", "y", "x":
		c.Ignore = true
	default:
		return c, fmt.Errorf("ignore: unexpected value %q", get("ignore"))
	}
	return c, nil
}

// WriteReportResults пишет результаты: id, actual_width, actual_height, expected_width,
// expected_height, accuracy, confidence, error
func WriteReportResults(w io.Writer, results []entity.ReportResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"id", "actual_width", "actual_height", "expected_width", "expected_height", "accuracy", "confidence", "error",
	}); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }
	for _, r := range results {
		row := []string{r.Case.ID, "", "", f(r.Case.ExpectedWidthIn), f(r.Case.ExpectedHeightIn), "", "", ""}
		if r.Err != nil {
			row[7] = r.Err.Error()
		} else {
			row[1], row[2] = f(r.Dimensions.WidthIn), f(r.Dimensions.HeightIn)
			row[5] = f(r.Accuracy)
			row[6] = string(r.Dimensions.Confidence)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
