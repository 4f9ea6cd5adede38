package entity

// ReportCase строка эталонных данных: снимок и ожидаемые размеры окна в дюймах
type ReportCase struct {
	ID               string // имя файла снимка
	ExpectedWidthIn  float64
	ExpectedHeightIn float64
	Marker           MarkerConfig
	Ignore           bool
}

// ReportResult результат измерения одного снимка
type ReportResult struct {
	Case       ReportCase
	Dimensions Dimensions
	Accuracy   float64 // 1 - среднее относительных ошибок ширины и высоты
	Err        error
}

// ReportSummary итог прогона по всем снимкам
type ReportSummary struct {
	Results  []ReportResult // в порядке входных строк, без пропущенных
	Measured int
	Failed   int
	Skipped  int
	Accuracy float64 // среднее Accuracy по измеренным снимкам
}

// CaseAccuracy считает точность измерения относительно эталона
func CaseAccuracy(c ReportCase, d Dimensions) float64 {
	wErr := relErr(d.WidthIn, c.ExpectedWidthIn)
	hErr := relErr(d.HeightIn, c.ExpectedHeightIn)
	return 1 - (wErr+hErr)/2
}

// relErr относительная ошибка; без положительного эталона ошибка считается полной
func relErr(actual, expected float64) float64 {
	if expected <= 0 {
		return 1
	}
	e := (actual - expected) / expected
	if e < 0 {
		return -e
	}
	return e
}
