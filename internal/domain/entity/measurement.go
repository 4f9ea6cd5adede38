package entity

import "image"

// MMPerInch коэффициент перевода миллиметров в дюймы
const MMPerInch = 25.4

// Confidence степень уверенности в найденном контуре окна
type Confidence string

const (
	ConfidenceFull    Confidence = "full"    // четыре стороны выбраны по регионам
	ConfidencePartial Confidence = "partial" // выбор по регионам не удался, взят весь набор линий
)

// WindowCorners результат детектора окна
type WindowCorners struct {
	Quad       Quadrilateral
	Confidence Confidence
}

// Dimensions итоговые размеры окна в дюймах
type Dimensions struct {
	WidthIn    float64
	HeightIn   float64
	Confidence Confidence
}

// ImageMarkers имя отладочной картинки с найденными маркерами
const ImageMarkers = "markers"

// StageContext отладочные данные одной стадии одного прогона конвейера.
// Стадия только пишет сюда, владельцем остаётся вызывающий код.
type StageContext struct {
	Images        map[string]image.Image
	Intermediates map[string]any
	order         []string
}

// NewStageContext создаёт пустой контекст
func NewStageContext() *StageContext {
	return &StageContext{
		Images:        make(map[string]image.Image),
		Intermediates: make(map[string]any),
	}
}

// PutImage сохраняет промежуточное изображение. Безопасен для nil.
func (c *StageContext) PutImage(name string, img image.Image) {
	if c == nil || img == nil {
		return
	}
	if c.Images == nil {
		c.Images = make(map[string]image.Image)
	}
	if _, exists := c.Images[name]; !exists {
		c.order = append(c.order, name)
	}
	c.Images[name] = img
}

// Image возвращает сохранённое изображение
func (c *StageContext) Image(name string) (image.Image, bool) {
	if c == nil {
		return nil, false
	}
	img, ok := c.Images[name]
	return img, ok
}

// ImageNames имена изображений в порядке добавления
func (c *StageContext) ImageNames() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.order...)
}

// Put сохраняет промежуточный результат. Безопасен для nil.
func (c *StageContext) Put(name string, v any) {
	if c == nil {
		return
	}
	if c.Intermediates == nil {
		c.Intermediates = make(map[string]any)
	}
	c.Intermediates[name] = v
}

// Get возвращает промежуточный результат
func (c *StageContext) Get(name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.Intermediates[name]
	return v, ok
}
