package vision

import (
	"image"
	"image/color"
	"runtime"
)

// AnnotationLine позиция базовой линии и цвет одной строки подписи.
type AnnotationLine struct {
	Position image.Point
	Color    color.RGBA
}

// Options параметры наложения масок и подписей.
type Options struct {
	MaskThreshold float64          // пиксель маски считается покрытым при значении строго больше порога
	BlendWeight   float64          // вес зелёного слоя при смешивании
	Annotations   []AnnotationLine // строки: число объектов, площадь, размер изображения
	FontSize      float64          // размер шрифта подписей в пикселях
	Outline       int              // толщина чёрной обводки текста
	Noun          string           // название объекта в подписях
	Workers       int              // сколько масок готовить параллельно
}

// DefaultOptions возвращает параметры по умолчанию.
func DefaultOptions() Options {
	return Options{
		MaskThreshold: 0.5,
		BlendWeight:   0.5,
		Annotations:   DefaultAnnotations(),
		FontSize:      24,
		Outline:       2,
		Noun:          "Leaf",
		Workers:       runtime.NumCPU(),
	}
}

// DefaultAnnotations три строки подписи в левом верхнем углу.
func DefaultAnnotations() []AnnotationLine {
	return []AnnotationLine{
		{Position: image.Pt(20, 40), Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{Position: image.Pt(20, 80), Color: color.RGBA{R: 144, G: 238, B: 144, A: 255}},
		// Кортеж (173, 216, 230) в порядке BGR, как его рисует cv2.putText.
		{Position: image.Pt(20, 120), Color: color.RGBA{R: 230, G: 216, B: 173, A: 255}},
	}
}

// Validate приводит значения к допустимым диапазонам.
// Срез Annotations копируется, исходный массив вызывающего не меняется.
func (o *Options) Validate() {
	if !(o.MaskThreshold >= 0 && o.MaskThreshold < 1) {
		o.MaskThreshold = 0.5
	}
	if !(o.BlendWeight >= 0 && o.BlendWeight <= 1) {
		o.BlendWeight = 0.5
	}
	if len(o.Annotations) != 3 {
		o.Annotations = DefaultAnnotations()
	} else {
		o.Annotations = append([]AnnotationLine(nil), o.Annotations...)
	}
	for i := range o.Annotations {
		o.Annotations[i].Color.A = 0xff
	}
	if o.FontSize <= 0 {
		o.FontSize = 24
	}
	if o.Outline < 0 {
		o.Outline = 0
	}
	if o.Noun == "" {
		o.Noun = "Leaf"
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
}
