package entity

import "fmt"

// AggregateResult итог обработки одного изображения.
type AggregateResult struct {
	Count       int    // число обработанных масок
	TotalPixels int    // сумма пикселей по всем маскам, пересечения считаются повторно
	UnionPixels int    // пиксели, покрытые хотя бы одной маской
	Width       int    // ширина изображения
	Height      int    // высота изображения
	Composite   *Image // изображение с подсветкой масок и подписями
}

// Size возвращает размер изображения в виде "WxH".
func (r *AggregateResult) Size() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// CoverageRatio доля площади изображения, покрытая масками (без двойного счёта).
func (r *AggregateResult) CoverageRatio() float64 {
	total := r.Width * r.Height
	if total <= 0 {
		return 0
	}
	return float64(r.UnionPixels) / float64(total)
}
