package vision

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// tap пара соседних отсчётов источника и вес второго из них.
type tap struct {
	i0, i1 int
	w      float64
}

// ResizeBilinear масштабирует поле до width x height билинейной интерполяцией
// с выравниванием по центрам пикселей (как INTER_LINEAR в OpenCV).
// Если размер уже совпадает, возвращается копия без изменений.
func ResizeBilinear(src *mat.Dense, width, height int) *mat.Dense {
	rows, cols := src.Dims()
	if rows == height && cols == width {
		return mat.DenseCopyOf(src)
	}

	xs := linearTaps(cols, width)
	ys := linearTaps(rows, height)
	raw := src.RawMatrix()
	out := make([]float64, width*height)
	for y, ty := range ys {
		r0 := raw.Data[ty.i0*raw.Stride : ty.i0*raw.Stride+cols]
		r1 := raw.Data[ty.i1*raw.Stride : ty.i1*raw.Stride+cols]
		row := out[y*width : (y+1)*width]
		for x, tx := range xs {
			top := r0[tx.i0]*(1-tx.w) + r0[tx.i1]*tx.w
			bottom := r1[tx.i0]*(1-tx.w) + r1[tx.i1]*tx.w
			row[x] = top*(1-ty.w) + bottom*ty.w
		}
	}
	return mat.NewDense(height, width, out)
}

func linearTaps(srcLen, dstLen int) []tap {
	scale := float64(srcLen) / float64(dstLen)
	taps := make([]tap, dstLen)
	for d := range taps {
		f := (float64(d)+0.5)*scale - 0.5
		i := int(math.Floor(f))
		w := f - float64(i)
		if i < 0 {
			i, w = 0, 0
		}
		if i >= srcLen-1 {
			i, w = srcLen-1, 0
		}
		taps[d] = tap{i0: i, i1: min(i+1, srcLen-1), w: w}
	}
	return taps
}
