package vision

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestResizeBilinear_SameSizeIsIdentity(t *testing.T) {
	src := mat.NewDense(3, 4, []float64{
		0, 0.1, 0.2, 0.3,
		0.4, 0.5, 0.6, 0.7,
		0.8, 0.9, 1, 0.55,
	})

	out := ResizeBilinear(src, 4, 3)
	require.True(t, mat.Equal(src, out))

	out.Set(0, 0, 1)
	require.Equal(t, 0.0, src.At(0, 0), "resize must not alias the source")
}

func TestResizeBilinear_UpscaleUsesPixelCenters(t *testing.T) {
	src := mat.NewDense(1, 2, []float64{0, 1})

	out := ResizeBilinear(src, 4, 1)
	require.Equal(t, []float64{0, 0.25, 0.75, 1}, out.RawRowView(0))
}

func TestResizeBilinear_Downscale(t *testing.T) {
	src := mat.NewDense(2, 4, []float64{
		0, 1, 0, 1,
		0, 1, 0, 1,
	})

	out := ResizeBilinear(src, 2, 1)
	r, c := out.Dims()
	require.Equal(t, 1, r)
	require.Equal(t, 2, c)
	require.InDeltaSlice(t, []float64{0.5, 0.5}, out.RawRowView(0), 1e-12)
}

func TestResizeBilinear_UniformStaysUniform(t *testing.T) {
	values := make([]float64, 50*50)
	for i := range values {
		values[i] = 1
	}

	out := ResizeBilinear(mat.NewDense(50, 50, values), 100, 100)
	for _, v := range out.RawMatrix().Data {
		require.InDelta(t, 1.0, v, 1e-12)
	}
}
