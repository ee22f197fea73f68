package tracking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// circularShift returns a copy of f shifted by (dy, dx) with wraparound,
// so that shifted[i][j] == f[(i-dy) mod rows][(j-dx) mod cols].
func circularShift(f Field, dy, dx int) Field {
	rows, cols := f.Rows(), f.Cols()
	out := newField(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			si := ((i-dy)%rows + rows) % rows
			sj := ((j-dx)%cols + cols) % cols
			out[i][j] = f[si][sj]
		}
	}
	return out
}

func randomishTile(n int) Field {
	f := newField(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			f[i][j] = math.Sin(float64(i)*1.7+float64(j)*0.91) + float64((i*7+j*13)%5)
		}
	}
	return f
}

func TestCorrelate_RoundTrip(t *testing.T) {
	t.Parallel()

	a := randomishTile(16)
	b := circularShift(a, 3, -2)

	res, err := Correlate(a, b, WindowNone)
	require.NoError(t, err)

	assert.InDelta(t, -2, res.Dx, 1e-9)
	assert.InDelta(t, 3, res.Dy, 1e-9)
	assert.InDelta(t, 1.0, res.Amp, 1e-6)
}

func TestCorrelate_AliasingFold(t *testing.T) {
	t.Parallel()

	const n = 16
	a := randomishTile(n)
	// shift of (L/2 + 1, 0) should fold to (L/2 + 1 - L, 0)
	b := circularShift(a, 0, n/2+1)

	res, err := Correlate(a, b, WindowNone)
	require.NoError(t, err)

	assert.InDelta(t, float64(n/2+1-n), res.Dx, 1e-9)
	assert.InDelta(t, 0, res.Dy, 1e-9)
}

func TestCorrelate_ShapeMismatch(t *testing.T) {
	t.Parallel()

	a := newField(4, 4)
	b := newField(4, 5)
	_, err := Correlate(a, b, WindowTukey)
	require.Error(t, err)

	var shapeErr *ShapeMismatchError
	assert.ErrorAs(t, err, &shapeErr)
}
