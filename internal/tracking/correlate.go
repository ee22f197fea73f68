package tracking

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/fourier"
)

// Correlation is the result of correlating one coarse tile between two
// snapshots.
type Correlation struct {
	Dx, Dy float64 // pixel displacement of s2 relative to s1
	Amp    float64 // normalized peak correlation amplitude
	Field  Field   // the full real-space correlation surface, for debugging/plotting
}

// Correlate estimates the displacement between two same-shape square tiles
// by windowed FFT cross-correlation: each tile is apodized, DC-removed,
// transformed to the frequency domain, multiplied (one conjugated), and
// inverse-transformed; the displacement is the argmax of the real part of
// that product, folded back into (-L/2, L/2] to correct for aliasing.
//
// s1 is the prior snapshot's tile, s2 the current snapshot's tile. This
// mirrors ffttrack exactly, including its window construction and
// aliasing fold.
func Correlate(s1, s2 Field, window WindowMethod) (Correlation, error) {
	if !sameShape(s1, s2) {
		return Correlation{}, &ShapeMismatchError{
			Context: "Correlate: s1/s2", WantRows: s1.Rows(), WantCols: s1.Cols(),
			GotRows: s2.Rows(), GotCols: s2.Cols(),
		}
	}
	rows, cols := s1.Rows(), s1.Cols()
	leno := rows
	if cols > leno {
		leno = cols
	}

	win := tukeyWindow2D(rows, cols, window)

	b1 := newField(rows, cols)
	b2 := newField(rows, cols)
	var sum1, sum2 float64
	n := float64(rows * cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			b1[i][j] = s1[i][j] * win[i][j]
			b2[i][j] = s2[i][j] * win[i][j]
			sum1 += b1[i][j]
			sum2 += b2[i][j]
		}
	}
	mean1, mean2 := sum1/n, sum2/n

	m1 := make([][]complex128, rows)
	m2 := make([][]complex128, rows)
	var ss1, ss2 float64
	for i := 0; i < rows; i++ {
		m1[i] = make([]complex128, cols)
		m2[i] = make([]complex128, cols)
		for j := 0; j < cols; j++ {
			v1 := b1[i][j] - mean1
			v2 := b2[i][j] - mean2
			m1[i][j] = complex(v1, 0)
			m2[i][j] = complex(v2, 0)
			ss1 += v1 * v1
			ss2 += v2 * v2
		}
	}
	normval := math.Sqrt(ss1 * ss2)

	f1 := fft2(m1)
	f2 := fft2(m2)
	prod := make([][]complex128, rows)
	for i := 0; i < rows; i++ {
		prod[i] = make([]complex128, cols)
		for j := 0; j < cols; j++ {
			prod[i][j] = f2[i][j] * cmplx.Conj(f1[i][j])
		}
	}
	ffv := ifft2(prod)

	realPart := newField(rows, cols)
	maxVal := math.Inf(-1)
	maxI, maxJ := 0, 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := real(ffv[i][j])
			realPart[i][j] = v
			if v > maxVal {
				maxVal = v
				maxI, maxJ = i, j
			}
		}
	}

	dx, dy := float64(maxJ), float64(maxI)
	cv := float64(leno) / 2
	if dx > cv {
		dx -= float64(leno)
	}
	if dy > cv {
		dy -= float64(leno)
	}

	amp := 0.0
	if normval > 0 {
		amp = maxVal / normval
	}

	return Correlation{Dx: dx, Dy: dy, Amp: amp, Field: realPart}, nil
}

// tukeyWindow2D builds the separable 2-D apodization window ffttrack calls
// hann2: the outer product of a 1-D tapered-cosine window with itself, or
// an all-ones window when method is WindowNone.
func tukeyWindow2D(rows, cols int, method WindowMethod) Field {
	leno := rows
	if cols > leno {
		leno = cols
	}
	win1 := make([]float64, leno)
	if method == WindowNone {
		for i := range win1 {
			win1[i] = 1
		}
	} else {
		alpha := math.Max(0.1, 10.0/float64(leno))
		for i := range win1 {
			x := float64(i) + 0.5
			switch {
			case x < alpha*float64(leno)/2:
				win1[i] = 0.5 * (1 + math.Cos(math.Pi*(2*x/(alpha*float64(leno))-1)))
			case x > float64(leno)*(1-alpha/2):
				win1[i] = 0.5 * (1 + math.Cos(math.Pi*(2*x/(alpha*float64(leno))-2/alpha+1)))
			default:
				win1[i] = 1
			}
		}
	}

	out := newField(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[i][j] = win1[i] * win1[j]
		}
	}
	return out
}

// fft2 computes the 2-D discrete Fourier transform by applying gonum's
// full complex 1-D FFT across rows, then across columns - matching
// numpy.fft.fft2's semantics exactly (no real-input symmetry shortcuts).
func fft2(m [][]complex128) [][]complex128 {
	return separableTransform(m, func(fft *fourier.CmplxFFT, in []complex128) []complex128 {
		return fft.Coefficients(nil, in)
	})
}

// ifft2 computes the 2-D inverse discrete Fourier transform, matching
// numpy.fft.ifft2's normalization (divide by N*M total samples).
func ifft2(m [][]complex128) [][]complex128 {
	out := separableTransform(m, func(fft *fourier.CmplxFFT, in []complex128) []complex128 {
		return fft.Sequence(nil, in)
	})
	if len(out) == 0 || len(out[0]) == 0 {
		return out
	}
	scale := complex(float64(len(out)*len(out[0])), 0)
	for i := range out {
		for j := range out[i] {
			out[i][j] /= scale
		}
	}
	return out
}

// separableTransform applies a 1-D complex transform first along every row,
// then along every column of the result.
func separableTransform(m [][]complex128, transform func(*fourier.CmplxFFT, []complex128) []complex128) [][]complex128 {
	rows := len(m)
	if rows == 0 {
		return nil
	}
	cols := len(m[0])

	rowFFT := fourier.NewCmplxFFT(cols)
	stage1 := make([][]complex128, rows)
	for i := 0; i < rows; i++ {
		stage1[i] = transform(rowFFT, m[i])
	}

	colFFT := fourier.NewCmplxFFT(rows)
	out := make([][]complex128, rows)
	for i := range out {
		out[i] = make([]complex128, cols)
	}
	col := make([]complex128, rows)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			col[i] = stage1[i][j]
		}
		res := transform(colFFT, col)
		for i := 0; i < rows; i++ {
			out[i][j] = res[i]
		}
	}
	return out
}
