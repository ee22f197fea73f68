package tracking

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// CoarseGrid is a displacement component sampled on the pitch-squarehalf
// grid BlockCorrelator fills in. Missing samples are math.NaN().
type CoarseGrid struct {
	U, V Field   // per-cell displacement components
	X, Y []float64 // coarse axis coordinates: X has len(U[0]) entries, Y has len(U) entries
}

// RejectOutliers zeroes in on each coarse cell's local neighbourhood (3
// neighbours in a corner, 5 on an edge, 8 in the interior - all four edges
// handled symmetrically) and sets a cell to NaN when it deviates from the
// NaN-ignoring neighbourhood mean by more than tolerancePerDt * numDt. u
// and v are rejected independently, each read from a stable snapshot taken
// before any cell is modified, so the pass is safe to parallelize per cell.
func RejectOutliers(grid CoarseGrid, tolerancePerDt float64, numDt float64) CoarseGrid {
	rows := grid.U.Rows()
	if rows == 0 {
		return grid
	}
	cols := grid.U.Cols()

	origU := cloneField(grid.U)
	origV := cloneField(grid.V)
	outU := cloneField(grid.U)
	outV := cloneField(grid.V)

	tol := tolerancePerDt * numDt

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.IsNaN(origU[i][j]) && math.IsNaN(origV[i][j]) {
				continue
			}
			uNb, vNb := neighbourMeans(origU, origV, rows, cols, i, j)
			if !math.IsNaN(uNb) && math.Abs(origU[i][j]-uNb) > tol {
				outU[i][j] = math.NaN()
			}
			if !math.IsNaN(vNb) && math.Abs(origV[i][j]-vNb) > tol {
				outV[i][j] = math.NaN()
			}
		}
	}

	return CoarseGrid{U: outU, V: outV, X: grid.X, Y: grid.Y}
}

// neighbourMeans computes the NaN-ignoring mean of the in-bounds
// neighbours of (i, j): 3 at a corner, 5 on an edge, 8 in the interior.
// All four edges (including the left edge) are handled by the same rule,
// unlike the asymmetric left-edge special case in the source this mirrors.
func neighbourMeans(u, v Field, rows, cols, i, j int) (float64, float64) {
	var us, vs []float64
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			if di == 0 && dj == 0 {
				continue
			}
			ni, nj := i+di, j+dj
			if ni < 0 || ni >= rows || nj < 0 || nj >= cols {
				continue
			}
			us = append(us, u[ni][nj])
			vs = append(vs, v[ni][nj])
		}
	}
	return nanMean(us), nanMean(vs)
}

func nanMean(vals []float64) float64 {
	var sum float64
	var n int
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func cloneField(f Field) Field {
	out := make(Field, len(f))
	for i, row := range f {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}

// Interpolate resamples one coarse, partly-NaN displacement component onto
// the fine grid defined by fineX, fineY. Finite coarse samples are fit
// with a convex-hull-bounded scattered interpolation (standing in for a
// linear Delaunay triangulation) and resampled
// axis-by-axis with an Akima spline, which plays the role of the source's
// bicubic resample step. Fewer than 4 finite samples yields an all-zero
// grid, per the numeric-degeneracy recovery rule.
func Interpolate(component Field, coarseX, coarseY, fineX, fineY []float64) Field {
	var samples []scatterSample
	for i, y := range coarseY {
		for j, x := range coarseX {
			v := component[i][j]
			if !math.IsNaN(v) {
				samples = append(samples, scatterSample{x, y, v})
			}
		}
	}

	fine := newField(len(fineY), len(fineX))
	if len(samples) < 4 {
		return fine
	}

	pts := make([]point, len(samples))
	for i, s := range samples {
		pts[i] = point{s.X, s.Y}
	}
	hull := convexHull(pts)

	coarseDense := newField(len(coarseY), len(coarseX))
	for i, y := range coarseY {
		for j, x := range coarseX {
			if !pointInHull(hull, point{x, y}) {
				coarseDense[i][j] = 0
				continue
			}
			coarseDense[i][j] = idwInterpolate(samples, x, y)
		}
	}

	return resampleSeparable(coarseDense, coarseX, coarseY, fineX, fineY)
}

// scatterSample is one finite coarse displacement sample with its
// world-coordinate position, used by the convex-hull scatter fill.
type scatterSample struct{ X, Y, V float64 }

func idwInterpolate(samples []scatterSample, x, y float64) float64 {
	const power = 2.0
	const eps = 1e-9
	var wsum, vsum float64
	for _, s := range samples {
		dx, dy := s.X-x, s.Y-y
		d2 := dx*dx + dy*dy
		if d2 < eps {
			return s.V
		}
		w := 1.0 / math.Pow(d2, power/2)
		wsum += w
		vsum += w * s.V
	}
	if wsum == 0 {
		return 0
	}
	return vsum / wsum
}

// resampleSeparable resamples coarseDense, defined on axes coarseX,
// coarseY, onto fineX, fineY by fitting an Akima spline along each row
// (over x), then along each resulting column (over y).
func resampleSeparable(coarseDense Field, coarseX, coarseY, fineX, fineY []float64) Field {
	rows, cols := len(coarseY), len(coarseX)
	stage1 := newField(rows, len(fineX))
	var rowSpline interp.AkimaSpline
	for i := 0; i < rows; i++ {
		if err := rowSpline.Fit(coarseX, coarseDense[i]); err != nil {
			for j := range fineX {
				stage1[i][j] = nearestValue(coarseDense[i], coarseX, fineX[j])
			}
			continue
		}
		for j, fx := range fineX {
			stage1[i][j] = rowSpline.Predict(clamp(fx, coarseX))
		}
	}

	out := newField(len(fineY), len(fineX))
	col := make([]float64, rows)
	var colSpline interp.AkimaSpline
	for j := range fineX {
		for i := 0; i < rows; i++ {
			col[i] = stage1[i][j]
		}
		if err := colSpline.Fit(coarseY, col); err != nil {
			for i, fy := range fineY {
				out[i][j] = nearestValue(col, coarseY, fy)
			}
			continue
		}
		for i, fy := range fineY {
			out[i][j] = colSpline.Predict(clamp(fy, coarseY))
		}
	}
	return out
}

func clamp(v float64, axis []float64) float64 {
	if len(axis) == 0 {
		return v
	}
	if v < axis[0] {
		return axis[0]
	}
	if v > axis[len(axis)-1] {
		return axis[len(axis)-1]
	}
	return v
}

func nearestValue(values, axis []float64, target float64) float64 {
	idx := sort.SearchFloat64s(axis, target)
	if idx <= 0 {
		return values[0]
	}
	if idx >= len(axis) {
		return values[len(values)-1]
	}
	if target-axis[idx-1] < axis[idx]-target {
		return values[idx-1]
	}
	return values[idx]
}

// point is a 2-D coordinate used by the convex hull helpers.
type point struct{ X, Y float64 }

// convexHull returns the vertices of the convex hull of pts, in
// counter-clockwise order, via Andrew's monotone chain.
func convexHull(pts []point) []point {
	uniq := append([]point{}, pts...)
	sort.Slice(uniq, func(i, j int) bool {
		if uniq[i].X != uniq[j].X {
			return uniq[i].X < uniq[j].X
		}
		return uniq[i].Y < uniq[j].Y
	})
	if len(uniq) < 3 {
		return uniq
	}

	cross := func(o, a, b point) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []point
	for _, p := range uniq {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	var upper []point
	for i := len(uniq) - 1; i >= 0; i-- {
		p := uniq[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// pointInHull reports whether p lies within (or on the boundary of) the
// convex polygon hull, using the standard ray-casting test.
func pointInHull(hull []point, p point) bool {
	n := len(hull)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := hull[i], hull[j]
		onLine := math.Abs((pi.X-pj.X)*(p.Y-pj.Y)-(pi.Y-pj.Y)*(p.X-pj.X)) < 1e-9
		if onLine && p.X >= math.Min(pi.X, pj.X) && p.X <= math.Max(pi.X, pj.X) &&
			p.Y >= math.Min(pi.Y, pj.Y) && p.Y <= math.Max(pi.Y, pj.Y) {
			return true
		}
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			xint := (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if p.X < xint {
				inside = !inside
			}
		}
	}
	return inside
}
