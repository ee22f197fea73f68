package tracking

import "math"

// StepResult is everything TrackStep produces for one snapshot pair.
type StepResult struct {
	Objects  []*Object
	Labels   LabelGrid
	FineU    Field
	FineV    Field
	WasArray [][]int
	LifeArray [][]int
}

// Tracker holds the state a driver threads between consecutive calls to
// Step: the prior objects and label grid, and the next unused persistent
// ID. Restart (after a DataGap, or on the very first snapshot) is simply
// constructing a fresh Tracker.
type Tracker struct {
	cfg Config

	priorObjects []*Object
	priorLabels  LabelGrid
	priorMask    Field // thresholded mask backing priorLabels, kept for coarse-tile correlation

	nextID int
}

// NewTracker creates a Tracker with no prior state: every label in the
// first Step call becomes a fresh identity, numbered from 1.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{cfg: cfg, nextID: 1}
}

// Restart discards all prior state, as a driver does after observing a
// DataGap (a TimeDiff beyond DtTolerance). Persistent ID numbering
// continues to advance rather than resetting, per the monotonic-was
// invariant; callers that want numbering to restart from 1 should
// construct a fresh Tracker instead.
func (t *Tracker) Restart() {
	t.priorObjects = nil
	t.priorLabels = nil
	t.priorMask = nil
}

// Step runs one tracking cycle: labels newField, and - if there is prior
// state to advect - correlates, smooths, advects and resolves identity
// against it. xmat, ymat are the (shared) world-coordinate grids. numDt is
// the number of nominal Dt intervals elapsed since the prior snapshot
// (normally 1).
func (t *Tracker) Step(newField Field, xmat, ymat Field, numDt float64) (StepResult, error) {
	if !sameShape(newField, xmat) || !sameShape(newField, ymat) {
		return StepResult{}, &ShapeMismatchError{Context: "Step: newField/xmat/ymat"}
	}

	newLabels, err := Label(newField, t.cfg.MinPixel, t.cfg.Threshold, t.cfg.Connectivity, t.cfg.UnderThreshold)
	if err != nil {
		return StepResult{}, err
	}
	newMask := thresholdMask(newField, t.cfg.Threshold, t.cfg.UnderThreshold)
	numLabels := maxLabel(newLabels)

	rows, cols := newField.Rows(), newField.Cols()
	wasArray := make([][]int, rows)
	lifeArray := make([][]int, rows)
	for i := range wasArray {
		wasArray[i] = make([]int, cols)
		lifeArray[i] = make([]int, cols)
	}

	degenerate := len(t.priorObjects) == 0 || maxLabel(t.priorLabels) == 0 || numLabels == 0

	var newObjects []*Object
	var fineU, fineV Field

	if degenerate {
		for jj := 1; jj <= numLabels; jj++ {
			obj, err := NewObjectFromGrid(jj, newLabels, newField, xmat, ymat, t.cfg)
			if err != nil {
				return StepResult{}, err
			}
			obj.Was = t.nextID
			t.nextID++
			markCells(newLabels, jj, wasArray, obj.Was)
			markCells(newLabels, jj, lifeArray, obj.Life)
			newObjects = append(newObjects, obj)
		}
		fineU = newField2(rows, cols)
		fineV = newField2(rows, cols)
	} else {
		coarse := correlateCoarseGrid(t.priorMask, newMask, xmat, ymat, t.cfg)
		smoothed := RejectOutliers(coarse, t.cfg.DdTolerance, numDt)
		fineU = Interpolate(smoothed.U, smoothed.X, smoothed.Y, xAxis(xmat), yAxis(ymat))
		fineV = Interpolate(smoothed.V, smoothed.X, smoothed.Y, xAxis(xmat), yAxis(ymat))

		advectedLabels, advectedSummary := Advect(t.priorLabels, t.priorObjects, fineU, fineV, xmat, ymat)

		for jj := 1; jj <= numLabels; jj++ {
			obj, err := NewObjectFromGrid(jj, newLabels, newField, xmat, ymat, t.cfg)
			if err != nil {
				return StepResult{}, err
			}
			dxMean, dyMean := meanOverMask(newLabels, jj, fineU, fineV)
			obj.Dx = dxMean / numDt
			obj.Dy = dyMean / numDt

			decision := Resolve(jj, obj.Area, newLabels, advectedLabels, advectedSummary, t.priorObjects,
				obj.CentroidX, obj.CentroidY, xmat, ymat, t.cfg.LapThresh, t.cfg.HaloSq(), t.nextID, t.cfg.MisVal)

			if decision.Life == 1 {
				t.nextID++
			}

			obj.Was = decision.Was
			obj.Life = decision.Life
			obj.WasDist = decision.WasDist
			if len(decision.Accreted) == 0 {
				obj.Accreted = []int{t.cfg.MisVal}
			} else {
				obj.Accreted = decision.Accreted
			}

			markCells(newLabels, jj, wasArray, obj.Was)
			markCells(newLabels, jj, lifeArray, obj.Life)
			newObjects = append(newObjects, obj)
		}

		t.nextID = ReconcileLineage(newObjects, newLabels, wasArray, t.cfg.MisVal, t.nextID)
	}

	t.priorObjects = newObjects
	t.priorLabels = newLabels
	t.priorMask = newMask

	return StepResult{
		Objects:   newObjects,
		Labels:    newLabels,
		FineU:     fineU,
		FineV:     fineV,
		WasArray:  wasArray,
		LifeArray: lifeArray,
	}, nil
}

func thresholdMask(field Field, threshold float64, underThreshold bool) Field {
	out := newField(field.Rows(), field.Cols())
	for i := range field {
		for j := range field[i] {
			v := field[i][j]
			hit := v > threshold
			if underThreshold {
				hit = v < threshold
			}
			if hit {
				out[i][j] = 1
			}
		}
	}
	return out
}

func maxLabel(g LabelGrid) int {
	max := 0
	for i := range g {
		for j := range g[i] {
			if g[i][j] > max {
				max = g[i][j]
			}
		}
	}
	return max
}

func markCells(labels LabelGrid, storm int, dest [][]int, value int) {
	for i := range labels {
		for j := range labels[i] {
			if labels[i][j] == storm {
				dest[i][j] = value
			}
		}
	}
}

func meanOverMask(labels LabelGrid, storm int, u, v Field) (float64, float64) {
	var su, sv float64
	var n int
	for i := range labels {
		for j := range labels[i] {
			if labels[i][j] != storm {
				continue
			}
			su += u[i][j]
			sv += v[i][j]
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return su / float64(n), sv / float64(n)
}

func xAxis(xmat Field) []float64 {
	if xmat.Rows() == 0 {
		return nil
	}
	return append([]float64{}, xmat[0]...)
}

func yAxis(ymat Field) []float64 {
	rows := ymat.Rows()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = ymat[i][0]
	}
	return out
}

func newField2(rows, cols int) Field { return newField(rows, cols) }

// correlateCoarseGrid tiles priorMask and newMask into SquareLength x
// SquareLength squares at pitch SquareHalf and invokes Correlate on every
// tile where both masks meet FFTPixels; misses are left as NaN.
func correlateCoarseGrid(priorMask, newMask, xmat, ymat Field, cfg Config) CoarseGrid {
	half := cfg.SquareHalf()
	rows, cols := priorMask.Rows(), priorMask.Cols()

	nRows := (rows - half) / half
	nCols := (cols - half) / half
	if nRows < 1 {
		nRows = 1
	}
	if nCols < 1 {
		nCols = 1
	}

	u := newField(nRows, nCols)
	v := newField(nRows, nCols)
	fillNaN(u, math.NaN())
	fillNaN(v, math.NaN())

	xAxisFull := xAxis(xmat)
	yAxisFull := yAxis(ymat)
	coarseX := make([]float64, nCols)
	coarseY := make([]float64, nRows)

	for cx := 0; cx < nRows; cx++ {
		i0 := half * cx
		i1 := i0 + 2*half
		if i1 > rows {
			i1 = rows
		}
		if mid := i0 + half; mid < len(yAxisFull) {
			coarseY[cx] = yAxisFull[mid]
		}
		for cy := 0; cy < nCols; cy++ {
			j0 := half * cy
			j1 := j0 + 2*half
			if j1 > cols {
				j1 = cols
			}
			if cx == 0 {
				if mid := j0 + half; mid < len(xAxisFull) {
					coarseX[cy] = xAxisFull[mid]
				}
			}

			oldSquare := subField(priorMask, i0, i1, j0, j1)
			newSquare := subField(newMask, i0, i1, j0, j1)
			if sumField(oldSquare) < cfg.FFTPixels() || sumField(newSquare) < cfg.FFTPixels() {
				continue
			}
			corr, err := Correlate(oldSquare, newSquare, cfg.windowMethod())
			if err != nil {
				continue
			}
			u[cx][cy] = corr.Dx
			v[cx][cy] = corr.Dy
		}
	}

	return CoarseGrid{U: u, V: v, X: coarseX, Y: coarseY}
}

func subField(f Field, i0, i1, j0, j1 int) Field {
	out := newField(i1-i0, j1-j0)
	for i := i0; i < i1; i++ {
		for j := j0; j < j1; j++ {
			out[i-i0][j-j0] = f[i][j]
		}
	}
	return out
}

func sumField(f Field) float64 {
	var s float64
	for i := range f {
		for j := range f[i] {
			s += f[i][j]
		}
	}
	return s
}
