package tracking

import "math"

// AdvectedSummary records, per prior object, where its advected footprint
// ended up: its centroid in world coordinates and its surviving pixel
// count (zero if the object was shifted entirely off-domain).
type AdvectedSummary struct {
	CentroidX, CentroidY float64
	Area                 int
}

// Advect rigidly translates each prior object's label mask by its mean
// fine-grid displacement, producing an advected label grid on the current
// frame's geometry. Collisions between two advected objects claiming the
// same destination cell are resolved in favour of whichever object's
// centroid is closer to that cell in world coordinates. priorObjects must
// be ordered by ascending Storm to make the destination-claim order
// deterministic.
func Advect(priorLabels LabelGrid, priorObjects []*Object, u, v, xmat, ymat Field) (LabelGrid, []AdvectedSummary) {
	rows, cols := priorLabels.Rows(), priorLabels.Cols()
	advected := newLabelGrid(rows, cols)

	for _, o := range priorObjects {
		dx, dy := meanDisplacement(priorLabels, u, v, o.Storm)

		cells := cellsWithLabel(priorLabels, o.Storm)
		if dx == 0 && dy == 0 {
			for _, c := range cells {
				placeAdvected(advected, xmat, ymat, priorObjects, c[0], c[1], o.Storm)
			}
			continue
		}

		shiftY := int(math.Round(dy))
		shiftX := int(math.Round(dx))
		for _, c := range cells {
			ni, nj := c[0]+shiftY, c[1]+shiftX
			if ni < 0 || ni >= rows || nj < 0 || nj >= cols {
				continue // OverflowingShift: dropped
			}
			placeAdvected(advected, xmat, ymat, priorObjects, ni, nj, o.Storm)
		}
	}

	summaries := make([]AdvectedSummary, len(priorObjects))
	for idx, o := range priorObjects {
		cells := cellsWithLabel(advected, o.Storm)
		if len(cells) == 0 {
			continue
		}
		var sx, sy float64
		for _, c := range cells {
			sx += xmat[c[0]][c[1]]
			sy += ymat[c[0]][c[1]]
		}
		n := float64(len(cells))
		summaries[idx] = AdvectedSummary{CentroidX: sx / n, CentroidY: sy / n, Area: len(cells)}
	}

	return advected, summaries
}

// placeAdvected claims cell (i, j) for storm label unless it is already
// claimed by an object whose centroid is closer to (i, j).
func placeAdvected(advected LabelGrid, xmat, ymat Field, priorObjects []*Object, i, j, label int) {
	objByStorm := func(storm int) *Object {
		for _, o := range priorObjects {
			if o.Storm == storm {
				return o
			}
		}
		return nil
	}

	existing := advected[i][j]
	if existing == 0 {
		advected[i][j] = label
		return
	}
	if existing == label {
		return
	}

	prevObj := objByStorm(existing)
	newObj := objByStorm(label)
	if prevObj == nil || newObj == nil {
		return
	}
	oldDist := sqDist(xmat[i][j], ymat[i][j], prevObj.CentroidX, prevObj.CentroidY)
	newDist := sqDist(xmat[i][j], ymat[i][j], newObj.CentroidX, newObj.CentroidY)
	if newDist < oldDist {
		advected[i][j] = label
	}
}

func sqDist(x, y, cx, cy float64) float64 {
	dx, dy := x-cx, y-cy
	return dx*dx + dy*dy
}

func cellsWithLabel(grid LabelGrid, label int) [][2]int {
	var out [][2]int
	for i := range grid {
		for j := range grid[i] {
			if grid[i][j] == label {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}

// meanDisplacement returns the mean of u, v over the cells where
// priorLabels equals storm. Returns (0, 0) if the label has no cells.
func meanDisplacement(priorLabels LabelGrid, u, v Field, storm int) (float64, float64) {
	var sumU, sumV float64
	var n int
	for i := range priorLabels {
		for j := range priorLabels[i] {
			if priorLabels[i][j] != storm {
				continue
			}
			sumU += u[i][j]
			sumV += v[i][j]
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sumU / float64(n), sumV / float64(n)
}
