package tracking

// Label thresholds field into a binary mask ("field > threshold", or
// "field < threshold" when underThreshold is true), flood-fills connected
// components of that mask using connectivity, drops components smaller
// than minPixel, and returns a dense label grid numbered 1..N in
// ascending order of first appearance (row-major scan order).
//
// This mirrors label_storms: threshold, connected-component label, area
// filter, then relabel dense so the survivors are numbered without gaps.
func Label(field Field, minPixel int, threshold float64, connectivity Connectivity, underThreshold bool) (LabelGrid, error) {
	rows, cols := field.Rows(), field.Cols()
	if rows == 0 || cols == 0 {
		return LabelGrid{}, nil
	}

	mask := make([][]bool, rows)
	for i := 0; i < rows; i++ {
		mask[i] = make([]bool, cols)
		for j := 0; j < cols; j++ {
			v := field[i][j]
			if underThreshold {
				mask[i][j] = v < threshold
			} else {
				mask[i][j] = v > threshold
			}
		}
	}

	offsets := connectivity.offsets()
	raw := newLabelGrid(rows, cols)
	nextLabel := 0
	var areas []int

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if !mask[i][j] || raw[i][j] != 0 {
				continue
			}
			nextLabel++
			area := floodFill(mask, raw, offsets, i, j, nextLabel)
			areas = append(areas, area)
		}
	}

	out := newLabelGrid(rows, cols)
	relabel := make([]int, nextLabel+1)
	dense := 0
	for lbl := 1; lbl <= nextLabel; lbl++ {
		if areas[lbl-1] < minPixel {
			relabel[lbl] = 0
			continue
		}
		dense++
		relabel[lbl] = dense
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if raw[i][j] != 0 {
				out[i][j] = relabel[raw[i][j]]
			}
		}
	}

	return out, nil
}

// floodFill labels the connected component containing (i0, j0) with label
// and returns its pixel count. mask marks candidate cells; raw accumulates
// the pre-relabel assignment.
func floodFill(mask [][]bool, raw LabelGrid, offsets [][2]int, i0, j0, label int) int {
	rows, cols := len(mask), len(mask[0])
	stack := [][2]int{{i0, j0}}
	raw[i0][j0] = label
	area := 0

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		area++

		for _, off := range offsets {
			ni, nj := p[0]+off[0], p[1]+off[1]
			if ni < 0 || ni >= rows || nj < 0 || nj >= cols {
				continue
			}
			if !mask[ni][nj] || raw[ni][nj] != 0 {
				continue
			}
			raw[ni][nj] = label
			stack = append(stack, [2]int{ni, nj})
		}
	}
	return area
}
