package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func coordGrids(rows, cols int) (Field, Field) {
	x := newField(rows, cols)
	y := newField(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x[i][j] = float64(j)
			y[i][j] = float64(i)
		}
	}
	return x, y
}

func TestAdvect_ZeroDisplacementCopiesInPlace(t *testing.T) {
	t.Parallel()

	labels := LabelGrid{
		{1, 1, 0},
		{1, 1, 0},
		{0, 0, 0},
	}
	xmat, ymat := coordGrids(3, 3)
	u := newField(3, 3)
	v := newField(3, 3)
	obj := &Object{Storm: 1, CentroidX: 0.5, CentroidY: 0.5}

	advected, summaries := Advect(labels, []*Object{obj}, u, v, xmat, ymat)

	assert.Equal(t, 1, advected[0][0])
	assert.Equal(t, 1, advected[1][1])
	assert.Equal(t, 4, summaries[0].Area)
}

func TestAdvect_ShiftsByMeanDisplacement(t *testing.T) {
	t.Parallel()

	labels := LabelGrid{
		{1, 0, 0},
		{0, 0, 0},
		{0, 0, 0},
	}
	xmat, ymat := coordGrids(3, 3)
	u := newField(3, 3)
	v := newField(3, 3)
	u[0][0] = 2 // dx (second axis)
	v[0][0] = 1 // dy (first axis)
	obj := &Object{Storm: 1, CentroidX: 0, CentroidY: 0}

	advected, summaries := Advect(labels, []*Object{obj}, u, v, xmat, ymat)

	assert.Equal(t, 1, advected[1][2])
	assert.Equal(t, 0, advected[0][0], "original cell should be vacated")
	assert.Equal(t, 1, summaries[0].Area)
}

func TestAdvect_OverflowingShiftDropped(t *testing.T) {
	t.Parallel()

	labels := LabelGrid{{1}}
	xmat, ymat := coordGrids(1, 1)
	u := newField(1, 1)
	v := newField(1, 1)
	u[0][0] = 5
	obj := &Object{Storm: 1}

	_, summaries := Advect(labels, []*Object{obj}, u, v, xmat, ymat)
	assert.Equal(t, 0, summaries[0].Area, "shift off-grid should leave the object with no advected footprint")
}

func TestAdvect_CollisionResolvedByCentroidProximity(t *testing.T) {
	t.Parallel()

	// Two 1-cell prior objects both advect onto the same destination cell;
	// whichever has the closer centroid should keep it.
	labels := LabelGrid{
		{1, 0, 0},
		{0, 0, 0},
		{0, 2, 0},
	}
	xmat, ymat := coordGrids(3, 3)
	u := newField(3, 3)
	v := newField(3, 3)
	// object 1 at (0,0) shifts to (1,1)
	u[0][0], v[0][0] = 1, 1
	// object 2 at (2,1) shifts to (1,1) too
	u[2][1], v[2][1] = 0, -1

	obj1 := &Object{Storm: 1, CentroidX: 0, CentroidY: 0}
	obj2 := &Object{Storm: 2, CentroidX: 1, CentroidY: 1}

	advected, _ := Advect(labels, []*Object{obj1, obj2}, u, v, xmat, ymat)
	// obj2's centroid (1,1) is exactly the destination cell, so it should win.
	assert.Equal(t, 2, advected[1][1])
}
