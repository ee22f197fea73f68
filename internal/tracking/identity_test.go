package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_InheritsOnStrongOverlap(t *testing.T) {
	t.Parallel()

	newLabels := LabelGrid{
		{1, 1},
		{1, 1},
	}
	advectedLabels := LabelGrid{
		{1, 1},
		{1, 1},
	}
	xmat, ymat := coordGrids(2, 2)
	priorObjects := []*Object{{Storm: 1, Was: 42, Life: 3}}
	advectedSummary := []AdvectedSummary{{CentroidX: 0.5, CentroidY: 0.5, Area: 4}}

	d := Resolve(1, 4, newLabels, advectedLabels, advectedSummary, priorObjects, 0.5, 0.5, xmat, ymat, 0.6, 1, 100, -999)

	assert.Equal(t, 42, d.Was)
	assert.Equal(t, 4, d.Life)
	assert.Equal(t, 4, d.WasDist)
}

func TestResolve_NewIdentityOnNoOverlap(t *testing.T) {
	t.Parallel()

	newLabels := LabelGrid{
		{1, 0},
		{0, 0},
	}
	advectedLabels := LabelGrid{
		{0, 0},
		{0, 0},
	}
	xmat, ymat := coordGrids(2, 2)

	d := Resolve(1, 1, newLabels, advectedLabels, nil, nil, 0, 0, xmat, ymat, 0.6, 0, 100, -999)

	assert.Equal(t, 100, d.Was)
	assert.Equal(t, 1, d.Life)
	assert.Equal(t, -999, d.WasDist)
}

func TestResolve_HaloFallback(t *testing.T) {
	t.Parallel()

	// New object at (0,0) has no direct overlap, but the advected prior
	// object sits one cell away, within the halo radius.
	newLabels := LabelGrid{
		{1, 0},
		{0, 0},
	}
	advectedLabels := LabelGrid{
		{0, 2},
		{0, 0},
	}
	xmat, ymat := coordGrids(2, 2)
	priorObjects := []*Object{nil, {Storm: 2, Was: 7, Life: 1}}
	advectedSummary := []AdvectedSummary{{}, {CentroidX: 1, CentroidY: 0, Area: 1}}

	d := Resolve(1, 1, newLabels, advectedLabels, advectedSummary, priorObjects, 0, 0, xmat, ymat, 0.5, 4, 100, -999)

	assert.Equal(t, 7, d.Was)
}

func TestResolve_MultiOverlapPicksLargestThenNearest(t *testing.T) {
	t.Parallel()

	newLabels := LabelGrid{
		{1, 1, 1},
		{1, 1, 1},
	}
	advectedLabels := LabelGrid{
		{1, 1, 2},
		{1, 1, 2},
	}
	xmat, ymat := coordGrids(2, 3)
	priorObjects := []*Object{
		{Storm: 1, Was: 10, Life: 5},
		{Storm: 2, Was: 20, Life: 1},
	}
	advectedSummary := []AdvectedSummary{
		{CentroidX: 0.5, CentroidY: 0.5, Area: 4},
		{CentroidX: 2, CentroidY: 0.5, Area: 2},
	}

	d := Resolve(1, 6, newLabels, advectedLabels, advectedSummary, priorObjects, 1, 0.5, xmat, ymat, 0.1, 1, 100, -999)

	assert.Equal(t, 10, d.Was, "object 1 has the larger raw overlap count (4 vs 2)")
	assert.Equal(t, []int{20}, d.Accreted)
}
