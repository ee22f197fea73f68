package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileLineage_SplitAssignsChildAndParent(t *testing.T) {
	t.Parallel()

	newLabels := LabelGrid{
		{1, 2},
	}
	wasArray := [][]int{{5, 5}}

	inheritor := &Object{Storm: 1, Was: 5, Life: 3, WasDist: 8, Parent: []int{-999}}
	splitOff := &Object{Storm: 2, Was: 5, Life: 3, WasDist: 3, Parent: []int{-999}}

	nextID := ReconcileLineage([]*Object{inheritor, splitOff}, newLabels, wasArray, -999, 100)

	require.Equal(t, 101, nextID)
	assert.Equal(t, 5, inheritor.Was)
	assert.Equal(t, []int{100}, inheritor.Parent)
	assert.Equal(t, 100, splitOff.Was)
	assert.Equal(t, 5, splitOff.Child)
	assert.Equal(t, inheritor.Life, splitOff.Life)
	assert.Equal(t, -999, splitOff.WasDist)
	assert.Equal(t, 100, wasArray[0][1], "split-off's cells should be relabeled to its new was")
	assert.Equal(t, 5, wasArray[0][0], "inheritor's cells should be untouched")
}

func TestReconcileLineage_NoCollisionIsNoop(t *testing.T) {
	t.Parallel()

	newLabels := LabelGrid{{1}}
	wasArray := [][]int{{5}}
	obj := &Object{Storm: 1, Was: 5, Life: 2, WasDist: 4, Parent: []int{-999}}

	nextID := ReconcileLineage([]*Object{obj}, newLabels, wasArray, -999, 100)

	assert.Equal(t, 100, nextID)
	assert.Equal(t, 5, obj.Was)
}

func TestSanitizeAccreted_DropsLiveDuplicatesAndCollapses(t *testing.T) {
	t.Parallel()

	newLabels := LabelGrid{{1, 2}}
	wasArray := [][]int{{1, 2}}
	n1 := &Object{Storm: 1, Was: 1, WasDist: -999, Accreted: []int{2}}
	n2 := &Object{Storm: 2, Was: 2, WasDist: -999, Accreted: []int{-999}}

	ReconcileLineage([]*Object{n1, n2}, newLabels, wasArray, -999, 100)

	assert.Equal(t, []int{-999}, n1.Accreted, "accreted entry matching a live was must be dropped")
}
