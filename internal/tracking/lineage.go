package tracking

import "sort"

// ReconcileLineage detects multi-inheritance collisions among newObjects:
// several current objects that resolved to the same Was. Within each such
// group it selects a parent (largest WasDist, smallest Storm on tie),
// reassigns the others fresh Was values as children, and records the
// parent/child/accreted bookkeeping. wasArray is updated in place for any
// cell whose owning object's Was changes.
//
// newObjects must be in ascending-Storm order; nextID is advanced for
// every child reassignment and returned.
func ReconcileLineage(newObjects []*Object, newLabels LabelGrid, wasArray [][]int, misval, nextID int) int {
	groups := map[int][]*Object{}
	for _, n := range newObjects {
		if n.WasDist == misval {
			continue
		}
		groups[n.Was] = append(groups[n.Was], n)
	}

	var wasKeys []int
	for was := range groups {
		wasKeys = append(wasKeys, was)
	}
	sort.Ints(wasKeys)

	for _, was := range wasKeys {
		members := groups[was]
		if len(members) <= 1 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].Storm < members[j].Storm })

		parent := members[0]
		for _, m := range members[1:] {
			if m.WasDist > parent.WasDist {
				parent = m
			}
		}

		for _, c := range members {
			if c == parent {
				continue
			}
			c.Child = parent.Was
			oldWas := c.Was
			c.Was = nextID
			nextID++
			c.Life = parent.Life
			c.WasDist = misval

			relabelWasArray(wasArray, newLabels, c.Storm, oldWas, c.Was)

			if len(parent.Parent) == 1 && parent.Parent[0] == misval {
				parent.Parent = []int{c.Was}
			} else {
				parent.Parent = append(parent.Parent, c.Was)
			}
		}
	}

	sanitizeAccreted(newObjects, misval)
	return nextID
}

// relabelWasArray rewrites wasArray cells belonging to storm from oldWas
// to newWas.
func relabelWasArray(wasArray [][]int, newLabels LabelGrid, storm, oldWas, newWas int) {
	for i := range newLabels {
		for j := range newLabels[i] {
			if newLabels[i][j] == storm && wasArray[i][j] == oldWas {
				wasArray[i][j] = newWas
			}
		}
	}
}

// sanitizeAccreted drops any accreted entry that equals the Was of
// another live object in this snapshot, and collapses an emptied list to
// [misval].
func sanitizeAccreted(newObjects []*Object, misval int) {
	live := map[int]bool{}
	for _, n := range newObjects {
		live[n.Was] = true
	}
	for _, n := range newObjects {
		var kept []int
		for _, a := range n.Accreted {
			if a == misval {
				continue
			}
			if live[a] {
				continue
			}
			kept = append(kept, a)
		}
		if len(kept) == 0 {
			n.Accreted = []int{misval}
		} else {
			n.Accreted = kept
		}
	}
}
