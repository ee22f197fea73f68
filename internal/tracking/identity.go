package tracking

import (
	"math"
	"sort"
)

// IdentityDecision is the outcome of resolving one new object's identity
// against the advected prior objects.
type IdentityDecision struct {
	Was      int
	Life     int
	WasDist  int
	Accreted []int // prior Was values absorbed alongside the chosen match, nil if none
}

// Resolve decides, for a single new object n (label jj, area newArea), its
// identity against the advected label grid. priorObjects must be indexed
// by Storm-1 matching advectedSummary's indexing (both produced by Advect
// in ascending-Storm order). nextID is the seed for a fresh persistent ID
// when no match clears overlapThreshold; it is the caller's responsibility
// to bump its own seed by 1 when a fresh ID is consumed.
func Resolve(
	jj int,
	newArea int,
	newLabels, advectedLabels LabelGrid,
	advectedSummary []AdvectedSummary,
	priorObjects []*Object,
	centroidX, centroidY float64,
	xmat, ymat Field,
	overlapThreshold, haloSq float64,
	nextID, misval int,
) IdentityDecision {
	maskFn := func(i, j int) bool { return newLabels[i][j] == jj }

	q, sectlap := overlapHistogram(maskFn, advectedLabels, newArea, advectedSummary)
	best := maxOverlap(q)

	if best < overlapThreshold {
		haloFn := func(i, j int) bool {
			return sqDist(xmat[i][j], ymat[i][j], centroidX, centroidY) < haloSq
		}
		q, sectlap = overlapHistogram(haloFn, advectedLabels, newArea, advectedSummary)
		best = maxOverlap(q)
	}

	if best < overlapThreshold {
		return IdentityDecision{Was: nextID, Life: 1, WasDist: misval, Accreted: nil}
	}

	var matched []int
	for k, v := range q {
		if k == 0 {
			continue
		}
		if v >= overlapThreshold {
			matched = append(matched, k)
		}
	}
	sort.Ints(matched)

	kstar := matched[0]
	if len(matched) > 1 {
		kstar = pickByOverlapThenCentroid(matched, sectlap, advectedSummary, centroidX, centroidY)
	}

	parent := priorObjects[kstar-1]
	var accreted []int
	for _, k := range matched {
		if k == kstar {
			continue
		}
		accreted = append(accreted, priorObjects[k-1].Was)
	}

	return IdentityDecision{
		Was:      parent.Was,
		Life:     parent.Life + 1,
		WasDist:  sectlap[kstar],
		Accreted: accreted,
	}
}

// overlapHistogram computes q[k] for every advected label k present under
// mask, and the raw overlapping pixel count sectlap[k].
func overlapHistogram(mask func(i, j int) bool, advectedLabels LabelGrid, newArea int, advectedSummary []AdvectedSummary) (map[int]float64, map[int]int) {
	sectlap := map[int]int{}
	for i := range advectedLabels {
		for j := range advectedLabels[i] {
			if !mask(i, j) {
				continue
			}
			k := advectedLabels[i][j]
			if k == 0 {
				continue
			}
			sectlap[k]++
		}
	}
	q := map[int]float64{}
	for k, count := range sectlap {
		ak := 1
		if k-1 < len(advectedSummary) && advectedSummary[k-1].Area > 0 {
			ak = advectedSummary[k-1].Area
		}
		invN := 0.0
		if newArea > 0 {
			invN = 1.0 / float64(newArea)
		}
		q[k] = float64(count) * (invN + 1.0/float64(ak))
	}
	return q, sectlap
}

func maxOverlap(q map[int]float64) float64 {
	best := math.Inf(-1)
	for k, v := range q {
		if k == 0 {
			continue
		}
		if v > best {
			best = v
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}

// pickByOverlapThenCentroid breaks ties among candidates with largest raw
// pixel overlap, then nearest centroid to (cx, cy), then smallest k.
func pickByOverlapThenCentroid(candidates []int, sectlap map[int]int, advectedSummary []AdvectedSummary, cx, cy float64) int {
	best := candidates[0]
	for _, k := range candidates[1:] {
		switch {
		case sectlap[k] > sectlap[best]:
			best = k
		case sectlap[k] == sectlap[best]:
			dBest := sqDist(advectedSummary[best-1].CentroidX, advectedSummary[best-1].CentroidY, cx, cy)
			dK := sqDist(advectedSummary[k-1].CentroidX, advectedSummary[k-1].CentroidY, cx, cy)
			switch {
			case dK < dBest:
				best = k
			case dK == dBest && k < best:
				best = k
			}
		}
	}
	return best
}
