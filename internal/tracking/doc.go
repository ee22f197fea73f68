// Package tracking implements the per-step object tracking engine: labeling
// a scalar field into connected regions, estimating the displacement field
// between two snapshots via block-wise FFT correlation, advecting prior
// objects forward, and resolving identity across frames by overlap with a
// halo fallback.
//
// The entry point is Tracker.Step, which a driver calls once per snapshot
// pair, threading the returned objects and label grid into the next call.
package tracking
