package tracking

import "time"

// FieldLoader is a driver-supplied collaborator that reads one snapshot
// from wherever the driver stores them. Decoding the underlying file
// format (radar volume, NetCDF, whatever) is entirely the driver's
// concern; this package only ever sees the resulting Field.
type FieldLoader interface {
	Load(path string) (field Field, fileID string, timestamp time.Time, err error)
}

// TimeDiffer reports the elapsed time, in the same units as Config.Dt,
// between two snapshot timestamps. A driver calls this before every Step
// and, when the result exceeds Config.DtTolerance, discards its Tracker
// and starts a fresh one rather than calling Step with stale prior state.
type TimeDiffer interface {
	TimeDiff(prev, cur time.Time) float64
}

// Serializer is the out-of-scope persistence collaborator whose on-disk
// format is nonetheless fixed by contract: one text file per snapshot,
// one line per object, space-separated key=value tokens. WriteObject and
// NewObjectFromRecord are exact inverses of each other.
type Serializer interface {
	WriteObject(o *Object, misval int, doRadar bool) string
}
