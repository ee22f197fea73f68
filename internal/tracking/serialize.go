package tracking

import (
	"fmt"
	"strconv"
	"strings"
)

// TextSerializer implements Serializer with the fixed key=value line
// format: one "storm <was>" record per object, remaining fields as
// space-separated key=value tokens, comma-joined lists, misval written
// verbatim in place of an empty list.
type TextSerializer struct{}

// WriteObject renders o as one line of the fixed text format. It is the
// exact inverse of NewObjectFromRecord.
func (TextSerializer) WriteObject(o *Object, misval int, doRadar bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "storm %d", o.Was)
	fmt.Fprintf(&b, " area=%d", o.Area)
	fmt.Fprintf(&b, " centroid=%s,%s", trimFloat(o.CentroidX), trimFloat(o.CentroidY))
	fmt.Fprintf(&b, " box=%s,%s,%s,%s", trimFloat(o.BoxLeft), trimFloat(o.BoxUp), trimFloat(o.BoxWidth), trimFloat(o.BoxHeight))
	fmt.Fprintf(&b, " life=%d", o.Life)
	fmt.Fprintf(&b, " dx=%s dy=%s", trimFloat(o.Dx), trimFloat(o.Dy))
	fmt.Fprintf(&b, " meanv=%s", trimFloat(o.MeanVar))
	fmt.Fprintf(&b, " extreme=%s", trimFloat(o.Extreme))
	fmt.Fprintf(&b, " accreted=%s", joinInts(o.Accreted, misval))
	fmt.Fprintf(&b, " parent=%s", joinInts(o.Parent, misval))
	fmt.Fprintf(&b, " child=%d", o.Child)
	if doRadar {
		// Range/azimuth geometry is a radar collaborator's concern (see
		// Non-goals); this engine only reserves the keys so a collaborator
		// that does compute them can populate the same record format.
		fmt.Fprintf(&b, " range=%d,%d azimuth=%d,%d", misval, misval, misval, misval)
	}
	return b.String()
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinInts(vals []int, misval int) string {
	if len(vals) == 0 {
		return strconv.Itoa(misval)
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
