package tracking

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Object is one labeled region's record for a single snapshot. Area,
// extreme, meanvar, centroid and box are recomputed from the scalar field
// every snapshot; was, life, dx, dy, parent, child, accreted and wasdist
// carry identity and lineage across snapshots and are filled in by
// IdentityResolver and LineageReconciler.
type Object struct {
	Storm int // snapshot-local label, 1..N
	Was   int // persistent identity, inherited across snapshots

	Area    int     // pixel count
	Extreme float64 // min or max of the field over the object, per polarity
	MeanVar float64 // mean of the field over the object

	CentroidX, CentroidY float64 // coordinate means over the object

	BoxLeft, BoxUp, BoxWidth, BoxHeight float64 // axis-aligned bbox, world coords

	Life int // consecutive snapshots this identity has existed

	Dx, Dy float64 // mean displacement per unit time step

	Parent   []int // children spawned from this object this snapshot ([misval] if none)
	Child    int   // parent's Was if this object is a split-off child (misval if none)
	Accreted []int // prior Was values absorbed into this object ([misval] if none)

	WasDist int // overlap-pixel count with the prior identity (misval if new)
}

// NewObjectFromGrid builds an Object's scratch fields (storm, area,
// extreme, meanvar, centroid, box) from the current snapshot's labeled
// region `label`. Identity fields are initialised as for a brand-new
// object: Was, Dx and Dy are zero, Life is 1, Parent and Accreted are
// [misval], and Child and WasDist are misval. The caller - ordinarily
// IdentityResolver and LineageReconciler - overwrites them as needed.
func NewObjectFromGrid(label int, labels LabelGrid, field, xmat, ymat Field, cfg Config) (*Object, error) {
	if !sameShape(field, xmat) || !sameShape(field, ymat) {
		return nil, &ShapeMismatchError{Context: "NewObjectFromGrid: field/xmat/ymat"}
	}
	if labels.Rows() != field.Rows() || labels.Cols() != field.Cols() {
		return nil, &ShapeMismatchError{
			Context: "NewObjectFromGrid: labels/field", WantRows: field.Rows(), WantCols: field.Cols(),
			GotRows: labels.Rows(), GotCols: labels.Cols(),
		}
	}

	var values, xs, ys []float64
	boxLeft, boxRight := math.Inf(1), math.Inf(-1)
	boxUp, boxDown := math.Inf(-1), math.Inf(1)

	for i := 0; i < labels.Rows(); i++ {
		for j := 0; j < labels.Cols(); j++ {
			if labels[i][j] != label {
				continue
			}
			v := field[i][j]
			x, y := xmat[i][j], ymat[i][j]
			values = append(values, v)
			xs = append(xs, x)
			ys = append(ys, y)
			if x < boxLeft {
				boxLeft = x
			}
			if x > boxRight {
				boxRight = x
			}
			if y > boxUp {
				boxUp = y
			}
			if y < boxDown {
				boxDown = y
			}
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("tracking: label %d not present in label grid", label)
	}

	extreme := values[0]
	if cfg.UnderThreshold {
		extreme = floats.Min(values)
	} else {
		extreme = floats.Max(values)
	}

	return &Object{
		Storm:      label,
		Area:       len(values),
		Extreme:    extreme,
		MeanVar:    stat.Mean(values, nil),
		CentroidX:  stat.Mean(xs, nil),
		CentroidY:  stat.Mean(ys, nil),
		BoxLeft:    boxLeft,
		BoxUp:      boxUp,
		BoxWidth:   boxRight - boxLeft,
		BoxHeight:  boxUp - boxDown,
		Life:       1,
		Parent:     []int{cfg.MisVal},
		Child:      cfg.MisVal,
		Accreted:   []int{cfg.MisVal},
		WasDist:    cfg.MisVal,
	}, nil
}

// NewObjectFromRecord reconstitutes an Object from one line of the fixed
// Serializer text format (see Serializer). It is the inverse of
// Serializer.WriteObject and is used when resuming tracking from a
// previously persisted run rather than from live grids.
func NewObjectFromRecord(line string, misval int) (*Object, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "storm" {
		return nil, fmt.Errorf("tracking: malformed object record: %q", line)
	}
	was, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("tracking: malformed was in record: %w", err)
	}

	tok := func(key string) (string, bool) {
		prefix := key + "="
		for _, f := range fields[2:] {
			if strings.HasPrefix(f, prefix) {
				return strings.TrimPrefix(f, prefix), true
			}
		}
		return "", false
	}
	mustFloat := func(key string) (float64, error) {
		s, ok := tok(key)
		if !ok {
			return 0, fmt.Errorf("tracking: missing key %q in record", key)
		}
		return strconv.ParseFloat(s, 64)
	}
	mustInt := func(key string) (int, error) {
		s, ok := tok(key)
		if !ok {
			return 0, fmt.Errorf("tracking: missing key %q in record", key)
		}
		return strconv.Atoi(s)
	}
	parseIntList := func(key string) ([]int, error) {
		s, ok := tok(key)
		if !ok {
			return []int{misval}, nil
		}
		parts := strings.Split(s, ",")
		out := make([]int, 0, len(parts))
		for _, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return nil, fmt.Errorf("tracking: malformed %s list: %w", key, err)
			}
			out = append(out, v)
		}
		return out, nil
	}

	area, err := mustInt("area")
	if err != nil {
		return nil, err
	}
	extreme, err := mustFloat("extreme")
	if err != nil {
		return nil, err
	}
	meanv, err := mustFloat("meanv")
	if err != nil {
		return nil, err
	}
	life, err := mustInt("life")
	if err != nil {
		return nil, err
	}
	dx, err := mustFloat("dx")
	if err != nil {
		return nil, err
	}
	dy, err := mustFloat("dy")
	if err != nil {
		return nil, err
	}

	centroidStr, ok := tok("centroid")
	if !ok {
		return nil, fmt.Errorf("tracking: missing key \"centroid\" in record")
	}
	cparts := strings.Split(centroidStr, ",")
	if len(cparts) != 2 {
		return nil, fmt.Errorf("tracking: malformed centroid in record: %q", centroidStr)
	}
	cx, err := strconv.ParseFloat(cparts[0], 64)
	if err != nil {
		return nil, err
	}
	cy, err := strconv.ParseFloat(cparts[1], 64)
	if err != nil {
		return nil, err
	}

	boxStr, ok := tok("box")
	if !ok {
		return nil, fmt.Errorf("tracking: missing key \"box\" in record")
	}
	bparts := strings.Split(boxStr, ",")
	if len(bparts) != 4 {
		return nil, fmt.Errorf("tracking: malformed box in record: %q", boxStr)
	}
	boxVals := make([]float64, 4)
	for i, p := range bparts {
		boxVals[i], err = strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
	}

	parent, err := parseIntList("parent")
	if err != nil {
		return nil, err
	}
	accreted, err := parseIntList("accreted")
	if err != nil {
		return nil, err
	}
	child, err := mustInt("child")
	if err != nil {
		return nil, err
	}

	return &Object{
		Was:       was,
		Area:      area,
		Extreme:   extreme,
		MeanVar:   meanv,
		CentroidX: cx,
		CentroidY: cy,
		BoxLeft:   boxVals[0],
		BoxUp:     boxVals[1],
		BoxWidth:  boxVals[2],
		BoxHeight: boxVals[3],
		Life:      life,
		Dx:        dx,
		Dy:        dy,
		Parent:    parent,
		Child:     child,
		Accreted:  accreted,
		WasDist:   misval,
	}, nil
}
