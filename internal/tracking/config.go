package tracking

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WindowMethod selects the apodization window BlockCorrelator applies to
// each tile before cross-correlating.
type WindowMethod string

const (
	// WindowTukey applies a separable 2-D Tukey (tapered cosine) window.
	WindowTukey WindowMethod = "tukey"
	// WindowNone applies no window (all-ones).
	WindowNone WindowMethod = "none"
)

// Config holds every caller-chosen parameter the tracking engine needs.
// All fields are required; Validate reports the first violation found.
type Config struct {
	// Dt is the time interval, in caller-defined units, between nominal
	// snapshots (e.g. 5 minutes for 5-minute radar).
	Dt float64
	// DtTolerance is the maximum allowed gap, in the same units as Dt,
	// between consecutive snapshots before a driver must restart identity
	// numbering.
	DtTolerance float64

	// Threshold is compared against the tracking variable to build the
	// binary mask the labeler floods.
	Threshold float64
	// UnderThreshold selects "field < Threshold" when true, "field >
	// Threshold" when false.
	UnderThreshold bool

	// MinPixel is the minimum area, in grid cells, for a labeled region to
	// survive the labeler's area filter.
	MinPixel int

	// SquareLength is the edge length, in pixels, of the coarse
	// correlation tiles. It must evenly divide both grid dimensions.
	SquareLength int
	// RaFraction is the minimum fractional cover of thresholded pixels a
	// tile needs before BlockCorrelator is invoked on it.
	RaFraction float64

	// DdTolerance is the maximum pixel deviation of a coarse displacement
	// vector from its local neighbourhood mean before it is rejected as an
	// outlier.
	DdTolerance float64
	// HaloPixel is the radius, in world-coordinate units, of the fallback
	// matching circle used when direct overlap misses.
	HaloPixel float64

	// LapThresh is the minimum normalized overlap measure required to
	// declare identity continuation, in [0, 1].
	LapThresh float64

	// MisVal is the sentinel written in place of "none" for parent,
	// child, accreted, and wasdist fields.
	MisVal int

	// Connectivity is the structuring element the labeler uses to decide
	// which neighbouring cells belong to the same component. Must be
	// centrosymmetric.
	Connectivity Connectivity

	// DoRadar enables range/azimuth enrichment of object records. The
	// core tracking engine accepts the flag but range/azimuth computation
	// itself is a radar-specific collaborator's concern (see Non-goals).
	DoRadar bool

	// CorrelationWindow selects BlockCorrelator's apodization window.
	// Defaults to WindowTukey when left empty.
	CorrelationWindow WindowMethod
}

// SquareHalf returns half of SquareLength - the pitch of the coarse
// displacement grid and the offset of its first sample from the origin.
func (c Config) SquareHalf() int { return c.SquareLength / 2 }

// FFTPixels returns the minimum number of thresholded pixels a tile needs
// before BlockCorrelator is invoked on it: SquareLength^2 * RaFraction.
func (c Config) FFTPixels() float64 {
	return float64(c.SquareLength*c.SquareLength) * c.RaFraction
}

// HaloSq returns the squared halo radius used by IdentityResolver's
// fallback matching circle.
func (c Config) HaloSq() float64 { return c.HaloPixel * c.HaloPixel }

// Validate checks the configuration for internal consistency. gridRows and
// gridCols are the shape of the grids this Config will be used against;
// pass 0, 0 to skip the grid-divisibility check.
func (c Config) Validate(gridRows, gridCols int) error {
	if c.MinPixel < 1 {
		return &ConfigError{Field: "MinPixel", Reason: "must be >= 1"}
	}
	if c.LapThresh < 0 || c.LapThresh > 1 {
		return &ConfigError{Field: "LapThresh", Reason: "must be in [0, 1]"}
	}
	if c.SquareLength <= 0 {
		return &ConfigError{Field: "SquareLength", Reason: "must be positive"}
	}
	if c.SquareLength%2 != 0 {
		return &ConfigError{Field: "SquareLength", Reason: "must be even so SquareHalf divides it exactly"}
	}
	if c.RaFraction <= 0 || c.RaFraction > 1 {
		return &ConfigError{Field: "RaFraction", Reason: "must be in (0, 1]"}
	}
	if c.DdTolerance < 0 {
		return &ConfigError{Field: "DdTolerance", Reason: "must be non-negative"}
	}
	if c.HaloPixel < 0 {
		return &ConfigError{Field: "HaloPixel", Reason: "must be non-negative"}
	}
	if c.DtTolerance <= 0 {
		return &ConfigError{Field: "DtTolerance", Reason: "must be positive"}
	}
	if !c.Connectivity.IsCentrosymmetric() {
		return &ConfigError{Field: "Connectivity", Reason: "kernel must be centrosymmetric"}
	}
	if gridRows > 0 && gridCols > 0 {
		if gridRows%c.SquareLength != 0 || gridCols%c.SquareLength != 0 {
			return &ConfigError{
				Field:  "SquareLength",
				Reason: fmt.Sprintf("must evenly divide grid shape %dx%d", gridRows, gridCols),
			}
		}
	}
	return nil
}

// windowMethod returns the configured correlation window, defaulting to
// WindowTukey when unset.
func (c Config) windowMethod() WindowMethod {
	if c.CorrelationWindow == "" {
		return WindowTukey
	}
	return c.CorrelationWindow
}

// configJSON is the on-disk representation of Config. Connectivity is
// serialized as a named kernel ("four" or "eight") rather than a raw
// boolean matrix, since those are the only two kernels most callers need.
type configJSON struct {
	Dt                float64 `json:"dt"`
	DtTolerance        float64 `json:"dt_tolerance"`
	Threshold          float64 `json:"threshold"`
	UnderThreshold     bool    `json:"under_threshold"`
	MinPixel           int     `json:"minpixel"`
	SquareLength       int     `json:"squarelength"`
	RaFraction         float64 `json:"rafraction"`
	DdTolerance        float64 `json:"dd_tolerance"`
	HaloPixel          float64 `json:"halopixel"`
	LapThresh          float64 `json:"lapthresh"`
	MisVal             int     `json:"misval"`
	Connectivity       string  `json:"connectivity"`
	DoRadar            bool    `json:"doradar"`
	CorrelationWindow  string  `json:"correlation_window,omitempty"`
}

// LoadConfig reads a Config from a JSON file. The file is validated to have
// a .json extension and to be under 1MB before parsing, mirroring the
// defensive file handling every config loader in this codebase uses.
func LoadConfig(path string) (Config, error) {
	clean := filepath.Clean(path)
	if ext := filepath.Ext(clean); ext != ".json" {
		return Config{}, fmt.Errorf("tracking: config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(clean)
	if err != nil {
		return Config{}, fmt.Errorf("tracking: failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return Config{}, fmt.Errorf("tracking: config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return Config{}, fmt.Errorf("tracking: failed to read config file: %w", err)
	}

	var raw configJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("tracking: failed to parse config JSON: %w", err)
	}

	cfg := Config{
		Dt:                raw.Dt,
		DtTolerance:       raw.DtTolerance,
		Threshold:         raw.Threshold,
		UnderThreshold:    raw.UnderThreshold,
		MinPixel:          raw.MinPixel,
		SquareLength:      raw.SquareLength,
		RaFraction:        raw.RaFraction,
		DdTolerance:       raw.DdTolerance,
		HaloPixel:         raw.HaloPixel,
		LapThresh:         raw.LapThresh,
		MisVal:            raw.MisVal,
		DoRadar:           raw.DoRadar,
		CorrelationWindow: WindowMethod(raw.CorrelationWindow),
	}
	switch raw.Connectivity {
	case "", "eight":
		cfg.Connectivity = EightConnectivity()
	case "four":
		cfg.Connectivity = FourConnectivity()
	default:
		return Config{}, fmt.Errorf("tracking: unknown connectivity %q (want \"four\" or \"eight\")", raw.Connectivity)
	}

	if err := cfg.Validate(0, 0); err != nil {
		return Config{}, fmt.Errorf("tracking: invalid configuration: %w", err)
	}
	return cfg, nil
}
