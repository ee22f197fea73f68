// Command storm-track runs the object tracking engine over a directory of
// snapshot files, one JSON grid per file, writing one history text file
// per snapshot in the teacher's fixed record format.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wxtrack/stormtrack/internal/monitoring"
	"github.com/wxtrack/stormtrack/internal/tracking"
)

var (
	configFile = flag.String("config", "tracking.json", "Path to JSON tuning configuration file")
	inputDir   = flag.String("input-dir", ".", "Directory of snapshot JSON files to process, in filename order")
	outputDir  = flag.String("output-dir", "history", "Directory to write per-snapshot history text files")
	plotDir    = flag.String("plot-dir", "", "Directory to write debug displacement-field plots (empty disables plotting)")
	versionFlag = flag.Bool("version", false, "Print version information and exit")
)

const version = "0.1.0"

// snapshotFile is the on-disk shape of one input snapshot.
type snapshotFile struct {
	FileID string      `json:"file_id"`
	Hour   int         `json:"hour"`
	Minute int         `json:"minute"`
	Field  [][]float64 `json:"field"`
	Xmat   [][]float64 `json:"xmat"`
	Ymat   [][]float64 `json:"ymat"`
}

type fileLoader struct{}

func (fileLoader) Load(path string) (tracking.Field, string, time.Time, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("storm-track: failed to read snapshot %s: %w", path, err)
	}
	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, "", time.Time{}, fmt.Errorf("storm-track: failed to parse snapshot %s: %w", path, err)
	}
	ts := time.Date(0, 1, 1, snap.Hour, snap.Minute, 0, 0, time.UTC)
	return snap.Field, snap.FileID, ts, nil
}

type hourMinuteDiff struct{}

func (hourMinuteDiff) TimeDiff(prev, cur time.Time) float64 {
	return cur.Sub(prev).Minutes()
}

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println("storm-track", version)
		return
	}

	cfg, err := tracking.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("storm-track: %v", err)
	}

	paths, err := snapshotPaths(*inputDir)
	if err != nil {
		log.Fatalf("storm-track: %v", err)
	}
	if len(paths) == 0 {
		log.Fatalf("storm-track: no snapshot files found in %s", *inputDir)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatalf("storm-track: failed to create output directory: %v", err)
	}

	loader := fileLoader{}
	differ := hourMinuteDiff{}
	serializer := tracking.TextSerializer{}

	var tracker *tracking.Tracker
	var prevTime time.Time
	var xmat, ymat tracking.Field

	for i, path := range paths {
		field, fileID, ts, err := loader.Load(path)
		if err != nil {
			log.Fatalf("storm-track: %v", err)
		}
		if xmat == nil {
			snap, err := loadCoordinateGrids(path)
			if err != nil {
				log.Fatalf("storm-track: %v", err)
			}
			xmat, ymat = snap.Xmat, snap.Ymat
		}

		numDt := 1.0
		if tracker == nil {
			tracker = tracking.NewTracker(cfg)
		} else if dtnow := differ.TimeDiff(prevTime, ts); dtnow > cfg.DtTolerance {
			monitoring.Logf("storm-track: gap exceeding dt_tolerance before %s, restarting identity tracking", fileID)
			tracker = tracking.NewTracker(cfg)
		} else {
			numDt = dtnow / cfg.Dt
		}
		prevTime = ts

		result, err := tracker.Step(field, xmat, ymat, numDt)
		if err != nil {
			log.Fatalf("storm-track: step %d (%s) failed: %v", i, fileID, err)
		}

		if err := writeHistory(*outputDir, fileID, result.Objects, serializer, cfg); err != nil {
			log.Fatalf("storm-track: %v", err)
		}

		if *plotDir != "" {
			dxPath := filepath.Join(*plotDir, fileID+"_dx.png")
			dyPath := filepath.Join(*plotDir, fileID+"_dy.png")
			if err := tracking.PlotDisplacementField(result.FineU, result.FineV, dxPath, dyPath); err != nil {
				monitoring.Logf("storm-track: plot failed for %s: %v", fileID, err)
			}
		}
	}
}

func snapshotPaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func loadCoordinateGrids(path string) (snapshotFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return snapshotFile{}, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return snapshotFile{}, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return snap, nil
}

func writeHistory(dir, fileID string, objects []*tracking.Object, s tracking.TextSerializer, cfg tracking.Config) error {
	path := filepath.Join(dir, "history_"+fileID+".txt")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create history file %s: %w", path, err)
	}
	defer f.Close()

	for _, o := range objects {
		if _, err := fmt.Fprintln(f, s.WriteObject(o, cfg.MisVal, cfg.DoRadar)); err != nil {
			return fmt.Errorf("failed to write history file %s: %w", path, err)
		}
	}
	return nil
}
