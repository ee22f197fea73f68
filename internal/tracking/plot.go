package tracking

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotDisplacementField renders the fine displacement field's per-row
// mean dx/dy as two line plots, one point per grid row, saved as PNGs at
// dxPath and dyPath. This is purely a debugging aid (the source's
// flagplot feature) and is never on the Step hot path.
func PlotDisplacementField(fineU, fineV Field, dxPath, dyPath string) error {
	if err := plotRowMeans(fineU, "Mean dx per row", "Row", "dx (pixels)", dxPath); err != nil {
		return fmt.Errorf("tracking: failed to plot dx field: %w", err)
	}
	if err := plotRowMeans(fineV, "Mean dy per row", "Row", "dy (pixels)", dyPath); err != nil {
		return fmt.Errorf("tracking: failed to plot dy field: %w", err)
	}
	return nil
}

func plotRowMeans(field Field, title, xlabel, ylabel, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel

	pts := make(plotter.XYs, 0, field.Rows())
	for i := range field {
		var sum float64
		for _, v := range field[i] {
			sum += v
		}
		n := float64(len(field[i]))
		if n == 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i), Y: sum / n})
	}
	if len(pts) == 0 {
		return nil
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(1)
	p.Add(line)

	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}
