package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The coarse grid's sample coordinates must sit at pixel offset squarehalf
// past the start of each tile - origin + squarehalf*(index+1) - matching
// the original's meshgrid(range(origin+squarehalf, extent, squarehalf)).
// A stray "-0.5" in the midpoint arithmetic would silently bias every
// VectorFieldSmoother.Interpolate call without tripping any shape or NaN
// check, so this is asserted directly against correlateCoarseGrid's output.
func TestCorrelateCoarseGrid_SampleCoordinatesMatchPixelOffset(t *testing.T) {
	t.Parallel()

	const n = 40
	xmat, ymat := coordGrids(n, n)
	cfg := validConfig()
	cfg.SquareLength = 20 // squarehalf = 10

	mask := newField(n, n)
	coarse := correlateCoarseGrid(mask, mask, xmat, ymat, cfg)

	require.Len(t, coarse.X, 3)
	require.Len(t, coarse.Y, 3)
	assert.InDelta(t, 10, coarse.X[0], 1e-9)
	assert.InDelta(t, 20, coarse.X[1], 1e-9)
	assert.InDelta(t, 30, coarse.X[2], 1e-9)
	assert.InDelta(t, 10, coarse.Y[0], 1e-9)
	assert.InDelta(t, 20, coarse.Y[1], 1e-9)
	assert.InDelta(t, 30, coarse.Y[2], 1e-9)
}
