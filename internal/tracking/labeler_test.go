package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareField(rows, cols int, top, left, h, w int, inside, outside float64) Field {
	f := newField(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if i >= top && i < top+h && j >= left && j < left+w {
				f[i][j] = inside
			} else {
				f[i][j] = outside
			}
		}
	}
	return f
}

func TestLabel_Uniqueness(t *testing.T) {
	t.Parallel()

	f := squareField(20, 20, 2, 2, 5, 5, 10, 0)
	labels, err := Label(f, 4, 5, EightConnectivity(), false)
	require.NoError(t, err)

	seen := map[int]bool{}
	for i := range labels {
		for j := range labels[i] {
			if labels[i][j] != 0 {
				seen[labels[i][j]] = true
			}
		}
	}
	for k := 1; k <= len(seen); k++ {
		assert.True(t, seen[k], "expected dense label %d to be present", k)
	}
}

func TestLabel_AreaFilter(t *testing.T) {
	t.Parallel()

	f := newField(10, 10)
	// a 2x2 blob below minpixel, and a 4x4 blob above it
	f[0][0], f[0][1], f[1][0], f[1][1] = 10, 10, 10, 10
	for i := 5; i < 9; i++ {
		for j := 5; j < 9; j++ {
			f[i][j] = 10
		}
	}

	labels, err := Label(f, 5, 5, EightConnectivity(), false)
	require.NoError(t, err)

	assert.Equal(t, 0, labels[0][0], "small blob should be filtered out")
	assert.Equal(t, 1, labels[6][6], "large blob should survive as label 1")
}

func TestLabel_UnderThreshold(t *testing.T) {
	t.Parallel()

	f := squareField(10, 10, 3, 3, 4, 4, -5, 5)
	labels, err := Label(f, 4, -1, FourConnectivity(), true)
	require.NoError(t, err)

	assert.Equal(t, 1, labels[4][4])
}

func TestLabel_EmptyField(t *testing.T) {
	t.Parallel()

	labels, err := Label(Field{}, 1, 0, EightConnectivity(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, labels.Rows())
}
