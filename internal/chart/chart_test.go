package chart

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speedbench/internal/benchmark"
)

func sweepDataset(t *testing.T, variants, lo, hi int) *benchmark.Dataset {
	t.Helper()
	ds := benchmark.NewDataset()
	for v := 1; v <= variants; v++ {
		for th := lo; th <= hi; th++ {
			_, err := ds.Append(v, th, 600, 600/(float64(th)*0.8))
			require.NoError(t, err)
		}
	}
	return ds
}

func TestRenderer_Render(t *testing.T) {
	for _, format := range []string{"jpg", "png", "svg"} {
		t.Run(format, func(t *testing.T) {
			r, err := NewRenderer(t.TempDir(), "prog1", format)
			require.NoError(t, err)

			ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
			path, err := r.Render(sweepDataset(t, 2, 2, 12), ts)
			require.NoError(t, err)
			assert.Equal(t, "prog1_img_2024-03-09_14:05:07."+format, filepath.Base(path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		})
	}
}

func TestRenderer_Plot(t *testing.T) {
	r, err := NewRenderer(t.TempDir(), "prog1", "")
	require.NoError(t, err)
	assert.Equal(t, "jpg", r.Format)

	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	p, err := r.Plot(sweepDataset(t, 3, 2, 6), ts)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-09_14:05:07\n"+DefaultCaption, p.Title.Text)
	assert.Equal(t, "Number of threads, np", p.X.Label.Text)
	assert.Equal(t, "Speedup = T1 / Tnp", p.Y.Label.Text)

	ticks := p.X.Tick.Marker.Ticks(p.X.Min, p.X.Max)
	require.Len(t, ticks, 6)
	assert.Equal(t, 2.0, ticks[0].Value)
	assert.Equal(t, 7.0, ticks[5].Value)
	assert.Equal(t, "7", ticks[5].Label)
	assert.Equal(t, ticks, p.Y.Tick.Marker.Ticks(p.Y.Min, p.Y.Max))

	assert.Equal(t, 2.0, p.X.Min)
	assert.Equal(t, 7.0, p.X.Max)
	assert.LessOrEqual(t, p.Y.Min, 2.0)
	assert.GreaterOrEqual(t, p.Y.Max, 7.0)
}

func TestRenderer_Errors(t *testing.T) {
	_, err := NewRenderer(t.TempDir(), "prog1", "bmp")
	assert.Error(t, err)

	r, err := NewRenderer(t.TempDir(), "prog1", "png")
	require.NoError(t, err)
	_, err = r.Render(benchmark.NewDataset(), time.Now())
	assert.Error(t, err)
}

func TestUnitTicks(t *testing.T) {
	ticks := unitTicks(2, 5)
	var values []float64
	for _, tk := range ticks {
		values = append(values, tk.Value)
	}
	assert.Equal(t, []float64{2, 3, 4, 5}, values)
}

func TestStyleFor(t *testing.T) {
	assert.Equal(t, variantStyles[0], styleFor(0))
	assert.Equal(t, variantStyles[1], styleFor(1))
	assert.NotNil(t, styleFor(5).color)
}

func TestRenderer_PlotEmptySeries(t *testing.T) {
	ds, err := benchmark.Decode([]byte(`{"v1": {"t": [], "s": [], "m": [], "sp": []}}`), benchmark.FormatJSON)
	require.NoError(t, err)
	require.Equal(t, []int{1}, ds.Variants())

	r, err := NewRenderer(t.TempDir(), "prog1", "png")
	require.NoError(t, err)
	_, err = r.Plot(ds, time.Now())
	assert.ErrorContains(t, err, "dataset is empty")
}
