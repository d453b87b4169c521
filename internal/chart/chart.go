// Package chart renders speedup curves against the ideal linear speedup.
package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"speedbench/internal/benchmark"
)

const (
	DefaultCaption      = "Prog1 Speedup vs Number of threads"
	DefaultVariantLabel = "view"
	DefaultFormat       = "jpg"

	xAxisLabel = "Number of threads, np"
	yAxisLabel = "Speedup = T1 / Tnp"
)

var supportedFormats = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "svg": true, "pdf": true, "tif": true, "tiff": true,
}

// lineStyle is the color and marker of one curve.
type lineStyle struct {
	color color.Color
	shape draw.GlyphDrawer
}

var (
	idealStyle    = lineStyle{color.RGBA{R: 220, A: 255}, draw.TriangleGlyph{}}
	variantStyles = []lineStyle{
		{color.RGBA{G: 160, A: 255}, draw.TriangleGlyph{}},
		{color.RGBA{B: 220, A: 255}, draw.CircleGlyph{}},
	}
)

func styleFor(i int) lineStyle {
	if i < len(variantStyles) {
		return variantStyles[i]
	}
	return lineStyle{plotutil.Color(i), plotutil.Shape(i)}
}

// Renderer draws one chart per sweep into Dir.
type Renderer struct {
	Dir          string
	Prefix       string
	Format       string
	Caption      string
	VariantLabel string
	Width        vg.Length
	Height       vg.Length
}

// NewRenderer returns a Renderer with the default caption, labels and size.
func NewRenderer(dir, prefix, format string) (*Renderer, error) {
	format = strings.ToLower(format)
	if format == "" {
		format = DefaultFormat
	}
	if !supportedFormats[format] {
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &Renderer{
		Dir:          dir,
		Prefix:       prefix,
		Format:       format,
		Caption:      DefaultCaption,
		VariantLabel: DefaultVariantLabel,
		Width:        8 * vg.Inch,
		Height:       6 * vg.Inch,
	}, nil
}

// Path returns the image file name for a sweep saved at ts.
func (r *Renderer) Path(ts time.Time) string {
	name := fmt.Sprintf("%s_img_%s.%s", r.Prefix, ts.Format(benchmark.TimestampLayout), r.Format)
	return filepath.Join(r.Dir, name)
}

// Render draws ds and saves the image, returning its path.
func (r *Renderer) Render(ds *benchmark.Dataset, ts time.Time) (string, error) {
	p, err := r.Plot(ds, ts)
	if err != nil {
		return "", err
	}

	path := r.Path(ts)
	if err := p.Save(r.Width, r.Height, path); err != nil {
		return "", fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return path, nil
}

// Plot builds the chart without saving it.
func (r *Renderer) Plot(ds *benchmark.Dataset, ts time.Time) (*plot.Plot, error) {
	variants := ds.Variants()
	if len(variants) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s\n%s", ts.Format(benchmark.TimestampLayout), r.Caption)
	p.X.Label.Text = xAxisLabel
	p.Y.Label.Text = yAxisLabel
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	// the ideal curve follows the lowest variant's thread domain
	reference := ds.Series(variants[0])
	ideal := make(plotter.XYs, len(reference.Runs))
	for i, run := range reference.Runs {
		ideal[i].X = float64(run.Threads)
		ideal[i].Y = float64(run.Threads)
	}
	if err := addLine(p, "ideal", ideal, idealStyle); err != nil {
		return nil, err
	}

	var domain []float64
	for i, id := range variants {
		s := ds.Series(id)
		pts := make(plotter.XYs, len(s.Runs))
		for j, run := range s.Runs {
			pts[j].X = float64(run.Threads)
			pts[j].Y = run.Speedup
			domain = append(domain, float64(run.Threads))
		}
		label := fmt.Sprintf("%s%d", r.VariantLabel, id)
		if err := addLine(p, label, pts, styleFor(i)); err != nil {
			return nil, err
		}
	}

	if len(domain) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}
	ticks := unitTicks(floats.Min(domain), floats.Max(domain)+1)
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	lo, hi := ticks[0].Value, ticks[len(ticks)-1].Value
	p.X.Min, p.X.Max = min(p.X.Min, lo), max(p.X.Max, hi)
	p.Y.Min, p.Y.Max = min(p.Y.Min, lo), max(p.Y.Max, hi)

	return p, nil
}

func addLine(p *plot.Plot, label string, pts plotter.XYs, style lineStyle) error {
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("failed to build %s line: %w", label, err)
	}
	line.Color = style.color
	line.Width = vg.Points(1.5)
	points.Color = style.color
	points.Shape = style.shape
	points.Radius = vg.Points(3)

	p.Add(line, points)
	p.Legend.Add(label, line, points)
	return nil
}

// unitTicks returns labelled ticks every 1 from lo to hi inclusive.
func unitTicks(lo, hi float64) []plot.Tick {
	var ticks []plot.Tick
	for v := lo; v <= hi; v++ {
		ticks = append(ticks, plot.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}
	return ticks
}
