// Package chart renders aggregated month series into PNG images.
package chart

import (
	"bytes"
	"fmt"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"clientreport/internal/aggregate"
)

// Kind selects the chart type.
type Kind string

const (
	Bar  Kind = "bar"
	Line Kind = "line"
)

// Canvas proportions: 6x4 inches at 100 DPI.
const (
	DefaultWidth  = 600
	DefaultHeight = 400
	labelRotation = 45.0
)

// Options describes one chart.
type Options struct {
	Title  string
	XLabel string
	YLabel string
	Kind   Kind
}

// Renderer turns a series into an embeddable image buffer.
// A nil buffer with a nil error means there was nothing to draw.
type Renderer interface {
	Render(series aggregate.Series, opts Options) ([]byte, error)
}

// PNGRenderer draws single-series bar and line charts.
type PNGRenderer struct {
	Width  int
	Height int
}

// NewPNGRenderer returns a renderer with the default canvas size.
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{Width: DefaultWidth, Height: DefaultHeight}
}

// Render implements Renderer.
func (r *PNGRenderer) Render(series aggregate.Series, opts Options) ([]byte, error) {
	if series.Empty() {
		return nil, nil
	}

	var buf bytes.Buffer
	var err error
	switch opts.Kind {
	case Line:
		err = r.lineChart(series, opts).Render(gochart.PNG, &buf)
	case Bar, "":
		err = r.barChart(series, opts).Render(gochart.PNG, &buf)
	default:
		return nil, fmt.Errorf("unsupported chart kind %q", opts.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("render %q: %w", opts.Title, err)
	}
	return buf.Bytes(), nil
}

func (r *PNGRenderer) barChart(series aggregate.Series, opts Options) gochart.BarChart {
	bars := make([]gochart.Value, len(series))
	for i, p := range series {
		bars[i] = gochart.Value{Label: p.Month.String(), Value: p.Value.InexactFloat64()}
	}

	slot := (r.Width - 120) / len(series)
	barWidth := max(slot*6/10, 2)
	spacing := max(slot-barWidth, 1)

	return gochart.BarChart{
		Title:      opts.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 40, Right: 20, Bottom: 30}},
		XAxis:      gochart.Style{TextRotationDegrees: labelRotation},
		YAxis: gochart.YAxis{
			Name:  opts.YLabel,
			Range: valueRange(series.Floats()),
		},
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Bars:       bars,
		Elements:   []gochart.Renderable{r.axisLabels(opts.XLabel, opts.YLabel)},
	}
}

func (r *PNGRenderer) lineChart(series aggregate.Series, opts Options) gochart.Chart {
	// go-chart derives the x range from explicit ticks. The unlabeled end
	// ticks keep it non-zero for a single month.
	n := float64(len(series))
	xs := make([]float64, len(series))
	ticks := make([]gochart.Tick, 0, len(series)+2)
	ticks = append(ticks, gochart.Tick{Value: -0.5})
	for i, label := range series.Labels() {
		xs[i] = float64(i)
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: label})
	}
	ticks = append(ticks, gochart.Tick{Value: n - 0.5})

	return gochart.Chart{
		Title:      opts.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 10}},
		XAxis: gochart.XAxis{
			Name:  opts.XLabel,
			Style: gochart.Style{TextRotationDegrees: labelRotation},
			Range: &gochart.ContinuousRange{Min: -0.5, Max: n - 0.5},
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{
			Name:  opts.YLabel,
			Range: valueRange(series.Floats()),
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    opts.Title,
				Style:   gochart.Style{StrokeWidth: 2, DotWidth: 4},
				XValues: xs,
				YValues: series.Floats(),
			},
		},
	}
}

// axisLabels draws the axis titles a bar chart does not render by itself.
func (r *PNGRenderer) axisLabels(xLabel, yLabel string) gochart.Renderable {
	return func(cr gochart.Renderer, canvas gochart.Box, defaults gochart.Style) {
		font, err := gochart.GetDefaultFont()
		if err != nil {
			return
		}
		cr.SetFont(font)
		cr.SetFontSize(10)
		cr.SetFontColor(drawing.ColorBlack)

		if xLabel != "" {
			tb := cr.MeasureText(xLabel)
			cr.Text(xLabel, (r.Width-tb.Width())/2, r.Height-8)
		}
		if yLabel != "" {
			tb := cr.MeasureText(yLabel)
			cr.SetTextRotation(gochart.DegreesToRadians(270))
			cr.Text(yLabel, 16, (r.Height+tb.Width())/2)
			cr.ClearTextRotation()
		}
	}
}

// valueRange pins the y axis to include zero and keeps it non-degenerate.
func valueRange(values []float64) *gochart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi <= lo {
		hi = lo + 1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi + (hi-lo)*0.1}
}
