package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/cookfile-viewer/backend/internal/models"
)

// ErrNothingToDraw is returned when no series has a drawable point.
var ErrNothingToDraw = errors.New("no drawable samples")

// PNGRenderer draws frames as PNG images with go-chart.
type PNGRenderer struct {
	Width  int
	Height int
}

var _ Renderer = PNGRenderer{}

// Draw renders f as a PNG into w. Missing samples and samples outside the
// time window are skipped.
func (r PNGRenderer) Draw(w io.Writer, f models.Frame) error {
	series := make([]gochart.Series, 0, len(f.Series)+1)
	for _, s := range f.Series {
		if s.Hidden {
			continue
		}
		xs, ys := points(f.TimeLabels, s.Data, f.Viewport)
		if len(xs) == 0 {
			continue
		}
		if len(xs) == 1 {
			// a single point has no x-range; widen it by a second
			xs = append(xs, xs[0].Add(time.Second))
			ys = append(ys, ys[0])
		}
		series = append(series, gochart.TimeSeries{
			Name:    s.Label,
			XValues: xs,
			YValues: ys,
			Style:   seriesStyle(s.Style),
		})
	}
	if len(series) == 0 {
		return ErrNothingToDraw
	}
	if ann, ok := annotationSeries(f); ok {
		series = append(series, ann)
	}

	width, height := r.Width, r.Height
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 480
	}

	ch := gochart.Chart{
		Title:      f.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 24, Left: 16, Right: 12, Bottom: 48}},
		XAxis:      gochart.XAxis{ValueFormatter: gochart.TimeValueFormatter},
		YAxis: gochart.YAxis{
			Name:  "Temperature",
			Range: &gochart.ContinuousRange{Min: f.Viewport.YMin, Max: f.Viewport.YMax},
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}

func points(labels []models.TimeLabel, data []float64, view models.Viewport) ([]time.Time, []float64) {
	n := min(len(labels), len(data))
	xs := make([]time.Time, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		tl := labels[i]
		if !tl.Valid || math.IsNaN(data[i]) {
			continue
		}
		if !view.From.IsZero() && tl.At.Before(view.From) {
			continue
		}
		if !view.To.IsZero() && tl.At.After(view.To) {
			continue
		}
		xs = append(xs, tl.At)
		ys = append(ys, data[i])
	}
	return xs, ys
}

func color(c models.RGBA) drawing.Color {
	a := math.Round(math.Max(0, math.Min(1, c.A)) * 255)
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: uint8(a)}
}

func seriesStyle(s models.SeriesStyle) gochart.Style {
	st := gochart.Style{
		StrokeColor: color(s.Border),
		StrokeWidth: s.BorderWidth,
		DotColor:    color(s.Border),
		DotWidth:    s.PointRadius,
	}
	if len(s.Dash) > 0 {
		st.StrokeDashArray = append([]float64(nil), s.Dash...)
	}
	return st
}

// annotationSeries places a labeled marker for every annotation that names a
// point on the time axis. Annotations without one are ignored for drawing.
func annotationSeries(f models.Frame) (gochart.AnnotationSeries, bool) {
	var values []gochart.Value2
	for _, a := range f.Annotations {
		at, label, ok := annotationPoint(a)
		if !ok {
			continue
		}
		values = append(values, gochart.Value2{
			XValue: gochart.TimeToFloat64(at),
			YValue: f.Viewport.YMax,
			Label:  label,
		})
	}
	if len(values) == 0 {
		return gochart.AnnotationSeries{}, false
	}
	return gochart.AnnotationSeries{Annotations: values}, true
}

func annotationPoint(a models.Annotation) (time.Time, string, bool) {
	var raw any
	for _, key := range []string{"xMin", "value", "x"} {
		if v, ok := a.Fields[key]; ok {
			raw = v
			break
		}
	}
	tl := models.NewTimeLabel(raw)
	if !tl.Valid {
		return time.Time{}, "", false
	}

	label := a.Name
	if l, ok := a.Fields["label"].(map[string]any); ok {
		if content, ok := l["content"].(string); ok && content != "" {
			label = content
		}
	}
	return tl.At, label, true
}
