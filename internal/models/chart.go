package models

import (
	"maps"
	"slices"
	"sort"
	"time"
)

// RGBA is a display color with alpha in [0,1].
type RGBA struct {
	R, G, B uint8
	A       float64
}

// PointShape is the legend/point marker of a series.
type PointShape string

const (
	PointLine PointShape = "line"
	PointDash PointShape = "dash"
)

// SeriesStyle is the fixed visual style of a channel.
type SeriesStyle struct {
	Border      RGBA
	Background  RGBA
	Dash        []float64 // empty for solid lines
	Tension     float64
	PointShape  PointShape
	PointRadius float64
	BorderWidth float64
}

// Series is one renderable channel.
type Series struct {
	Channel Channel
	Label   string
	Data    []float64 // NaN marks a missing sample
	Style   SeriesStyle
	Hidden  bool
}

// Clone returns a deep copy of the series.
func (s Series) Clone() Series {
	s.Data = slices.Clone(s.Data)
	s.Style.Dash = slices.Clone(s.Style.Dash)
	return s
}

// TimeLabel is one entry of the shared time axis. Raw keeps the server value
// verbatim; At is set when the value could be read as a point in time.
type TimeLabel struct {
	Raw   any
	At    time.Time
	Valid bool
}

var timeLayouts = []string{
	time.RFC3339Nano,
	CommentTimeLayout,
	"2006-01-02T15:04:05",
}

// NewTimeLabel interprets a raw time-axis value. Strings are parsed with the
// common layouts, numbers are Unix seconds.
func NewTimeLabel(raw any) TimeLabel {
	tl := TimeLabel{Raw: raw}
	switch v := raw.(type) {
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				tl.At, tl.Valid = t, true
				break
			}
		}
	case float64:
		tl.At, tl.Valid = unixSeconds(v), true
	case int64:
		tl.At, tl.Valid = time.Unix(v, 0).UTC(), true
	case int:
		tl.At, tl.Valid = time.Unix(int64(v), 0).UTC(), true
	}
	return tl
}

func unixSeconds(v float64) time.Time {
	sec := int64(v)
	nsec := int64((v - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

// Annotation is an opaque chart marker. Fields is passed through to the
// charting collaborator untouched.
type Annotation struct {
	Name   string
	Fields map[string]any
}

// Clone returns a copy of the annotation with its top-level fields copied.
func (a Annotation) Clone() Annotation {
	a.Fields = maps.Clone(a.Fields)
	return a
}

// CloneAnnotations copies a list of annotations. A nil list stays nil.
func CloneAnnotations(list []Annotation) []Annotation {
	if list == nil {
		return nil
	}
	out := make([]Annotation, len(list))
	for i, a := range list {
		out[i] = a.Clone()
	}
	return out
}

// AnnotationsFrom converts the wire shape of an annotation set. Chart
// annotation sets arrive as either a list or an object keyed by name; object
// keys are sorted so the resulting order is stable. Items that are not
// objects are kept verbatim under a "value" field so nothing from the server
// is lost.
func AnnotationsFrom(raw any) []Annotation {
	switch v := raw.(type) {
	case []any:
		out := make([]Annotation, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				out = append(out, Annotation{Fields: map[string]any{"value": item}})
				continue
			}
			name, _ := m["name"].(string)
			out = append(out, Annotation{Name: name, Fields: m})
		}
		return out
	case map[string]any:
		names := make([]string, 0, len(v))
		for k := range v {
			names = append(names, k)
		}
		sort.Strings(names)
		out := make([]Annotation, 0, len(names))
		for _, name := range names {
			m, ok := v[name].(map[string]any)
			if !ok {
				m = map[string]any{"value": v[name]}
			}
			out = append(out, Annotation{Name: name, Fields: m})
		}
		return out
	}
	return []Annotation{}
}

// ChartModel is the full renderable state for one session chart.
type ChartModel struct {
	TimeLabels  []TimeLabel
	Series      map[Channel]Series
	Annotations []Annotation
}

// Ordered returns the series in fixed channel order.
func (m ChartModel) Ordered() []Series {
	out := make([]Series, 0, len(Channels))
	for _, ch := range Channels {
		if s, ok := m.Series[ch]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Clone returns a deep copy of the model.
func (m ChartModel) Clone() ChartModel {
	out := ChartModel{
		TimeLabels:  slices.Clone(m.TimeLabels),
		Series:      make(map[Channel]Series, len(m.Series)),
		Annotations: CloneAnnotations(m.Annotations),
	}
	for ch, s := range m.Series {
		out.Series[ch] = s.Clone()
	}
	return out
}

// Viewport is the visible window of the chart. Zero From/To means the full
// time range.
type Viewport struct {
	YMin float64
	YMax float64
	From time.Time
	To   time.Time
}

// Frame is a snapshot of what the chart currently shows.
type Frame struct {
	Title       string
	TimeLabels  []TimeLabel
	Series      []Series
	Annotations []Annotation
	Viewport    Viewport
}
