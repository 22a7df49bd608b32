// Package chart owns the single chart of a session page: it applies the
// built model once, edits series labels in place, toggles annotations, and
// keeps the pan/zoom window inside fixed bounds.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/cookfile-viewer/backend/internal/models"
)

var (
	// ErrAlreadyRendered is returned when Render is called a second time.
	ErrAlreadyRendered = errors.New("chart already rendered")
	// ErrNotRendered is returned by operations that need a rendered chart.
	ErrNotRendered = errors.New("chart not rendered")
)

// Renderer is the charting collaborator that draws a frame.
type Renderer interface {
	Draw(w io.Writer, f models.Frame) error
}

// Limits is the value floor and ceiling the view may never leave.
type Limits struct {
	YMin float64
	YMax float64
}

// DefaultLimits is a plausible range for smoker temperatures.
var DefaultLimits = Limits{YMin: -30, YMax: 600}

// minSpan is the narrowest Y window zooming can reach.
const minSpan = 5.0

// Controller holds the rendered chart state. All methods are safe for
// concurrent use.
type Controller struct {
	mu       sync.RWMutex
	renderer Renderer
	limits   Limits

	rendered    bool
	title       string
	timeLabels  []models.TimeLabel
	series      map[models.Channel]*models.Series
	retained    []models.Annotation
	showAnnots  bool
	view        models.Viewport
	defaultView models.Viewport
}

// NewController creates a controller drawing through r. A zero Limits uses DefaultLimits.
func NewController(r Renderer, limits Limits) *Controller {
	if limits.YMax <= limits.YMin {
		limits = DefaultLimits
	}
	return &Controller{
		renderer:   r,
		limits:     limits,
		series:     make(map[models.Channel]*models.Series),
		showAnnots: true,
	}
}

// Render applies the full model. It may be called once per controller.
func (c *Controller) Render(m models.ChartModel) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rendered {
		return ErrAlreadyRendered
	}
	clone := m.Clone()
	c.timeLabels = clone.TimeLabels
	for ch, s := range clone.Series {
		s := s
		c.series[ch] = &s
	}
	c.retained = clone.Annotations
	c.defaultView = c.autoView()
	c.view = c.defaultView
	c.rendered = true
	return nil
}

// Rendered reports whether Render has run.
func (c *Controller) Rendered() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rendered
}

// SetTitle sets the chart title shown by the renderer.
func (c *Controller) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.title = title
}

// SetLabel changes the display label of one series without touching its data.
func (c *Controller) SetLabel(ch models.Channel, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.rendered {
		return ErrNotRendered
	}
	s, ok := c.series[ch]
	if !ok {
		return fmt.Errorf("unknown channel %v", ch)
	}
	s.Label = text
	return nil
}

// ApplyProbeLabel labels a probe's temperature series L and its set-point
// series L + " Set Point".
func (c *Controller) ApplyProbeLabel(p models.Probe, text string) error {
	temp, setpoint := p.Channels()
	if err := c.SetLabel(temp, text); err != nil {
		return err
	}
	return c.SetLabel(setpoint, text+models.SetpointSuffix)
}

// Label returns the current label of ch.
func (c *Controller) Label(ch models.Channel) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.series[ch]; ok {
		return s.Label
	}
	return ""
}

// SetHidden hides or shows the series of ch, like a legend click. Its data
// and label are kept.
func (c *Controller) SetHidden(ch models.Channel, hidden bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.rendered {
		return ErrNotRendered
	}
	s, ok := c.series[ch]
	if !ok {
		return fmt.Errorf("unknown channel %v", ch)
	}
	s.Hidden = hidden
	return nil
}

// Series returns a copy of the series of ch.
func (c *Controller) Series(ch models.Channel) (models.Series, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.series[ch]
	if !ok {
		return models.Series{}, false
	}
	return s.Clone(), true
}

// SetAnnotationsVisible shows or hides the annotation set. Hiding empties the
// active set but keeps the retained list, so showing restores it unchanged.
func (c *Controller) SetAnnotationsVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showAnnots = visible
}

// AnnotationsVisible reports the toggle state.
func (c *Controller) AnnotationsVisible() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.showAnnots
}

// Annotations returns the active annotation set.
func (c *Controller) Annotations() []models.Annotation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeAnnotations()
}

func (c *Controller) activeAnnotations() []models.Annotation {
	if !c.showAnnots {
		return []models.Annotation{}
	}
	return models.CloneAnnotations(c.retained)
}

// Viewport returns the current view window.
func (c *Controller) Viewport() models.Viewport {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

// ResetZoom restores the default view.
func (c *Controller) ResetZoom() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = c.defaultView
}

// Zoom scales the Y window around its center. Factors above 1 zoom in. The
// window never leaves the configured limits.
func (c *Controller) Zoom(factor float64) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	center := (c.view.YMin + c.view.YMax) / 2
	half := math.Max((c.view.YMax-c.view.YMin)/2/factor, minSpan/2)
	c.view.YMin = math.Max(center-half, c.limits.YMin)
	c.view.YMax = math.Min(center+half, c.limits.YMax)
}

// Pan shifts the Y window by dy, stopping at the limits.
func (c *Controller) Pan(dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view.YMin+dy < c.limits.YMin {
		dy = c.limits.YMin - c.view.YMin
	}
	if c.view.YMax+dy > c.limits.YMax {
		dy = c.limits.YMax - c.view.YMax
	}
	c.view.YMin += dy
	c.view.YMax += dy
}

// ZoomTime narrows the time window to [from, to].
func (c *Controller) ZoomTime(from, to time.Time) error {
	if !to.After(from) {
		return fmt.Errorf("invalid time window %s..%s", from, to)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.From, c.view.To = from, to
	return nil
}

// Frame returns a deep copy of what is currently drawn.
func (c *Controller) Frame() models.Frame {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f := models.Frame{
		Title:       c.title,
		TimeLabels:  append([]models.TimeLabel(nil), c.timeLabels...),
		Series:      make([]models.Series, 0, len(c.series)),
		Annotations: c.activeAnnotations(),
		Viewport:    c.view,
	}
	for _, ch := range models.Channels {
		if s, ok := c.series[ch]; ok {
			f.Series = append(f.Series, s.Clone())
		}
	}
	return f
}

// Draw renders the current frame to w.
func (c *Controller) Draw(w io.Writer) error {
	if !c.Rendered() {
		return ErrNotRendered
	}
	if c.renderer == nil {
		return errors.New("no renderer configured")
	}
	return c.renderer.Draw(w, c.Frame())
}

// autoView is the default window: zero-based like the page chart, topped at
// the largest sample with some headroom, inside the limits.
func (c *Controller) autoView() models.Viewport {
	lo, hi := 0.0, math.Inf(-1)
	for _, s := range c.series {
		for _, v := range s.Data {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(hi, -1) || hi <= lo {
		return models.Viewport{YMin: math.Max(0, c.limits.YMin), YMax: c.limits.YMax}
	}
	hi += (hi - lo) * 0.05
	return models.Viewport{
		YMin: math.Max(lo, c.limits.YMin),
		YMax: math.Min(hi, c.limits.YMax),
	}
}
