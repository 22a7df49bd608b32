package chart

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookfile-viewer/backend/internal/models"
	"github.com/cookfile-viewer/backend/internal/telemetry"
)

func testModel() models.ChartModel {
	b := telemetry.NewBuilder(nil)
	p := map[string]any{
		"result":      "OK",
		"time_labels": []any{"2024-05-01 10:00:00", "2024-05-01 10:05:00", "2024-05-01 10:10:00"},
		"GT1_data":    []any{float64(100), nil, float64(240)},
		"GSP1_data":   []any{float64(225), float64(225), float64(225)},
		"PT1_data":    []any{float64(40), float64(50), float64(60)},
		"annotations": []any{
			map[string]any{"name": "wrap", "xMin": "2024-05-01 10:05:00", "label": map[string]any{"content": "Wrapped"}},
			map[string]any{"name": "note", "nested": map[string]any{"a": float64(1)}},
		},
	}
	return b.Build(p)
}

func renderedController(t *testing.T) *Controller {
	t.Helper()
	c := NewController(PNGRenderer{Width: 640, Height: 320}, Limits{})
	require.NoError(t, c.Render(testModel()))
	return c
}

func TestController_RenderOnce(t *testing.T) {
	c := NewController(nil, Limits{})
	assert.False(t, c.Rendered())
	assert.ErrorIs(t, c.SetLabel(models.GrillTemp, "x"), ErrNotRendered)

	require.NoError(t, c.Render(testModel()))
	assert.True(t, c.Rendered())
	assert.ErrorIs(t, c.Render(testModel()), ErrAlreadyRendered)
}

func TestController_RenderCopiesModel(t *testing.T) {
	m := testModel()
	c := NewController(nil, Limits{})
	require.NoError(t, c.Render(m))

	m.Series[models.GrillTemp].Data[0] = 1
	s, ok := c.Series(models.GrillTemp)
	require.True(t, ok)
	assert.Equal(t, 100.0, s.Data[0])
}

func TestController_Labels(t *testing.T) {
	c := renderedController(t)

	require.NoError(t, c.ApplyProbeLabel(models.Probe1, "Flat"))
	assert.Equal(t, "Flat", c.Label(models.Probe1Temp))
	assert.Equal(t, "Flat Set Point", c.Label(models.Probe1Setpoint))

	// data is untouched by relabeling
	s, _ := c.Series(models.Probe1Temp)
	assert.Equal(t, []float64{40, 50, 60}, s.Data)

	require.NoError(t, c.SetLabel(models.GrillTemp, "Pit"))
	assert.Equal(t, "Pit", c.Frame().Series[0].Label)
	assert.Error(t, c.SetLabel(models.Channel(42), "x"))
}

func TestController_SetHidden(t *testing.T) {
	c := renderedController(t)
	assert.ErrorIs(t, NewController(nil, Limits{}).SetHidden(models.GrillTemp, true), ErrNotRendered)

	require.NoError(t, c.SetHidden(models.GrillTemp, true))
	s, _ := c.Series(models.GrillTemp)
	assert.True(t, s.Hidden)
	assert.Equal(t, 100.0, s.Data[0])
	assert.True(t, c.Frame().Series[0].Hidden)
	assert.Error(t, c.SetHidden(models.Channel(42), true))

	// hiding every drawable series leaves nothing for the renderer
	for _, ch := range models.Channels {
		require.NoError(t, c.SetHidden(ch, true))
	}
	var buf bytes.Buffer
	assert.ErrorIs(t, c.Draw(&buf), ErrNothingToDraw)

	require.NoError(t, c.SetHidden(models.GrillTemp, false))
	require.NoError(t, c.Draw(&buf))
}

func TestController_AnnotationToggle(t *testing.T) {
	c := renderedController(t)
	original := c.Annotations()
	require.Len(t, original, 2)

	c.SetAnnotationsVisible(false)
	assert.False(t, c.AnnotationsVisible())
	assert.Empty(t, c.Annotations())
	assert.Empty(t, c.Frame().Annotations)

	c.SetAnnotationsVisible(true)
	assert.Equal(t, original, c.Annotations())

	// mutating a returned set does not leak into the retained one
	original[0].Fields["xMin"] = "changed"
	assert.Equal(t, "2024-05-01 10:05:00", c.Annotations()[0].Fields["xMin"])
}

func TestController_ZoomAndPan(t *testing.T) {
	c := NewController(nil, Limits{YMin: -30, YMax: 600})
	require.NoError(t, c.Render(testModel()))

	def := c.Viewport()
	assert.Equal(t, 0.0, def.YMin)
	assert.InDelta(t, 252.0, def.YMax, 0.001)

	c.Zoom(2)
	v := c.Viewport()
	assert.InDelta(t, (def.YMax-def.YMin)/2, v.YMax-v.YMin, 0.001)

	// zooming far out stops at the limits
	c.Zoom(0.001)
	assert.Equal(t, models.Viewport{YMin: -30, YMax: 600}, c.Viewport())

	c.ResetZoom()
	c.Pan(1000)
	v = c.Viewport()
	assert.Equal(t, 600.0, v.YMax)
	assert.InDelta(t, def.YMax-def.YMin, v.YMax-v.YMin, 0.001)

	c.Pan(-5000)
	assert.Equal(t, -30.0, c.Viewport().YMin)

	// zooming in never collapses the window
	c.ResetZoom()
	c.Zoom(1e9)
	v = c.Viewport()
	assert.InDelta(t, minSpan, v.YMax-v.YMin, 0.001)

	c.Zoom(0)
	c.Zoom(math.NaN())
	assert.Equal(t, v, c.Viewport())

	c.ResetZoom()
	assert.Equal(t, def, c.Viewport())
}

func TestController_ZoomTime(t *testing.T) {
	c := renderedController(t)
	from := time.Date(2024, 5, 1, 10, 4, 0, 0, time.UTC)
	to := time.Date(2024, 5, 1, 10, 11, 0, 0, time.UTC)

	require.NoError(t, c.ZoomTime(from, to))
	assert.Equal(t, from, c.Viewport().From)
	assert.Error(t, c.ZoomTime(to, from))
}

func TestController_EmptyModel(t *testing.T) {
	c := NewController(nil, Limits{YMin: -30, YMax: 600})
	require.NoError(t, c.Render(telemetry.NewBuilder(nil).Build(map[string]any{})))
	assert.Equal(t, models.Viewport{YMin: 0, YMax: 600}, c.Viewport())
	assert.Len(t, c.Frame().Series, 6)
}

func TestController_Draw(t *testing.T) {
	c := renderedController(t)
	c.SetTitle("Brisket")

	var buf bytes.Buffer
	require.NoError(t, c.Draw(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")))

	assert.ErrorIs(t, NewController(PNGRenderer{}, Limits{}).Draw(&buf), ErrNotRendered)
}

func TestPNGRenderer_NothingToDraw(t *testing.T) {
	c := NewController(PNGRenderer{}, Limits{})
	require.NoError(t, c.Render(telemetry.NewBuilder(nil).Build(map[string]any{})))

	var buf bytes.Buffer
	assert.ErrorIs(t, c.Draw(&buf), ErrNothingToDraw)
}

func TestPoints(t *testing.T) {
	labels := []models.TimeLabel{
		models.NewTimeLabel(float64(0)),
		models.NewTimeLabel("garbage"),
		models.NewTimeLabel(float64(120)),
		models.NewTimeLabel(float64(180)),
	}
	data := []float64{1, 2, math.NaN(), 4}

	xs, ys := points(labels, data, models.Viewport{})
	assert.Equal(t, []float64{1, 4}, ys)
	assert.Len(t, xs, 2)

	_, ys = points(labels, data, models.Viewport{From: time.Unix(60, 0)})
	assert.Equal(t, []float64{4}, ys)
}
