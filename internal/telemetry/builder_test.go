package telemetry

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookfile-viewer/backend/internal/models"
	"github.com/cookfile-viewer/backend/internal/protocol"
)

func emptyPayload() protocol.Payload {
	p := protocol.OK(map[string]any{"time_labels": []any{}, "annotations": []any{}})
	for _, ch := range models.Channels {
		p[ch.DataField()] = []any{}
	}
	return p
}

func TestBuild_EveryChannel(t *testing.T) {
	for _, ch := range models.Channels {
		t.Run(ch.Key(), func(t *testing.T) {
			b := NewBuilder(nil)
			p := emptyPayload()
			p["time_labels"] = []any{float64(0), float64(60), float64(120)}
			p[ch.LabelField()] = "Label " + ch.Key()
			p[ch.DataField()] = []any{float64(1), float64(2), float64(3)}

			m := b.Build(p)
			s := m.Series[ch]
			assert.Equal(t, ch, s.Channel)
			assert.Equal(t, "Label "+ch.Key(), s.Label)
			assert.Len(t, s.Data, 3)
			assert.Equal(t, ch, m.Ordered()[ch.Index()].Channel)

			// a later payload without the label keeps it
			again := b.Build(emptyPayload())
			assert.Equal(t, "Label "+ch.Key(), again.Series[ch].Label)
		})
	}
}

func TestBuild_EndToEnd(t *testing.T) {
	b := NewBuilder(nil)
	p := emptyPayload()
	p["GT1_label"] = "Grill"
	p["time_labels"] = []any{float64(0), float64(60)}
	p["GT1_data"] = []any{float64(70), float64(75)}
	for _, ch := range models.Channels[1:] {
		p[ch.LabelField()] = ch.DefaultLabel()
	}

	m := b.Build(p)
	ordered := m.Ordered()
	require.Len(t, ordered, 6)
	assert.Equal(t, "Grill", ordered[0].Label)
	assert.Equal(t, []float64{70, 75}, ordered[0].Data)
	for _, s := range ordered[1:] {
		assert.Empty(t, s.Data)
		assert.Equal(t, s.Channel.DefaultLabel(), s.Label)
	}

	require.Len(t, m.TimeLabels, 2)
	assert.True(t, m.TimeLabels[1].Valid)
	assert.Equal(t, int64(60), m.TimeLabels[1].At.Unix())
}

func TestBuild_Gaps(t *testing.T) {
	b := NewBuilder(nil)
	p := emptyPayload()
	p["time_labels"] = []any{"2024-05-01 10:00:00", "2024-05-01 10:05:00", "2024-05-01 10:10:00"}
	p["PT2_data"] = []any{float64(1), nil, "n/a"}

	s := b.Build(p).Series[models.Probe2Temp]
	require.Len(t, s.Data, 3)
	assert.Equal(t, 1.0, s.Data[0])
	assert.True(t, math.IsNaN(s.Data[1]))
	assert.True(t, math.IsNaN(s.Data[2]))
}

func TestBuild_LengthMismatchPassesThrough(t *testing.T) {
	b := NewBuilder(nil)
	p := emptyPayload()
	p["time_labels"] = []any{float64(0), float64(60), float64(120)}
	p["GSP1_data"] = []any{float64(225)}

	assert.Len(t, b.Build(p).Series[models.GrillSetpoint].Data, 1)
}

func TestBuild_Annotations(t *testing.T) {
	b := NewBuilder(nil)
	p := emptyPayload()
	p["annotations"] = map[string]any{
		"wrap":  map[string]any{"xMin": float64(60)},
		"flip":  map[string]any{"xMin": float64(30)},
		"bogus": "not an object",
	}

	m := b.Build(p)
	require.Len(t, m.Annotations, 3)
	assert.Equal(t, "bogus", m.Annotations[0].Name)
	assert.Equal(t, "not an object", m.Annotations[0].Fields["value"])
	assert.Equal(t, "flip", m.Annotations[1].Name)
	assert.Equal(t, "wrap", m.Annotations[2].Name)
}

func TestBuilder_Labels(t *testing.T) {
	b := NewBuilder(nil)
	labels := b.Labels()
	assert.Equal(t, "Grill Temp", labels[models.GrillTemp])
	assert.Equal(t, "Probe 2 SetPoint", labels[models.Probe2Setpoint])

	b.SetLabel(models.Probe1Temp, "Flat")
	assert.Equal(t, "Flat", b.Labels()[models.Probe1Temp])

	// callers get a copy
	labels[models.GrillTemp] = "changed"
	assert.Equal(t, "Grill Temp", b.Labels()[models.GrillTemp])
}

func TestStyleFor(t *testing.T) {
	for _, ch := range models.Channels {
		s := StyleFor(ch)
		if ch.IsSetpoint() {
			assert.Equal(t, []float64{8, 4}, s.Dash, fmt.Sprint(ch))
			assert.Equal(t, models.PointDash, s.PointShape)
		} else {
			assert.Empty(t, s.Dash, fmt.Sprint(ch))
			assert.Equal(t, models.PointLine, s.PointShape)
		}
	}

	// styles are copies
	s := StyleFor(models.GrillSetpoint)
	s.Dash[0] = 99
	assert.Equal(t, 8.0, StyleFor(models.GrillSetpoint).Dash[0])
}
