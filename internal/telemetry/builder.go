// Package telemetry turns a full_graph payload into chart series.
package telemetry

import (
	"math"
	"sync"

	"github.com/labstack/gommon/log"

	"github.com/cookfile-viewer/backend/internal/models"
	"github.com/cookfile-viewer/backend/internal/protocol"
)

// Builder maps telemetry payloads to chart models. It remembers the last
// label of every channel so a payload that omits a label keeps the one already
// shown.
type Builder struct {
	mu     sync.RWMutex
	labels map[models.Channel]string
	logger *log.Logger
}

// NewBuilder creates a builder seeded with the default channel labels.
func NewBuilder(logger *log.Logger) *Builder {
	labels := make(map[models.Channel]string, len(models.Channels))
	for _, ch := range models.Channels {
		labels[ch] = ch.DefaultLabel()
	}
	if logger == nil {
		logger = log.New("telemetry")
		logger.SetLevel(log.OFF)
	}
	return &Builder{labels: labels, logger: logger}
}

// Build converts p into a chart model with one series per channel. Channels
// with no samples still produce an empty series.
func (b *Builder) Build(p protocol.Payload) models.ChartModel {
	b.mu.Lock()
	defer b.mu.Unlock()

	rawTimes, _ := p.List("time_labels")
	times := make([]models.TimeLabel, len(rawTimes))
	for i, raw := range rawTimes {
		times[i] = models.NewTimeLabel(raw)
	}

	model := models.ChartModel{
		TimeLabels:  times,
		Series:      make(map[models.Channel]models.Series, len(models.Channels)),
		Annotations: models.AnnotationsFrom(p["annotations"]),
	}

	for _, ch := range models.Channels {
		if label, ok := p.String(ch.LabelField()); ok {
			b.labels[ch] = label
		}

		raw, _ := p.List(ch.DataField())
		data := make([]float64, len(raw))
		for i, v := range raw {
			if f, ok := protocol.Number(v); ok {
				data[i] = f
			} else {
				data[i] = math.NaN()
			}
		}
		if len(data) != 0 && len(data) != len(times) {
			b.logger.Warnf("[Telemetry] %s has %d samples for %d time labels", ch, len(data), len(times))
		}

		model.Series[ch] = models.Series{
			Channel: ch,
			Label:   b.labels[ch],
			Data:    data,
			Style:   StyleFor(ch),
		}
	}

	return model
}

// Labels returns the current label of every channel.
func (b *Builder) Labels() map[models.Channel]string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[models.Channel]string, len(b.labels))
	for ch, l := range b.labels {
		out[ch] = l
	}
	return out
}

// SetLabel records a label confirmed outside of a payload, such as a label edit.
func (b *Builder) SetLabel(ch models.Channel, label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.labels[ch] = label
}
