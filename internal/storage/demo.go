package storage

import (
	"math"
	"time"

	"github.com/cookfile-viewer/backend/internal/models"
)

// DemoSession generates an eight hour cook sampled every five minutes,
// starting at start. The probe stalls around 160 before finishing.
func DemoSession(filename string, start time.Time) models.CookSession {
	const samples = 97
	step := 5 * time.Minute

	times := make([]any, samples)
	data := make(map[models.Channel][]any, len(models.Channels))
	for _, ch := range models.Channels {
		data[ch] = make([]any, samples)
	}

	for i := 0; i < samples; i++ {
		t := start.Add(time.Duration(i) * step)
		times[i] = t.Format(models.CommentTimeLayout)

		h := float64(i) / 12
		grill := 250 - 180*math.Exp(-h*3) + 4*math.Sin(h*5)
		probe1 := 40 + 120*(1-math.Exp(-h/1.5))
		if h > 4 {
			probe1 += 45 * (1 - math.Exp(-(h-4)/1.2))
		}
		probe2 := 40 + 95*(1-math.Exp(-h/2))

		data[models.GrillTemp][i] = round1(grill)
		data[models.GrillSetpoint][i] = float64(250)
		data[models.Probe1Temp][i] = round1(probe1)
		data[models.Probe1Setpoint][i] = float64(203)
		data[models.Probe2Temp][i] = round1(probe2)
		data[models.Probe2Setpoint][i] = float64(145)
	}
	// probe 2 was unplugged for a while
	for i := 60; i < 66; i++ {
		data[models.Probe2Temp][i] = nil
	}

	return models.CookSession{
		Filename:   filename,
		CookfileID: "demo",
		Title:      "Demo cook",
		Labels: map[models.Channel]string{
			models.Probe1Temp:     "Brisket",
			models.Probe1Setpoint: "Brisket" + models.SetpointSuffix,
		},
		TimeLabels: times,
		Data:       data,
		Annotations: map[string]any{
			"stall": map[string]any{
				"type":  "line",
				"xMin":  times[48],
				"xMax":  times[48],
				"label": map[string]any{"content": "Stall"},
			},
			"wrap": map[string]any{
				"type":  "line",
				"xMin":  times[60],
				"xMax":  times[60],
				"label": map[string]any{"content": "Wrapped"},
			},
		},
		Comments: []models.Comment{
			{ID: "demo-1", DateTime: start.Add(20 * time.Minute).Format(models.CommentTimeLayout), Text: "Lit the fire", Assets: []string{"fire.jpg"}},
		},
		Assets: []models.MediaAsset{
			{ID: "1", Filename: "fire.jpg"},
			{ID: "2", Filename: "bark.jpg"},
			{ID: "3", Filename: "sliced.jpg"},
		},
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
