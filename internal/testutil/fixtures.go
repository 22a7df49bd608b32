package testutil

import (
	"github.com/cookfile-viewer/backend/internal/models"
)

// Fixture identifiers.
const (
	FixtureFilename   = "cook-2024-05-01.json"
	FixtureCookfileID = "42"
	FixtureCommentA   = "c-1"
	FixtureCommentB   = "c-2"
)

// FixtureSession returns a small session: four samples with one gap in the
// grill temperature, one annotation, two comments and three assets. Comment
// A has a.jpg and b.jpg attached; comment B has none.
func FixtureSession() models.CookSession {
	return models.CookSession{
		Filename:   FixtureFilename,
		CookfileID: FixtureCookfileID,
		Title:      "Brisket",
		Labels: map[models.Channel]string{
			models.Probe1Temp:     "Flat",
			models.Probe1Setpoint: "Flat Set Point",
		},
		TimeLabels: []any{
			"2024-05-01 10:00:00",
			"2024-05-01 10:05:00",
			"2024-05-01 10:10:00",
			"2024-05-01 10:15:00",
		},
		Data: map[models.Channel][]any{
			models.GrillTemp:      {float64(225.5), nil, float64(230), float64(228)},
			models.GrillSetpoint:  {float64(225), float64(225), float64(225), float64(225)},
			models.Probe1Temp:     {float64(40), float64(52), float64(61), float64(70)},
			models.Probe1Setpoint: {float64(203), float64(203), float64(203), float64(203)},
		},
		Annotations: []any{
			map[string]any{
				"type":  "line",
				"xMin":  "2024-05-01 10:10:00",
				"xMax":  "2024-05-01 10:10:00",
				"label": map[string]any{"content": "Wrapped"},
			},
		},
		Comments: []models.Comment{
			{ID: FixtureCommentA, DateTime: "2024-05-01 10:06:00", Text: "Fire is steady", Assets: []string{"a.jpg", "b.jpg"}},
			{ID: FixtureCommentB, DateTime: "2024-05-01 10:11:00", Text: "Wrapped in paper"},
		},
		Assets: []models.MediaAsset{
			{ID: "1", Filename: "a.jpg"},
			{ID: "2", Filename: "b.jpg"},
			{ID: "3", Filename: "c.jpg"},
		},
	}
}
