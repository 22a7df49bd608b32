package telemetry

import "github.com/cookfile-viewer/backend/internal/models"

var setpointDash = []float64{8, 4}

func rgba(r, g, b uint8, a float64) models.RGBA { return models.RGBA{R: r, G: g, B: b, A: a} }

// styles is the fixed visual style per channel. Temperatures are solid lines
// with a slight curve, set-points are straight dashed lines.
var styles = map[models.Channel]models.SeriesStyle{
	models.GrillTemp:      tempStyle(rgba(0, 0, 127, 1)),
	models.GrillSetpoint:  setpointStyle(rgba(0, 0, 255, 1)),
	models.Probe1Temp:     tempStyle(rgba(255, 0, 0, 1)),
	models.Probe1Setpoint: setpointStyle(rgba(127, 0, 0, 1)),
	models.Probe2Temp:     tempStyle(rgba(0, 127, 0, 1)),
	models.Probe2Setpoint: setpointStyle(rgba(0, 255, 0, 1)),
}

func tempStyle(c models.RGBA) models.SeriesStyle {
	bg := c
	bg.A = 0.4
	return models.SeriesStyle{
		Border:      c,
		Background:  bg,
		Tension:     0.1,
		PointShape:  models.PointLine,
		PointRadius: 1,
		BorderWidth: 2,
	}
}

func setpointStyle(c models.RGBA) models.SeriesStyle {
	s := tempStyle(c)
	s.Dash = setpointDash
	s.Tension = 0
	s.PointShape = models.PointDash
	return s
}

// StyleFor returns the fixed style of ch.
func StyleFor(ch models.Channel) models.SeriesStyle {
	s := styles[ch]
	if s.Dash != nil {
		s.Dash = append([]float64(nil), s.Dash...)
	}
	return s
}
