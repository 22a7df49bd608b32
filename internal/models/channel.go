// Package models contains domain types for the cook session viewer.
package models

import "fmt"

// Channel is one of the six fixed telemetry roles of a cook session.
type Channel int

const (
	GrillTemp Channel = iota
	GrillSetpoint
	Probe1Temp
	Probe1Setpoint
	Probe2Temp
	Probe2Setpoint
)

// Channels lists every channel in series order.
var Channels = []Channel{
	GrillTemp,
	GrillSetpoint,
	Probe1Temp,
	Probe1Setpoint,
	Probe2Temp,
	Probe2Setpoint,
}

var channelKeys = map[Channel]string{
	GrillTemp:      "GT1",
	GrillSetpoint:  "GSP1",
	Probe1Temp:     "PT1",
	Probe1Setpoint: "PSP1",
	Probe2Temp:     "PT2",
	Probe2Setpoint: "PSP2",
}

var channelDefaults = map[Channel]string{
	GrillTemp:      "Grill Temp",
	GrillSetpoint:  "Grill SetPoint",
	Probe1Temp:     "Probe 1 Temp",
	Probe1Setpoint: "Probe 1 SetPoint",
	Probe2Temp:     "Probe 2 Temp",
	Probe2Setpoint: "Probe 2 SetPoint",
}

// Index returns the fixed series position of the channel.
func (c Channel) Index() int { return int(c) }

// Valid reports whether c is one of the six known channels.
func (c Channel) Valid() bool { return c >= GrillTemp && c <= Probe2Setpoint }

// Key returns the wire prefix used by the read endpoint (e.g. "GT1").
func (c Channel) Key() string { return channelKeys[c] }

// LabelField is the payload field carrying this channel's label.
func (c Channel) LabelField() string { return c.Key() + "_label" }

// DataField is the payload field carrying this channel's samples.
func (c Channel) DataField() string { return c.Key() + "_data" }

// DefaultLabel is the label shown before the server supplies one.
func (c Channel) DefaultLabel() string { return channelDefaults[c] }

// IsSetpoint reports whether the channel carries a set-point rather than a measured temperature.
func (c Channel) IsSetpoint() bool { return c%2 == 1 }

func (c Channel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return c.Key()
}

// ChannelByKey resolves a wire prefix back to its channel.
func ChannelByKey(key string) (Channel, bool) {
	for ch, k := range channelKeys {
		if k == key {
			return ch, true
		}
	}
	return 0, false
}

// Probe identifies a user-editable label slot. Each probe owns a temperature
// channel and its set-point channel.
type Probe string

const (
	ProbeGrill Probe = "grill1"
	Probe1     Probe = "probe1"
	Probe2     Probe = "probe2"
)

// Probes lists the editable label slots in display order.
var Probes = []Probe{ProbeGrill, Probe1, Probe2}

// SetpointSuffix is appended to a probe label to name its set-point series.
const SetpointSuffix = " Set Point"

// Valid reports whether p is a known probe.
func (p Probe) Valid() bool {
	switch p {
	case ProbeGrill, Probe1, Probe2:
		return true
	}
	return false
}

// LabelField is the mutate-endpoint field that carries this probe's label.
func (p Probe) LabelField() string { return string(p) + "_label" }

// Channels returns the (temperature, set-point) channel pair of the probe.
func (p Probe) Channels() (temp, setpoint Channel) {
	switch p {
	case Probe1:
		return Probe1Temp, Probe1Setpoint
	case Probe2:
		return Probe2Temp, Probe2Setpoint
	default:
		return GrillTemp, GrillSetpoint
	}
}

// ParseProbe parses a probe name.
func ParseProbe(s string) (Probe, error) {
	p := Probe(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown probe %q", s)
	}
	return p, nil
}
