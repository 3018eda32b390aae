package dht

import "time"

// Pulse is a run of identical levels in a raw trace.
type Pulse struct {
	Level    Level
	Duration time.Duration
}

// Pulses collapses a trace sampled every interval into runs.
func Pulses(levels []Level, interval time.Duration) []Pulse {
	var out []Pulse
	for _, l := range levels {
		if n := len(out); n > 0 && out[n-1].Level == l {
			out[n-1].Duration += interval
			continue
		}
		out = append(out, Pulse{Level: l, Duration: interval})
	}
	return out
}
