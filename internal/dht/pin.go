package dht

import "time"

// Level is the logic level of the data line.
type Level uint8

const (
	Low Level = iota
	High
)

func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

// Direction is the pin mode the sampler switches between.
type Direction uint8

const (
	Output Direction = iota
	InputPullDown
)

func (d Direction) String() string {
	switch d {
	case Output:
		return "output"
	case InputPullDown:
		return "input-pulldown"
	default:
		return "unknown"
	}
}

// Pin is the single data line the sensor is wired to.
// Write is only valid in Output mode, Read only in input modes.
type Pin interface {
	SetDirection(d Direction) error
	Write(l Level) error
	Read() (Level, error)
}

// Sleeper blocks the calling goroutine for d. Implementations must honour
// microsecond durations; a scheduler sleep is not precise enough for the
// polling cadence.
type Sleeper interface {
	Sleep(d time.Duration)
}
