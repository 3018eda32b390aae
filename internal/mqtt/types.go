package mqtt

import (
	"fmt"
	"time"

	"dhtsense/internal/dht"
)

// Telemetry is the JSON body published per successful reading.
type Telemetry struct {
	StationID   string    `json:"station_id"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature *float64  `json:"temperature_c,omitempty"`
	Humidity    *float64  `json:"humidity_pct,omitempty"`
	Sequence    *int      `json:"sequence,omitempty"`
}

// StationHealth is the retained sampler health state. LastSeen is the time
// of the last successful reading, nil if there has been none.
type StationHealth struct {
	StationID           string     `json:"station_id"`
	LastSeen            *time.Time `json:"last_seen,omitempty"`
	Healthy             bool       `json:"healthy"`
	ConsecutiveFailures int        `json:"consecutive_failures,omitempty"`
	LastError           string     `json:"last_error,omitempty"`
}

func NewTelemetry(stationID string, r dht.Reading, seq int, at time.Time) Telemetry {
	temperature := float64(r.Temperature)
	humidity := float64(r.Humidity)
	return Telemetry{
		StationID:   stationID,
		Timestamp:   at,
		Temperature: &temperature,
		Humidity:    &humidity,
		Sequence:    &seq,
	}
}

func telemetryTopic(stationID string) string {
	return fmt.Sprintf("stations/%s/telemetry", stationID)
}

func healthTopic(stationID string) string {
	return fmt.Sprintf("stations/%s/health", stationID)
}
