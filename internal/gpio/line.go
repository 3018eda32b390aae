// Package gpio opens the DHT data line through one of several GPIO backends
// and hands the sampler a pin and a clock that belong together.
package gpio

import (
	"fmt"
	"strconv"
	"strings"

	"dhtsense/internal/config"
	"dhtsense/internal/dht"
	"dhtsense/internal/gpio/sim"
)

// Line is an acquired data line. It must be closed to release the pin.
type Line struct {
	Pin   dht.Pin
	Clock dht.Sleeper
	name  string
	close func() error
}

func (l *Line) String() string { return l.name }

// Close releases the pin. Safe to call more than once.
func (l *Line) Close() error {
	if l.close == nil {
		return nil
	}
	fn := l.close
	l.close = nil
	return fn()
}

// Open acquires the configured data line.
func Open(cfg config.Config) (*Line, error) {
	switch cfg.GPIOBackend {
	case config.BackendPeriph:
		return openPeriph(cfg.DHTPin)
	case config.BackendGPIOD:
		return openGPIOD(cfg.GPIOChip, cfg.DHTPin)
	case config.BackendRPIO:
		return openRPIO(cfg.DHTPin)
	case config.BackendSim:
		return OpenSim(sim.New(dht.NewFrame(cfg.SimHumidity, 0, cfg.SimTemperature, 0))), nil
	default:
		return nil, fmt.Errorf("unknown gpio backend %q", cfg.GPIOBackend)
	}
}

// OpenSim wraps a simulated sensor as a line. The sensor is its own clock.
func OpenSim(s *sim.Sensor) *Line {
	return &Line{Pin: s, Clock: s, name: "sim", close: s.Close}
}

// pinNumber accepts "4", "GPIO4" or "gpio4".
func pinNumber(s string) (int, error) {
	t := strings.TrimSpace(s)
	if len(t) > 4 && strings.EqualFold(t[:4], "gpio") {
		t = t[4:]
	}
	n, err := strconv.Atoi(t)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid pin %q: want a line number or GPIO<n>", s)
	}
	return n, nil
}
