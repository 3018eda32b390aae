package gpio

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"dhtsense/internal/dht"
)

type periphPin struct {
	p gpio.PinIO
}

func openPeriph(name string) (*Line, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("periph: pin %q not found", name)
	}
	// idle high so the first sync pulse starts from a released line
	if err := p.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("periph: pin %s out high: %w", name, err)
	}
	return &Line{
		Pin:   &periphPin{p: p},
		Clock: SpinSleeper{},
		name:  "periph:" + p.Name(),
		close: p.Halt,
	}, nil
}

func (pp *periphPin) SetDirection(d dht.Direction) error {
	switch d {
	case dht.Output:
		return pp.p.Out(gpio.High)
	case dht.InputPullDown:
		return pp.p.In(gpio.PullDown, gpio.NoEdge)
	default:
		return fmt.Errorf("periph: unsupported direction %v", d)
	}
}

func (pp *periphPin) Write(l dht.Level) error {
	return pp.p.Out(l == dht.High)
}

func (pp *periphPin) Read() (dht.Level, error) {
	if pp.p.Read() == gpio.High {
		return dht.High, nil
	}
	return dht.Low, nil
}
