package gpio

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"

	"dhtsense/internal/dht"
)

// rpioPin drives a BCM pin through /dev/gpiomem.
type rpioPin struct {
	p rpio.Pin
}

func openRPIO(pin string) (*Line, error) {
	n, err := pinNumber(pin)
	if err != nil {
		return nil, err
	}
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("rpio open: %w", err)
	}
	p := rpio.Pin(n)
	p.Output()
	p.High()
	return &Line{
		Pin:   &rpioPin{p: p},
		Clock: SpinSleeper{},
		name:  fmt.Sprintf("rpio:GPIO%d", n),
		close: func() error {
			p.Input()
			p.PullOff()
			return rpio.Close()
		},
	}, nil
}

func (rp *rpioPin) SetDirection(d dht.Direction) error {
	switch d {
	case dht.Output:
		rp.p.Output()
	case dht.InputPullDown:
		rp.p.Input()
		rp.p.PullDown()
	default:
		return fmt.Errorf("rpio: unsupported direction %v", d)
	}
	return nil
}

func (rp *rpioPin) Write(l dht.Level) error {
	if l == dht.High {
		rp.p.High()
	} else {
		rp.p.Low()
	}
	return nil
}

func (rp *rpioPin) Read() (dht.Level, error) {
	if rp.p.Read() == rpio.High {
		return dht.High, nil
	}
	return dht.Low, nil
}
