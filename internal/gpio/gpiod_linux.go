//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/gpiod"

	"dhtsense/internal/dht"
)

// gpiodPin uses the kernel GPIO character device.
type gpiodPin struct {
	line *gpiod.Line
}

func openGPIOD(chip, pin string) (*Line, error) {
	offset, err := pinNumber(pin)
	if err != nil {
		return nil, err
	}
	line, err := gpiod.RequestLine(chip, offset, gpiod.AsOutput(1), gpiod.WithConsumer("dhtsense"))
	if err != nil {
		return nil, fmt.Errorf("gpiod request %s line %d: %w", chip, offset, err)
	}
	return &Line{
		Pin:   &gpiodPin{line: line},
		Clock: SpinSleeper{},
		name:  fmt.Sprintf("gpiod:%s:%d", chip, offset),
		close: line.Close,
	}, nil
}

func (gp *gpiodPin) SetDirection(d dht.Direction) error {
	switch d {
	case dht.Output:
		return gp.line.Reconfigure(gpiod.AsOutput(1))
	case dht.InputPullDown:
		return gp.line.Reconfigure(gpiod.AsInput, gpiod.WithPullDown)
	default:
		return fmt.Errorf("gpiod: unsupported direction %v", d)
	}
}

func (gp *gpiodPin) Write(l dht.Level) error {
	return gp.line.SetValue(int(l))
}

func (gp *gpiodPin) Read() (dht.Level, error) {
	v, err := gp.line.Value()
	if err != nil {
		return dht.Low, err
	}
	if v != 0 {
		return dht.High, nil
	}
	return dht.Low, nil
}
