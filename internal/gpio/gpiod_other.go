//go:build !linux

package gpio

import "errors"

func openGPIOD(chip, pin string) (*Line, error) {
	return nil, errors.New("gpiod backend is only available on linux")
}
