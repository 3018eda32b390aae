package dht

import (
	"errors"
	"fmt"
)

var (
	ErrAckLow           = errors.New("sensor did not ack: low phase missing")
	ErrAckHigh          = errors.New("sensor did not ack: high phase missing")
	ErrStartGuard       = errors.New("bit start guard violated")
	ErrBitTimeout       = errors.New("bit read timeout: line stuck high")
	ErrEndGuard         = errors.New("end of transmission guard violated")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrFrameLength      = errors.New("frame must be 40 bits")
	ErrPinIO            = errors.New("pin i/o")
)

// SampleError reports where in the handshake a sample attempt failed.
// Bit is the index of the bit being received, or -1 outside the data phase.
type SampleError struct {
	State State
	Bit   int
	Err   error
}

func (e *SampleError) Error() string {
	if e.Bit >= 0 {
		return fmt.Sprintf("dht sample: %s (bit %d): %v", e.State, e.Bit, e.Err)
	}
	return fmt.Sprintf("dht sample: %s: %v", e.State, e.Err)
}

func (e *SampleError) Unwrap() error { return e.Err }

// ChecksumError carries the decoded bytes of a frame whose checksum byte does
// not match the sum of the four data bytes.
type ChecksumError struct {
	HumidityInt     uint8
	HumidityFrac    uint8
	TemperatureInt  uint8
	TemperatureFrac uint8
	Checksum        uint8
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: readings %d, %d, %d, %d (checksum %d, want %d)",
		e.HumidityInt, e.HumidityFrac, e.TemperatureInt, e.TemperatureFrac,
		e.Checksum, e.Expected())
}

// Expected is the checksum the four data bytes call for.
func (e *ChecksumError) Expected() uint8 {
	return e.HumidityInt + e.HumidityFrac + e.TemperatureInt + e.TemperatureFrac
}

func (e *ChecksumError) Is(target error) bool { return target == ErrChecksumMismatch }
