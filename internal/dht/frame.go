package dht

import "fmt"

// FrameBits is the number of bits the sensor sends per reading.
const FrameBits = 40

// Bit is one received data bit, 0 or 1.
type Bit uint8

// Frame is the five bytes of a transmission in wire order.
type Frame struct {
	HumidityInt     uint8
	HumidityFrac    uint8
	TemperatureInt  uint8
	TemperatureFrac uint8
	Checksum        uint8
}

// Reading is what a valid frame reports. Fractional bytes only take part in
// the checksum.
type Reading struct {
	Temperature int
	Humidity    int
}

// NewFrame builds a frame with a correct checksum.
func NewFrame(humidityInt, humidityFrac, temperatureInt, temperatureFrac uint8) Frame {
	return Frame{
		HumidityInt:     humidityInt,
		HumidityFrac:    humidityFrac,
		TemperatureInt:  temperatureInt,
		TemperatureFrac: temperatureFrac,
		Checksum:        humidityInt + humidityFrac + temperatureInt + temperatureFrac,
	}
}

// BitsToByte packs bits most significant first.
func BitsToByte(bits []Bit) uint8 {
	var v uint8
	for _, b := range bits {
		v = v<<1 | uint8(b&1)
	}
	return v
}

// ByteToBits is the inverse of BitsToByte for 8 bits.
func ByteToBits(v uint8) []Bit {
	bits := make([]Bit, 8)
	for i := range bits {
		bits[i] = Bit(v >> (7 - i) & 1)
	}
	return bits
}

// ParseFrame splits 40 bits into the five frame bytes without validating.
func ParseFrame(bits []Bit) (Frame, error) {
	if len(bits) != FrameBits {
		return Frame{}, fmt.Errorf("%w: got %d", ErrFrameLength, len(bits))
	}
	return Frame{
		HumidityInt:     BitsToByte(bits[0:8]),
		HumidityFrac:    BitsToByte(bits[8:16]),
		TemperatureInt:  BitsToByte(bits[16:24]),
		TemperatureFrac: BitsToByte(bits[24:32]),
		Checksum:        BitsToByte(bits[32:40]),
	}, nil
}

// Sum is the modulo 256 sum of the four data bytes.
func (f Frame) Sum() uint8 {
	return f.HumidityInt + f.HumidityFrac + f.TemperatureInt + f.TemperatureFrac
}

func (f Frame) Valid() bool { return f.Checksum == f.Sum() }

// Verify returns a *ChecksumError when the checksum byte is wrong.
func (f Frame) Verify() error {
	if f.Valid() {
		return nil
	}
	return &ChecksumError{
		HumidityInt:     f.HumidityInt,
		HumidityFrac:    f.HumidityFrac,
		TemperatureInt:  f.TemperatureInt,
		TemperatureFrac: f.TemperatureFrac,
		Checksum:        f.Checksum,
	}
}

func (f Frame) Reading() Reading {
	return Reading{
		Temperature: int(f.TemperatureInt),
		Humidity:    int(f.HumidityInt),
	}
}

// Bytes returns the frame in transmission order.
func (f Frame) Bytes() [5]byte {
	return [5]byte{f.HumidityInt, f.HumidityFrac, f.TemperatureInt, f.TemperatureFrac, f.Checksum}
}

// Bits encodes the frame as the 40 bits the sensor would send.
func (f Frame) Bits() []Bit {
	bits := make([]Bit, 0, FrameBits)
	for _, b := range f.Bytes() {
		bits = append(bits, ByteToBits(b)...)
	}
	return bits
}

// String formats the frame as hex bytes, e.g. "33 00 16 00 49".
func (f Frame) String() string {
	b := f.Bytes()
	return fmt.Sprintf("% x", b[:])
}

// Decode packs and validates a 40 bit sample.
func Decode(bits []Bit) (Reading, error) {
	f, err := ParseFrame(bits)
	if err != nil {
		return Reading{}, err
	}
	if err := f.Verify(); err != nil {
		return Reading{}, err
	}
	return f.Reading(), nil
}
