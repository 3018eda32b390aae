// Package sim is a simulated DHT sensor on a virtual clock. It implements the
// pin and sleeper the sampler needs, so the whole handshake runs without
// hardware and without real time passing.
package sim

import (
	"errors"
	"time"

	"dhtsense/internal/dht"
)

// Fault makes the simulated sensor misbehave in one specific way.
type Fault int

const (
	NoFault Fault = iota
	// Silent never answers the sync pulse.
	Silent
	// NoAckLow holds the line high instead of the ack low phase.
	NoAckLow
	// NoAckHigh holds the line low instead of the ack high phase.
	NoAckHigh
	// ShortGuard cuts bit FaultBit's start guard to 20us.
	ShortGuard
	// StuckHigh never ends bit FaultBit's high pulse.
	StuckHigh
	// NoEndGuard cuts the final low guard to 20us before the line goes high.
	NoEndGuard
)

// Timings the simulated sensor answers with. They are multiples of the
// sampler's poll interval so polls land on segment boundaries.
const (
	AckPhase        = 90 * time.Microsecond
	GuardPhase      = 60 * time.Microsecond
	ShortGuardPhase = 20 * time.Microsecond
	ZeroPulse       = 20 * time.Microsecond
	OnePulse        = 70 * time.Microsecond

	minSyncLow  = 18 * time.Millisecond
	minSyncHigh = 20 * time.Microsecond
	maxSyncHigh = 40 * time.Microsecond
)

var (
	ErrClosed    = errors.New("sim: pin closed")
	ErrNotOutput = errors.New("sim: write on input pin")
	ErrNotInput  = errors.New("sim: read on output pin")
)

type segment struct {
	level dht.Level
	dur   time.Duration
}

// Sensor answers a valid sync pulse by transmitting Frame.
type Sensor struct {
	Frame     dht.Frame
	ZeroPulse time.Duration
	OnePulse  time.Duration
	Fault     Fault
	FaultBit  int

	now      time.Duration
	dir      dht.Direction
	out      dht.Level
	lowAt    time.Duration
	lowHeld  time.Duration
	highAt   time.Duration
	start    time.Duration
	wave     []segment
	syncs    int
	answered int
	closed   bool
}

func New(f dht.Frame) *Sensor {
	return &Sensor{
		Frame:     f,
		ZeroPulse: ZeroPulse,
		OnePulse:  OnePulse,
	}
}

// Now is the virtual time elapsed since the sensor was created.
func (s *Sensor) Now() time.Duration { return s.now }

// Answered is how many sync pulses the sensor has responded to.
func (s *Sensor) Answered() int { return s.answered }

// Syncs is how many times the host released the line after driving it.
func (s *Sensor) Syncs() int { return s.syncs }

func (s *Sensor) Sleep(d time.Duration) {
	if d > 0 {
		s.now += d
	}
}

func (s *Sensor) SetDirection(d dht.Direction) error {
	if s.closed {
		return ErrClosed
	}
	switch d {
	case dht.Output:
		// line idles high until the host pulls it down
		s.wave = nil
		s.out = dht.High
	case dht.InputPullDown:
		if s.dir == dht.Output {
			s.release()
		}
	}
	s.dir = d
	return nil
}

func (s *Sensor) Write(l dht.Level) error {
	if s.closed {
		return ErrClosed
	}
	if s.dir != dht.Output {
		return ErrNotOutput
	}
	switch {
	case l == dht.Low && s.out != dht.Low:
		s.lowAt = s.now
	case l == dht.High && s.out == dht.Low:
		s.lowHeld = s.now - s.lowAt
		s.highAt = s.now
	}
	s.out = l
	return nil
}

func (s *Sensor) Read() (dht.Level, error) {
	if s.closed {
		return dht.Low, ErrClosed
	}
	if s.dir != dht.InputPullDown {
		return dht.Low, ErrNotInput
	}
	t := s.now - s.start
	for _, seg := range s.wave {
		if t < seg.dur {
			return seg.level, nil
		}
		t -= seg.dur
	}
	// released line, pulled down
	return dht.Low, nil
}

func (s *Sensor) Close() error {
	s.closed = true
	return nil
}

// release is the host switching to input after the sync pulse. The sensor
// only answers a pulse with a long enough low and an in-range high.
func (s *Sensor) release() {
	s.syncs++
	if s.out != dht.High {
		return
	}
	high := s.now - s.highAt
	if s.lowHeld < minSyncLow || high < minSyncHigh || high > maxSyncHigh {
		return
	}
	if s.Fault == Silent {
		return
	}
	s.answered++
	s.start = s.now
	s.wave = s.waveform()
}

func (s *Sensor) waveform() []segment {
	w := make([]segment, 0, 2+2*dht.FrameBits+1)

	if s.Fault == NoAckLow {
		w = append(w, segment{dht.High, AckPhase})
	} else {
		w = append(w, segment{dht.Low, AckPhase})
	}
	if s.Fault == NoAckHigh {
		w = append(w, segment{dht.Low, AckPhase})
	} else {
		w = append(w, segment{dht.High, AckPhase})
	}

	for i, b := range s.Frame.Bits() {
		guard := GuardPhase
		if s.Fault == ShortGuard && i == s.FaultBit {
			guard = ShortGuardPhase
		}
		w = append(w, segment{dht.Low, guard})

		if s.Fault == StuckHigh && i == s.FaultBit {
			return append(w, segment{dht.High, time.Hour})
		}
		pulse := s.ZeroPulse
		if b == 1 {
			pulse = s.OnePulse
		}
		w = append(w, segment{dht.High, pulse})
	}

	if s.Fault == NoEndGuard {
		return append(w, segment{dht.Low, ShortGuardPhase}, segment{dht.High, GuardPhase})
	}
	return append(w, segment{dht.Low, GuardPhase})
}
