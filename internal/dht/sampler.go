package dht

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Wire timings from the sensor datasheet.
const (
	SyncLow      = 20 * time.Millisecond // at least 18ms
	SyncHigh     = 30 * time.Microsecond // 20-40us
	AckWindow    = 80 * time.Microsecond
	GuardWindow  = 50 * time.Microsecond
	PollInterval = 10 * time.Microsecond
	MaxHighPolls = 8
	BitThreshold = 30 * time.Microsecond
)

// Sampler drives the handshake on one pin and captures a 40 bit frame.
// A Sampler owns its pin; calls are serialized.
type Sampler struct {
	mu    sync.Mutex
	pin   Pin
	clock Sleeper
	state atomic.Uint32
}

func NewSampler(pin Pin, clock Sleeper) *Sampler {
	return &Sampler{pin: pin, clock: clock}
}

// State is where the last (or current) sample attempt got to.
func (s *Sampler) State() State {
	return State(s.state.Load())
}

func (s *Sampler) enter(st State) { s.state.Store(uint32(st)) }

// Read samples the sensor once and decodes the frame.
func (s *Sampler) Read() (Reading, error) {
	bits, err := s.Sample()
	if err != nil {
		return Reading{}, err
	}
	return Decode(bits)
}

// Sample performs one complete handshake and returns exactly 40 bits, or an
// error and no bits. It blocks for roughly 20-25ms.
func (s *Sampler) Sample() ([]Bit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// keep the goroutine on one thread and the collector quiet while polling
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer pauseGC()()

	s.enter(Syncing)
	if err := s.sync(); err != nil {
		s.enter(Failed)
		return nil, &SampleError{State: Syncing, Bit: -1, Err: err}
	}

	s.enter(AwaitingAckLow)
	ok, err := s.confirm(AckWindow, Low)
	if err != nil || !ok {
		return nil, s.fail(AwaitingAckLow, -1, ErrAckLow, err)
	}
	s.enter(AwaitingAckHigh)
	ok, err = s.confirm(AckWindow, High)
	if err != nil || !ok {
		return nil, s.fail(AwaitingAckHigh, -1, ErrAckHigh, err)
	}

	s.enter(ReceivingBit)
	bits := make([]Bit, 0, FrameBits)
	for i := 0; i < FrameBits; i++ {
		ok, err = s.confirm(GuardWindow, Low)
		if err != nil || !ok {
			return nil, s.fail(ReceivingBit, i, ErrStartGuard, err)
		}
		var wait time.Duration
		wait, ok, err = s.measureHigh()
		if err != nil || !ok {
			return nil, s.fail(ReceivingBit, i, ErrBitTimeout, err)
		}
		bits = append(bits, Classify(wait))
	}

	s.enter(AwaitingEndGuard)
	ok, err = s.confirm(GuardWindow, Low)
	if err != nil || !ok {
		return nil, s.fail(AwaitingEndGuard, -1, ErrEndGuard, err)
	}
	s.enter(Complete)
	return bits, nil
}

// Trace sends the sync pulse and then records n raw levels, one every
// interval, without interpreting them.
func (s *Sampler) Trace(n int, interval time.Duration) ([]Level, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer pauseGC()()

	if err := s.sync(); err != nil {
		return nil, &SampleError{State: Syncing, Bit: -1, Err: err}
	}
	levels := make([]Level, 0, n)
	for i := 0; i < n; i++ {
		l, err := s.pin.Read()
		if err != nil {
			return levels, fmt.Errorf("%w: read: %w", ErrPinIO, err)
		}
		levels = append(levels, l)
		s.clock.Sleep(interval)
	}
	return levels, nil
}

// Classify turns a measured high duration into a bit. Exactly BitThreshold
// is a 0.
func Classify(high time.Duration) Bit {
	if high > BitThreshold {
		return 1
	}
	return 0
}

func (s *Sampler) sync() error {
	if err := s.pin.SetDirection(Output); err != nil {
		return fmt.Errorf("%w: set output: %w", ErrPinIO, err)
	}
	if err := s.pin.Write(Low); err != nil {
		return fmt.Errorf("%w: write low: %w", ErrPinIO, err)
	}
	s.clock.Sleep(SyncLow)
	if err := s.pin.Write(High); err != nil {
		return fmt.Errorf("%w: write high: %w", ErrPinIO, err)
	}
	s.clock.Sleep(SyncHigh)
	if err := s.pin.SetDirection(InputPullDown); err != nil {
		return fmt.Errorf("%w: set input: %w", ErrPinIO, err)
	}
	return nil
}

// confirm polls d/PollInterval+1 times and reports whether every read saw
// level. It stops at the first mismatch.
func (s *Sampler) confirm(d time.Duration, level Level) (bool, error) {
	polls := int(d/PollInterval) + 1
	for i := 0; i < polls; i++ {
		l, err := s.pin.Read()
		if err != nil {
			return false, err
		}
		if l != level {
			return false, nil
		}
		s.clock.Sleep(PollInterval)
	}
	return true, nil
}

// measureHigh counts how long the line stays high, in PollInterval steps.
func (s *Sampler) measureHigh() (time.Duration, bool, error) {
	var wait time.Duration
	for i := 0; i < MaxHighPolls; i++ {
		l, err := s.pin.Read()
		if err != nil {
			return 0, false, err
		}
		if l != High {
			return wait, true, nil
		}
		wait += PollInterval
		s.clock.Sleep(PollInterval)
	}
	return wait, false, nil
}

func (s *Sampler) fail(state State, bit int, reason, ioErr error) error {
	s.enter(Failed)
	if ioErr != nil {
		return &SampleError{State: state, Bit: bit, Err: fmt.Errorf("%w: read: %w", ErrPinIO, ioErr)}
	}
	return &SampleError{State: state, Bit: bit, Err: reason}
}
