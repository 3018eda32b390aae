package app

import (
	"fmt"
	"io"
	"log/slog"

	"dhtsense/internal/config"
	"dhtsense/internal/dht"
	"dhtsense/internal/gpio"
)

// Trace sends one sync pulse and writes the raw line activity that follows
// as a list of pulses. Useful when a sensor never gets past the handshake.
func Trace(cfg config.Config, w io.Writer) error {
	line, err := gpio.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := line.Close(); closeErr != nil {
			slog.Error("gpio close", "error", closeErr)
		}
	}()

	sampler := dht.NewSampler(line.Pin, line.Clock)
	levels, err := sampler.Trace(cfg.TraceSamples, cfg.TraceInterval)
	if err != nil {
		return fmt.Errorf("trace %s: %w", line, err)
	}

	pulses := dht.Pulses(levels, cfg.TraceInterval)
	if _, err := fmt.Fprintf(w, "%d samples every %v on %s, %d pulses\n",
		len(levels), cfg.TraceInterval, line, len(pulses)); err != nil {
		return err
	}
	for i, p := range pulses {
		if _, err := fmt.Fprintf(w, "%4d  %-4s %v\n", i, p.Level, p.Duration); err != nil {
			return err
		}
	}
	return nil
}
