package sensor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dhtsense/internal/config"
	"dhtsense/internal/dht"
	"dhtsense/internal/mqtt"
)

const maxRetryWait = 30 * time.Second

// Reader takes one reading from the sensor.
type Reader interface {
	Read() (dht.Reading, error)
}

// Publisher forwards readings and health off the device.
type Publisher interface {
	PublishTelemetry(ctx context.Context, t mqtt.Telemetry) error
	PublishStationHealth(ctx context.Context, h mqtt.StationHealth) error
}

// Poller reads the sensor on a fixed interval, retrying failed samples.
type Poller struct {
	reader     Reader
	pub        Publisher
	status     *Status
	logger     *slog.Logger
	stationID  string
	interval   time.Duration
	maxRetries int
	retryDelay time.Duration
	sequence   int
	now        func() time.Time
}

func NewPoller(cfg config.Config, reader Reader, pub Publisher, status *Status, logger *slog.Logger) *Poller {
	return &Poller{
		reader:     reader,
		pub:        pub,
		status:     status,
		logger:     logger,
		stationID:  cfg.DeviceStationID,
		interval:   cfg.SensorPollInterval,
		maxRetries: cfg.SensorMaxRetries,
		retryDelay: cfg.SensorRetryDelay,
		now:        time.Now,
	}
}

// Run polls until ctx is done. The first poll happens immediately.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.Poll(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll takes one reading (with retries), publishes it and the station health.
func (p *Poller) Poll(ctx context.Context) {
	reading, err := p.ReadRetry(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("sensor read failed", "error", err)
	} else {
		p.sequence++
		p.logger.Info("sensor reading",
			"temperature_c", reading.Temperature,
			"humidity_pct", reading.Humidity,
			"sequence", p.sequence,
		)
		if p.pub != nil {
			tel := mqtt.NewTelemetry(p.stationID, reading, p.sequence, p.now())
			if err := p.pub.PublishTelemetry(ctx, tel); err != nil {
				p.logger.Warn("publish telemetry failed", "error", err)
			}
		}
	}

	if p.pub != nil {
		if err := p.pub.PublishStationHealth(ctx, p.health()); err != nil {
			p.logger.Debug("publish health failed", "error", err)
		}
	}
}

// ReadRetry reads until a sample decodes or maxRetries attempts fail.
// Every failure is recorded in the status.
func (p *Poller) ReadRetry(ctx context.Context) (dht.Reading, error) {
	var lastErr error
	for attempt := 0; attempt < p.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, p.retryWait(attempt-1)); err != nil {
				return dht.Reading{}, err
			}
		} else if err := ctx.Err(); err != nil {
			return dht.Reading{}, err
		}

		r, err := p.reader.Read()
		if err == nil {
			p.status.RecordSuccess(r, p.now())
			return r, nil
		}
		lastErr = err
		p.status.RecordFailure(err, p.now())
		p.logFailure(attempt, err)
	}
	return dht.Reading{}, fmt.Errorf("%d attempts failed: %w", p.maxRetries, lastErr)
}

// retryWait grows by a quarter of the base delay per failure, so the 2s
// default backs off in 500ms steps, capped at 30s.
func (p *Poller) retryWait(failures int) time.Duration {
	wait := p.retryDelay + time.Duration(failures)*(p.retryDelay/4)
	if wait > maxRetryWait {
		return maxRetryWait
	}
	return wait
}

func (p *Poller) logFailure(attempt int, err error) {
	attrs := []any{"attempt", attempt + 1, "max", p.maxRetries, "error", err}

	var se *dht.SampleError
	var ce *dht.ChecksumError
	switch {
	case errors.As(err, &se):
		attrs = append(attrs, "state", se.State.String(), "bit", se.Bit)
	case errors.As(err, &ce):
		attrs = append(attrs, "expected_checksum", ce.Expected(), "checksum", ce.Checksum)
	}
	p.logger.Debug("sensor sample failed", attrs...)
}

func (p *Poller) health() mqtt.StationHealth {
	sn := p.status.Snapshot()
	h := mqtt.StationHealth{
		StationID:           p.stationID,
		Healthy:             sn.ConsecutiveFailures == 0 && !sn.LastSuccess.IsZero(),
		ConsecutiveFailures: sn.ConsecutiveFailures,
	}
	if !sn.LastSuccess.IsZero() {
		last := sn.LastSuccess
		h.LastSeen = &last
	}
	if sn.LastError != nil {
		h.LastError = sn.LastError.Error()
	}
	return h
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
