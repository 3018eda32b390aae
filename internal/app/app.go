package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"dhtsense/internal/config"
	"dhtsense/internal/dht"
	"dhtsense/internal/gpio"
	"dhtsense/internal/httpapi"
	"dhtsense/internal/mqtt"
	"dhtsense/internal/sensor"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("initializing station",
		"station_id", cfg.DeviceStationID,
		"gpio_backend", cfg.GPIOBackend,
		"dht_pin", cfg.DHTPin,
		"poll_interval", cfg.SensorPollInterval,
		"mqtt_broker", cfg.MQTTBroker,
		"mqtt_port", cfg.MQTTPort,
		"mqtt_client_id", cfg.MQTTClientID,
		"http_addr", cfg.HTTPAddr,
	)

	line, err := gpio.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := line.Close(); closeErr != nil {
			slog.Error("gpio close", "error", closeErr)
		}
	}()
	slog.Info("data line acquired", "line", line.String())

	mqttClient, err := mqtt.NewClient(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer mqttClient.Disconnect()

	// The poller runs while the broker is unreachable and logs publish
	// failures. The connect attempt ends with Run, whichever way Run exits.
	connectCtx, stopConnect := context.WithCancel(ctx)
	connectDone := make(chan struct{})
	defer func() {
		stopConnect()
		<-connectDone
	}()
	go func() {
		defer close(connectDone)
		err := mqttClient.Connect(connectCtx)
		if err != nil && connectCtx.Err() == nil && !errors.Is(err, mqtt.ErrStopped) {
			slog.Error("mqtt connect failed", "error", err)
		}
	}()

	sampler := dht.NewSampler(line.Pin, line.Clock)
	status := sensor.NewStatus()
	poller := sensor.NewPoller(cfg, sampler, mqttClient, status, slog.Default())

	srv := httpapi.NewServer(cfg, httpapi.NewMux(status, cfg.SensorPollInterval))

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()

	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		_ = poller.Run(pollCtx)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		stopPolling()
		<-pollDone
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	<-pollDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
