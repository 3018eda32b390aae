package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backends a DHT pin can be driven through.
const (
	BackendPeriph = "periph"
	BackendGPIOD  = "gpiod"
	BackendRPIO   = "rpio"
	BackendSim    = "sim"
)

// minPollInterval is the shortest period the sensor tolerates between reads.
const minPollInterval = 2 * time.Second

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string

	GPIOBackend string
	GPIOChip    string
	DHTPin      string

	SensorPollInterval time.Duration
	SensorMaxRetries   int
	SensorRetryDelay   time.Duration
	DeviceStationID    string

	TraceSamples  int
	TraceInterval time.Duration

	SimHumidity    uint8
	SimTemperature uint8
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := envOr("HTTP_ADDR", ":8080")

	mqttBroker := envOr("MQTT_BROKER", "localhost")
	mqttPortStr := envOr("MQTT_PORT", "1883")
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}
	mqttClientID := envOr("MQTT_CLIENT_ID", "dhtsense")

	backend := strings.ToLower(envOr("GPIO_BACKEND", BackendPeriph))
	switch backend {
	case BackendPeriph, BackendGPIOD, BackendRPIO, BackendSim:
	default:
		return Config{}, fmt.Errorf("invalid GPIO_BACKEND %q (allowed: periph, gpiod, rpio, sim)", backend)
	}
	gpioChip := envOr("GPIO_CHIP", "gpiochip0")
	dhtPin := envOr("DHT_PIN", "GPIO4")

	pollIntervalStr := envOr("SENSOR_POLL_INTERVAL", "3s")
	pollInterval, err := time.ParseDuration(pollIntervalStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SENSOR_POLL_INTERVAL %q: %w", pollIntervalStr, err)
	}
	if pollInterval < minPollInterval {
		return Config{}, fmt.Errorf("SENSOR_POLL_INTERVAL must be at least %v, got %v", minPollInterval, pollInterval)
	}

	maxRetriesStr := envOr("SENSOR_MAX_RETRIES", "11")
	maxRetries, err := strconv.Atoi(maxRetriesStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SENSOR_MAX_RETRIES %q: %w", maxRetriesStr, err)
	}
	if maxRetries < 1 {
		return Config{}, fmt.Errorf("SENSOR_MAX_RETRIES must be at least 1, got %d", maxRetries)
	}

	retryDelayStr := envOr("SENSOR_RETRY_DELAY", "2s")
	retryDelay, err := time.ParseDuration(retryDelayStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SENSOR_RETRY_DELAY %q: %w", retryDelayStr, err)
	}
	if retryDelay <= 0 {
		return Config{}, fmt.Errorf("SENSOR_RETRY_DELAY must be positive, got %v", retryDelay)
	}

	deviceStationID := envOr("DEVICE_STATION_ID", "home")

	traceSamplesStr := envOr("TRACE_SAMPLES", "5000")
	traceSamples, err := strconv.Atoi(traceSamplesStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid TRACE_SAMPLES %q: %w", traceSamplesStr, err)
	}
	if traceSamples <= 0 {
		return Config{}, fmt.Errorf("TRACE_SAMPLES must be positive, got %d", traceSamples)
	}
	traceIntervalStr := envOr("TRACE_INTERVAL", "1us")
	traceInterval, err := time.ParseDuration(traceIntervalStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid TRACE_INTERVAL %q: %w", traceIntervalStr, err)
	}
	if traceInterval <= 0 {
		return Config{}, fmt.Errorf("TRACE_INTERVAL must be positive, got %v", traceInterval)
	}

	simHumidity, err := parseByte("SIM_HUMIDITY", envOr("SIM_HUMIDITY", "51"))
	if err != nil {
		return Config{}, err
	}
	simTemperature, err := parseByte("SIM_TEMPERATURE", envOr("SIM_TEMPERATURE", "22"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:             appEnv,
		LogLevel:           level,
		HTTPAddr:           httpAddr,
		MQTTBroker:         mqttBroker,
		MQTTPort:           mqttPort,
		MQTTClientID:       mqttClientID,
		GPIOBackend:        backend,
		GPIOChip:           gpioChip,
		DHTPin:             dhtPin,
		SensorPollInterval: pollInterval,
		SensorMaxRetries:   maxRetries,
		SensorRetryDelay:   retryDelay,
		DeviceStationID:    deviceStationID,
		TraceSamples:       traceSamples,
		TraceInterval:      traceInterval,
		SimHumidity:        simHumidity,
		SimTemperature:     simTemperature,
	}, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func parseByte(key, s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return uint8(v), nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
