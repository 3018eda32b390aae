package config

import (
	"log/slog"
	"testing"
	"time"
)

// clearEnv resets every variable LoadFromEnv reads so host settings do not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "LOG_LEVEL", "HTTP_ADDR",
		"MQTT_BROKER", "MQTT_PORT", "MQTT_CLIENT_ID",
		"GPIO_BACKEND", "GPIO_CHIP", "DHT_PIN",
		"SENSOR_POLL_INTERVAL", "SENSOR_MAX_RETRIES", "SENSOR_RETRY_DELAY",
		"DEVICE_STATION_ID", "TRACE_SAMPLES", "TRACE_INTERVAL",
		"SIM_HUMIDITY", "SIM_TEMPERATURE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}

	if got.AppEnv != "dev" {
		t.Errorf("AppEnv = %q, want %q", got.AppEnv, "dev")
	}
	if got.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelInfo)
	}
	if got.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, ":8080")
	}
	if got.MQTTBroker != "localhost" || got.MQTTPort != 1883 || got.MQTTClientID != "dhtsense" {
		t.Errorf("MQTT = %s:%d (%s), want localhost:1883 (dhtsense)", got.MQTTBroker, got.MQTTPort, got.MQTTClientID)
	}
	if got.GPIOBackend != BackendPeriph {
		t.Errorf("GPIOBackend = %q, want %q", got.GPIOBackend, BackendPeriph)
	}
	if got.GPIOChip != "gpiochip0" || got.DHTPin != "GPIO4" {
		t.Errorf("GPIOChip/DHTPin = %q/%q, want gpiochip0/GPIO4", got.GPIOChip, got.DHTPin)
	}
	if got.SensorPollInterval != 3*time.Second {
		t.Errorf("SensorPollInterval = %v, want 3s", got.SensorPollInterval)
	}
	if got.SensorMaxRetries != 11 {
		t.Errorf("SensorMaxRetries = %d, want 11", got.SensorMaxRetries)
	}
	if got.SensorRetryDelay != 2*time.Second {
		t.Errorf("SensorRetryDelay = %v, want 2s", got.SensorRetryDelay)
	}
	if got.DeviceStationID != "home" {
		t.Errorf("DeviceStationID = %q, want %q", got.DeviceStationID, "home")
	}
	if got.TraceSamples != 5000 || got.TraceInterval != time.Microsecond {
		t.Errorf("Trace = %d every %v, want 5000 every 1µs", got.TraceSamples, got.TraceInterval)
	}
	if got.SimHumidity != 51 || got.SimTemperature != 22 {
		t.Errorf("Sim = %d/%d, want 51/22", got.SimHumidity, got.SimTemperature)
	}
}

func TestLoadFromEnv_AppEnv_Invalid(t *testing.T) {
	tests := []string{"staging", "DEV", "whatever"}

	for _, appEnv := range tests {
		t.Run(appEnv, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", appEnv)

			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() error = nil, want non-nil")
			}
		})
	}
}

func TestLoadFromEnv_GPIOBackend(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "periph", in: "periph", want: BackendPeriph},
		{name: "gpiod", in: "gpiod", want: BackendGPIOD},
		{name: "rpio uppercase", in: "RPIO", want: BackendRPIO},
		{name: "sim with whitespace", in: " sim\n", want: BackendSim},
		{name: "unknown", in: "sysfs", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("GPIO_BACKEND", tt.in)

			got, err := LoadFromEnv()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("LoadFromEnv() error = nil, want non-nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v, want nil", err)
			}
			if got.GPIOBackend != tt.want {
				t.Errorf("GPIOBackend = %q, want %q", got.GPIOBackend, tt.want)
			}
		})
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "mqtt port not a number", key: "MQTT_PORT", value: "eighteen"},
		{name: "poll interval garbage", key: "SENSOR_POLL_INTERVAL", value: "soon"},
		{name: "poll interval below sensor minimum", key: "SENSOR_POLL_INTERVAL", value: "1500ms"},
		{name: "zero retries", key: "SENSOR_MAX_RETRIES", value: "0"},
		{name: "retries not a number", key: "SENSOR_MAX_RETRIES", value: "many"},
		{name: "negative retry delay", key: "SENSOR_RETRY_DELAY", value: "-1s"},
		{name: "zero trace samples", key: "TRACE_SAMPLES", value: "0"},
		{name: "trace interval garbage", key: "TRACE_INTERVAL", value: "fast"},
		{name: "sim humidity overflow", key: "SIM_HUMIDITY", value: "256"},
		{name: "sim temperature negative", key: "SIM_TEMPERATURE", value: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() with %s=%q error = nil, want non-nil", tt.key, tt.value)
			}
		})
	}
}

func TestLoadFromEnv_SensorOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SENSOR_POLL_INTERVAL", "2s")
	t.Setenv("SENSOR_MAX_RETRIES", "3")
	t.Setenv("SENSOR_RETRY_DELAY", "500ms")
	t.Setenv("SIM_HUMIDITY", "0x28")
	t.Setenv("SIM_TEMPERATURE", "255")

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}
	if got.SensorPollInterval != 2*time.Second {
		t.Errorf("SensorPollInterval = %v, want 2s", got.SensorPollInterval)
	}
	if got.SensorMaxRetries != 3 {
		t.Errorf("SensorMaxRetries = %d, want 3", got.SensorMaxRetries)
	}
	if got.SensorRetryDelay != 500*time.Millisecond {
		t.Errorf("SensorRetryDelay = %v, want 500ms", got.SensorRetryDelay)
	}
	if got.SimHumidity != 40 || got.SimTemperature != 255 {
		t.Errorf("Sim = %d/%d, want 40/255", got.SimHumidity, got.SimTemperature)
	}
}

func TestParseLogLevel_Valid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want slog.Level
	}{
		{name: "debug", in: "debug", want: slog.LevelDebug},
		{name: "info", in: "info", want: slog.LevelInfo},
		{name: "warn", in: "warn", want: slog.LevelWarn},
		{name: "warning", in: "warning", want: slog.LevelWarn},
		{name: "error", in: "error", want: slog.LevelError},
		{name: "case insensitive", in: "DeBuG", want: slog.LevelDebug},
		{name: "trims whitespace", in: "  warn \n", want: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLogLevel(tt.in)
			if err != nil {
				t.Fatalf("parseLogLevel(%q) error = %v, want nil", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLogLevel_Invalid(t *testing.T) {
	for _, in := range []string{"", "nope", "warns", "1"} {
		t.Run(in, func(t *testing.T) {
			got, err := parseLogLevel(in)
			if err == nil {
				t.Fatalf("parseLogLevel(%q) error = nil, want non-nil", in)
			}
			if got != slog.LevelInfo {
				t.Errorf("parseLogLevel(%q) = %v, want %v on error", in, got, slog.LevelInfo)
			}
		})
	}
}
