package gpio

import (
	"testing"

	"dhtsense/internal/config"
	"dhtsense/internal/dht"
)

func TestPinNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "4", want: 4},
		{in: "GPIO17", want: 17},
		{in: "gpio27", want: 27},
		{in: " 22 ", want: 22},
		{in: "GPIO", wantErr: true},
		{in: "P1_7", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := pinNumber(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("pinNumber(%q) error = nil, want non-nil", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("pinNumber(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("pinNumber(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestOpen_Sim(t *testing.T) {
	cfg := config.Config{GPIOBackend: config.BackendSim, SimHumidity: 40, SimTemperature: 25}

	line, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = line.Close() })

	got, err := dht.NewSampler(line.Pin, line.Clock).Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != (dht.Reading{Temperature: 25, Humidity: 40}) {
		t.Errorf("Read() = %+v", got)
	}
	if line.String() != "sim" {
		t.Errorf("String() = %q, want sim", line.String())
	}
}

func TestLine_CloseTwice(t *testing.T) {
	line, err := Open(config.Config{GPIOBackend: config.BackendSim})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := line.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := line.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if _, err := line.Pin.Read(); err == nil {
		t.Errorf("Read() after Close() error = nil, want non-nil")
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open(config.Config{GPIOBackend: "serial"}); err == nil {
		t.Fatalf("Open() error = nil, want non-nil")
	}
}
