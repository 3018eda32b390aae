package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dhtsense/internal/config"
	"dhtsense/internal/dht"
	"dhtsense/internal/sensor"
)

type fixedStatus struct{ sn sensor.Snapshot }

func (f fixedStatus) Snapshot() sensor.Snapshot { return f.sn }

func newTestServer(t *testing.T, status statusSource) *httptest.Server {
	t.Helper()

	srv := NewServer(config.Config{HTTPAddr: ":0"}, NewMux(status, 3*time.Second))
	ts := httptest.NewServer(srv.Handler)

	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := ts.Client().Get(ts.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	return resp, body
}

func TestHealthz_Healthy(t *testing.T) {
	status := sensor.NewStatus()
	status.RecordSuccess(dht.Reading{Temperature: 22, Humidity: 51}, time.Now())
	ts := newTestServer(t, status)

	resp, body := getJSON(t, ts, "/healthz")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusOK)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if body["status"] != "ok" {
		t.Errorf("body.status=%v want=ok", body["status"])
	}
	if body["reads"] != 1.0 {
		t.Errorf("body.reads=%v want=1", body["reads"])
	}
	if _, ok := body["last_success"]; !ok {
		t.Errorf("body missing last_success: %v", body)
	}
}

func TestHealthz_NeverRead(t *testing.T) {
	ts := newTestServer(t, sensor.NewStatus())

	resp, body := getJSON(t, ts, "/healthz")

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusServiceUnavailable)
	}
	if body["status"] != "unavailable" {
		t.Errorf("body.status=%v want=unavailable", body["status"])
	}
	if _, ok := body["last_success"]; ok {
		t.Errorf("last_success present before any read: %v", body)
	}
}

func TestHealthz_Stale(t *testing.T) {
	sn := sensor.Snapshot{
		LastSuccess:         time.Now().Add(-time.Minute),
		LastError:           &dht.SampleError{State: dht.ReceivingBit, Bit: 4, Err: dht.ErrBitTimeout},
		ConsecutiveFailures: 12,
		Errors:              12,
	}
	ts := newTestServer(t, fixedStatus{sn})

	resp, body := getJSON(t, ts, "/healthz")

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusServiceUnavailable)
	}
	if body["consecutive_failures"] != 12.0 {
		t.Errorf("consecutive_failures=%v want=12", body["consecutive_failures"])
	}
	msg, _ := body["last_error"].(string)
	if msg == "" || !errors.Is(sn.LastError, dht.ErrBitTimeout) {
		t.Errorf("last_error=%q", msg)
	}
}

func TestRouting(t *testing.T) {
	ts := newTestServer(t, sensor.NewStatus())

	resp, err := ts.Client().Get(ts.URL + "/does-not-exist")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status=%d want=%d", resp.StatusCode, http.StatusNotFound)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/healthz", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err = ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status=%d want=%d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}
