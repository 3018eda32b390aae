package httpapi

import (
	"net/http"
	"time"

	"dhtsense/internal/sensor"
)

// statusSource is the part of sensor.Status the health check reads.
type statusSource interface {
	Snapshot() sensor.Snapshot
}

type healthchecker struct {
	status     statusSource
	staleAfter time.Duration
	now        func() time.Time
}

type healthResponse struct {
	Status              string     `json:"status"`
	LastSuccess         *time.Time `json:"last_success,omitempty"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	Reads               uint64     `json:"reads"`
	Errors              uint64     `json:"errors"`
	LastError           string     `json:"last_error,omitempty"`
}

func (h *healthchecker) handleHealthz(w http.ResponseWriter, r *http.Request) {
	sn := h.status.Snapshot()
	resp := healthResponse{
		Status:              "ok",
		ConsecutiveFailures: sn.ConsecutiveFailures,
		Reads:               sn.Reads,
		Errors:              sn.Errors,
	}
	if !sn.LastSuccess.IsZero() {
		last := sn.LastSuccess
		resp.LastSuccess = &last
	}
	if sn.LastError != nil {
		resp.LastError = sn.LastError.Error()
	}

	status := http.StatusOK
	if !sn.Healthy(h.now(), h.staleAfter) {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func registerHealthcheck(mux *http.ServeMux, status statusSource, staleAfter time.Duration) {
	h := &healthchecker{status: status, staleAfter: staleAfter, now: time.Now}
	mux.HandleFunc("GET /healthz", h.handleHealthz)
}
