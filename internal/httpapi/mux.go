package httpapi

import (
	"net/http"
	"time"
)

// staleIntervals is how many poll intervals may pass without a successful
// read before the station reports unhealthy.
const staleIntervals = 3

func NewMux(status statusSource, pollInterval time.Duration) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, status, staleIntervals*pollInterval)
	return mux
}
