package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

var draining atomic.Bool

// SetReady toggles the readiness flag. The API server clears it when
// shutdown starts so load balancers stop routing before the listener closes.
func SetReady(ready bool) {
	draining.Store(!ready)
}

// IsReady reports whether the process is accepting traffic.
func IsReady() bool {
	return !draining.Load()
}

// Check pings one dependency. Run must return once ctx is done.
type Check struct {
	Name    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Handler serves the liveness and readiness endpoints.
type Handler struct {
	Checks []Check
}

// Live answers as long as the process can serve HTTP.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready runs every check concurrently and answers 503 if any fails or the
// process is draining. The body maps check names to "ok" or the error text.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !IsReady() {
		writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting down"})
		return
	}
	if len(h.Checks) == 0 {
		writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "no dependencies configured"})
		return
	}

	results := make([]string, len(h.Checks))
	var wg sync.WaitGroup
	for i, c := range h.Checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = run(r.Context(), c)
		}()
	}
	wg.Wait()

	code := http.StatusOK
	status := make(map[string]string, len(h.Checks))
	for i, c := range h.Checks {
		status[c.Name] = results[i]
		if results[i] != "ok" {
			code = http.StatusServiceUnavailable
		}
	}
	writeStatus(w, code, status)
}

func run(ctx context.Context, c Check) string {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := c.Run(ctx); err != nil {
		return err.Error()
	}
	return "ok"
}

func writeStatus(w http.ResponseWriter, code int, status map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}
