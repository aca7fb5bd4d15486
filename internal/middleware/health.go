package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// HealthChecker defines interface for health checking
type HealthChecker interface {
	Check(ctx context.Context) error
}

// Pinger is anything with a Ping, e.g. a store adapter
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker adapts a Pinger with a short timeout
type PingChecker struct {
	Target  Pinger
	Timeout time.Duration
}

func (p PingChecker) Check(ctx context.Context) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Target.Ping(ctx)
}

const (
	statusUp   = "up"
	statusDown = "down"
)

// Probe is the outcome of one checker
type Probe struct {
	Status    string  `json:"status"`
	LatencyMS float64 `json:"latencyMs"`
	Error     string  `json:"error,omitempty"`
}

// Report is the body of /health
type Report struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Probe `json:"checks"`
}

// probeAll runs the checkers concurrently
func probeAll(ctx context.Context, checkers map[string]HealthChecker) Report {
	rep := Report{
		Status:    statusUp,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]Probe, len(checkers)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker HealthChecker) {
			defer wg.Done()
			start := time.Now()
			err := checker.Check(ctx)
			p := Probe{Status: statusUp, LatencyMS: float64(time.Since(start).Microseconds()) / 1000}
			if err != nil {
				p.Status = statusDown
				p.Error = err.Error()
			}
			mu.Lock()
			rep.Checks[name] = p
			if err != nil {
				rep.Status = statusDown
			}
			mu.Unlock()
		}(name, checker)
	}
	wg.Wait()
	return rep
}

func writeHealth(w http.ResponseWriter, up bool, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if up {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(body)
}

// HealthHandler reports every dependency with its latency
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rep := probeAll(ctx, checkers)
		writeHealth(w, rep.Status == statusUp, rep)
	}
}

// ReadinessHandler answers 503 while any dependency is down, naming them
func ReadinessHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		rep := probeAll(ctx, checkers)
		down := []string{}
		for name, p := range rep.Checks {
			if p.Status == statusDown {
				down = append(down, name)
			}
		}
		sort.Strings(down)
		writeHealth(w, len(down) == 0, map[string]any{
			"ready": len(down) == 0,
			"down":  down,
		})
	}
}

// LivenessHandler only proves the process is serving
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
