package gateway

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/goccy/go-json"
)

// Health status values.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 200 if every check passes, 503 otherwise.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := g.runChecks(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if resp.Status == StatusDegraded {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// runChecks runs every check concurrently, each under CheckTimeout.
func (g *Gateway) runChecks(ctx context.Context) HealthResponse {
	resp := HealthResponse{Status: StatusOK}
	if len(g.checks) == 0 {
		return resp
	}

	names := make([]string, 0, len(g.checks))
	for name := range g.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]string, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, g.config.CheckTimeout)
			defer cancel()
			if err := g.checks[name](cctx); err != nil {
				results[i] = err.Error()
				return
			}
			results[i] = StatusOK
		}()
	}
	wg.Wait()

	resp.Checks = make(map[string]string, len(names))
	for i, name := range names {
		resp.Checks[name] = results[i]
		if results[i] != StatusOK {
			resp.Status = StatusDegraded
		}
	}
	return resp
}
