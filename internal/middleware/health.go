package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker defines interface for health checking
type HealthChecker interface {
	Check(ctx context.Context) error
}

// DatabaseHealthChecker checks document-store connectivity.
type DatabaseHealthChecker struct {
	Ping func(ctx context.Context) error
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.Ping(ctx)
}

// HealthStatus represents the health status
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

// CheckStatus represents individual check status
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthHandler runs the registered checks and reports the aggregate.
func HealthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := HealthStatus{
			Status:    "ok",
			Timestamp: time.Now().UTC(),
			Checks:    map[string]CheckStatus{},
		}

		code := http.StatusOK
		for name, checker := range checks {
			if err := checker.Check(r.Context()); err != nil {
				status.Status = "degraded"
				status.Checks[name] = CheckStatus{Status: "down", Message: err.Error()}
				code = http.StatusServiceUnavailable
				continue
			}
			status.Checks[name] = CheckStatus{Status: "ok"}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}
