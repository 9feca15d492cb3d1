package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/dealflow/httpx"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health answers GET /healthz.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "db": "down"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "up"})
	}
}
