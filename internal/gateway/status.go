package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/flemzord/tiermem/internal/metrics"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime  time.Duration   `json:"uptime_seconds"`
	Mode    string          `json:"mode"`
	Records int             `json:"records"`
	Summary metrics.Summary `json:"summary"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Uptime: time.Since(g.startedAt).Truncate(time.Second),
		}

		if g.provider != nil {
			resp.Mode = g.provider.Current().Memory.Mode
		}
		if g.store != nil {
			resp.Records = g.store.Len()
		}
		if g.agg != nil {
			resp.Summary = g.agg.Summary()
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
