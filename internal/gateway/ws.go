package gateway

import (
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// statsPushInterval is how often the stats socket pushes a fresh summary.
const statsPushInterval = 2 * time.Second

// StatsFrame is one message pushed over the stats WebSocket.
type StatsFrame struct {
	Summary any       `json:"summary"`
	Records int       `json:"records"`
	SentAt  time.Time `json:"sent_at"`
}

// handleStatsSocket upgrades to a WebSocket and pushes summary frames on an
// interval until the client disconnects.
func (g *Gateway) handleStatsSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.agg == nil {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			g.logger.Warn("stats socket accept failed", "error", err)
			return
		}
		defer func() {
			_ = conn.Close(websocket.StatusInternalError, "unexpected close")
		}()

		ctx := r.Context()
		ticker := time.NewTicker(statsPushInterval)
		defer ticker.Stop()

		for {
			frame := StatsFrame{
				Summary: g.agg.Summary(),
				SentAt:  time.Now().UTC(),
			}
			if g.store != nil {
				frame.Records = g.store.Len()
			}

			if err := wsjson.Write(ctx, conn, frame); err != nil {
				_ = conn.Close(websocket.StatusNormalClosure, "write failed")
				return
			}

			select {
			case <-ctx.Done():
				_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			case <-ticker.C:
			}
		}
	}
}
