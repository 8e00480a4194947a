package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/flemzord/tiermem/internal/metrics"
	"github.com/flemzord/tiermem/internal/retrieval"
)

// QueryRequest is the JSON body of POST /api/query.
type QueryRequest struct {
	Query string `json:"query"`
	Tier  string `json:"tier,omitempty"` // optional override: auto, short, overview, full
}

// handleQuery resolves a query through the retrieval policy.
func (g *Gateway) handleQuery() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.resolver == nil {
			http.Error(w, "resolver unavailable", http.StatusServiceUnavailable)
			return
		}

		var req QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Query == "" {
			http.Error(w, "query is required", http.StatusBadRequest)
			return
		}

		res, err := g.resolver.Resolve(r.Context(), req.Query, req.Tier)
		switch {
		case errors.Is(err, retrieval.ErrInvalidOverride):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, retrieval.ErrNoRecords):
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		case err != nil:
			g.logger.Error("query failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, res)
	}
}

// IngestRequest is the JSON body of POST /api/ingest.
type IngestRequest struct {
	Key     string `json:"key"`
	Content string `json:"content"`
}

// handleIngest stores new content as a tiered record.
func (g *Gateway) handleIngest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.resolver == nil {
			http.Error(w, "resolver unavailable", http.StatusServiceUnavailable)
			return
		}

		var req IngestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Key == "" || req.Content == "" {
			http.Error(w, "key and content are required", http.StatusBadRequest)
			return
		}

		if err := g.resolver.Ingest(r.Context(), req.Key, req.Content); err != nil {
			g.logger.Error("ingest failed", "key", req.Key, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusCreated)
	}
}

// MigrateRequest is the JSON body of POST /api/migrate.
type MigrateRequest struct {
	Dir string `json:"dir"`
}

// handleMigrate imports flat memory files from a directory.
func (g *Gateway) handleMigrate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.migrator == nil {
			http.Error(w, "migration unavailable", http.StatusServiceUnavailable)
			return
		}

		var req MigrateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Dir == "" {
			http.Error(w, "dir is required", http.StatusBadRequest)
			return
		}

		res, err := g.migrator.Run(r.Context(), req.Dir)
		if err != nil {
			g.logger.Error("migration failed", "dir", req.Dir, "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, res)
	}
}

// DashboardResponse is the JSON response for GET /api/dashboard.
type DashboardResponse struct {
	Mode    string                 `json:"mode"`
	Records int                    `json:"records"`
	Summary metrics.Summary        `json:"summary"`
	Benefit metrics.Benefit        `json:"benefit"`
	Recent  []metrics.HistoryEntry `json:"recent"`
}

// Dashboard economic defaults, used when the caller does not override them.
const (
	defaultDailyQueries = 100
	defaultTokenCost    = 0.000001
)

// handleDashboard assembles the performance dashboard.
func (g *Gateway) handleDashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.agg == nil {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
			return
		}

		resp := DashboardResponse{
			Summary: g.agg.Summary(),
			Benefit: g.agg.EconomicBenefit(dailyQueries(r), tokenCost(r)),
			Recent:  g.agg.Recent(10),
		}
		if g.provider != nil {
			resp.Mode = g.provider.Current().Memory.Mode
		}
		if g.store != nil {
			resp.Records = g.store.Len()
		}

		writeJSON(w, resp)
	}
}

// handleReport renders a periodic report. Query params: period (daily,
// weekly, monthly) and format (structured, text).
func (g *Gateway) handleReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.agg == nil {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
			return
		}

		period, err := metrics.ParsePeriod(queryParam(r, "period", string(metrics.Daily)))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		format, err := metrics.ParseFormat(queryParam(r, "format", string(metrics.Structured)))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		report, err := g.agg.Report(period, format)
		if err != nil {
			g.logger.Error("report failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if format == metrics.Text {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		} else {
			w.Header().Set("Content-Type", "application/json")
		}
		_, _ = w.Write([]byte(report))
	}
}

// handleBenefit projects economic savings. Query params: daily_queries and
// token_cost override the defaults.
func (g *Gateway) handleBenefit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.agg == nil {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, g.agg.EconomicBenefit(dailyQueries(r), tokenCost(r)))
	}
}

func dailyQueries(r *http.Request) int {
	if v, err := strconv.Atoi(r.URL.Query().Get("daily_queries")); err == nil && v > 0 {
		return v
	}
	return defaultDailyQueries
}

func tokenCost(r *http.Request) float64 {
	if v, err := strconv.ParseFloat(r.URL.Query().Get("token_cost"), 64); err == nil && v > 0 {
		return v
	}
	return defaultTokenCost
}

func queryParam(r *http.Request, name, fallback string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
