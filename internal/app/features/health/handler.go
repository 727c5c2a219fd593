package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/hopenest/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB          Pinger
	Environment string
	Version     string
	Started     time.Time
	Log         *zap.Logger

	now func() time.Time
}

// NewHandler constructs a health Handler. Uptime is measured from the call.
func NewHandler(db Pinger, environment, version string, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Environment: environment,
		Version:     version,
		Started:     time.Now(),
		Log:         logger,
		now:         time.Now,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime"` // seconds
	Environment string  `json:"environment"`
	Version     string  `json:"version"`
	Database    string  `json:"database"`
	Message     string  `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "uptime":12.5, ... }
//
// On DB failure: 503 with status "error" and database "disconnected". The
// driver error is logged, not returned.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	now := h.now()
	resp := healthResponse{
		Status:      "ok",
		Timestamp:   now.UTC().Format(time.RFC3339),
		Uptime:      now.Sub(h.Started).Seconds(),
		Environment: h.Environment,
		Version:     h.Version,
		Database:    "connected",
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	if err := h.DB.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	_ = json.NewEncoder(w).Encode(resp)
}
