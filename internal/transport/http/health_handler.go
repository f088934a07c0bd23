package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HealthHandler reports process and dataset health.
type HealthHandler struct {
	store   healthStore
	logger  *slog.Logger
	version string
	started time.Time
}

// healthStore exposes the dataset status without tying the handler to
// the concrete store type.
type healthStore interface {
	LoadedAt() time.Time
	RecordCount() int
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(store healthStore, logger *slog.Logger, version string) *HealthHandler {
	return &HealthHandler{
		store:   store,
		logger:  logger.With(slog.String("component", "health_handler")),
		version: version,
		started: time.Now(),
	}
}

// HealthResponse is the /api/healthz payload.
type HealthResponse struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	DatasetLoaded bool      `json:"dataset_loaded"`
	Records       int       `json:"records"`
	LoadedAt      time.Time `json:"loaded_at,omitempty"`
}

// Routes returns the health routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetHealth)
	return r
}

// GetHealth handles GET /api/healthz. The process is healthy even
// before a dataset is published; dataset_loaded tells the caller which
// situation it is in.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	loadedAt := h.store.LoadedAt()

	resp := HealthResponse{
		Status:        "healthy",
		Version:       h.version,
		UptimeSeconds: time.Since(h.started).Seconds(),
		DatasetLoaded: !loadedAt.IsZero(),
		LoadedAt:      loadedAt,
	}
	if resp.DatasetLoaded {
		resp.Records = h.store.RecordCount()
	}

	render.JSON(w, r, resp)
}
