package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/npc-forge/internal/storage"
	"github.com/jwebster45206/npc-forge/pkg/catalog"
)

type HealthResponse struct {
	Status     string         `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
	Service    string         `json:"service"`
	Components map[string]any `json:"components"`
}

type HealthHandler struct {
	store   storage.SessionStore
	catalog *catalog.Catalog
	logger  *slog.Logger
}

func NewHealthHandler(store storage.SessionStore, cat *catalog.Catalog, logger *slog.Logger) *HealthHandler {
	if cat == nil {
		cat = catalog.Empty()
	}
	return &HealthHandler{
		store:   store,
		catalog: cat,
		logger:  logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]any)
	overallStatus := "healthy"

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Session store health check failed", "error", err)
		components["sessions"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["sessions"] = "healthy"
	}

	// An empty catalog only disables item search, so it never degrades the service.
	components["catalog"] = map[string]any{
		"items":      h.catalog.Len(),
		"categories": len(h.catalog.Categories()),
	}

	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "npc-forge",
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding health response",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path)
		return
	}
}
