package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jwebster45206/npc-forge/pkg/catalog"
	"github.com/jwebster45206/npc-forge/pkg/npcdoc"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

type CatalogSearchResponse struct {
	Query   string                `json:"query"`
	Results []npcdoc.CatalogEntry `json:"results"`
}

// CatalogHandler serves GET /v1/catalog/search?q=&limit= for item id autocomplete.
type CatalogHandler struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

func NewCatalogHandler(cat *catalog.Catalog, logger *slog.Logger) *CatalogHandler {
	if cat == nil {
		cat = catalog.Empty()
	}
	return &CatalogHandler{catalog: cat, logger: logger}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, h.logger, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxSearchLimit)
	}

	query := r.URL.Query().Get("q")
	results := h.catalog.Search(query, limit)
	if results == nil {
		results = []npcdoc.CatalogEntry{}
	}
	writeJSON(w, h.logger, http.StatusOK, CatalogSearchResponse{Query: query, Results: results})
}
