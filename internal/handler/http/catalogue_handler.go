package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-calibration-service/internal/service"
)

// CatalogueHandler handles HTTP requests for frozen market catalogues
type CatalogueHandler struct {
	service *service.CalibrationService
	logger  zerolog.Logger
}

// NewCatalogueHandler creates a new catalogue HTTP handler
func NewCatalogueHandler(service *service.CalibrationService, logger zerolog.Logger) *CatalogueHandler {
	return &CatalogueHandler{
		service: service,
		logger:  logger.With().Str("component", "catalogue_handler").Logger(),
	}
}

// RegisterRoutes registers HTTP routes with the provided mux
func (h *CatalogueHandler) RegisterRoutes(mux *http.ServeMux) {
	// GET /api/v1/catalogues/:event_id - Get the full catalogue for an event
	// GET /api/v1/catalogues/:event_id/markets/:market - Get a single market
	mux.HandleFunc("/api/v1/catalogues/", h.handleCatalogues)
}

// handleCatalogues dispatches the two catalogue path shapes
func (h *CatalogueHandler) handleCatalogues(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/catalogues/")
	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")

	switch {
	case len(parts) == 1:
		h.handleGetCatalogue(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "markets":
		h.handleGetMarket(w, r, parts[0], parts[2])
	default:
		h.errorResponse(w, http.StatusBadRequest,
			"invalid path: expected /api/v1/catalogues/:event_id or /api/v1/catalogues/:event_id/markets/:market")
	}
}

// handleGetCatalogue handles GET /api/v1/catalogues/:event_id
func (h *CatalogueHandler) handleGetCatalogue(w http.ResponseWriter, r *http.Request, eventID string) {
	if eventID == "" {
		h.errorResponse(w, http.StatusBadRequest, "event_id is required")
		return
	}

	catalogue, err := h.service.GetCatalogue(r.Context(), eventID)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Str("event_id", eventID).
			Msg("catalogue not found")
		h.errorResponse(w, http.StatusNotFound, "catalogue not found")
		return
	}

	h.jsonResponse(w, http.StatusOK, catalogue)
}

// handleGetMarket handles GET /api/v1/catalogues/:event_id/markets/:market
func (h *CatalogueHandler) handleGetMarket(w http.ResponseWriter, r *http.Request, eventID, market string) {
	if eventID == "" || market == "" {
		h.errorResponse(w, http.StatusBadRequest, "event_id and market are required")
		return
	}

	found, err := h.service.GetMarket(r.Context(), eventID, market)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Str("event_id", eventID).
			Str("market", market).
			Msg("market not found")
		h.errorResponse(w, http.StatusNotFound, "market not found")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"event_id": eventID,
		"market":   found,
	})
}

// jsonResponse writes a JSON response
func (h *CatalogueHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes a JSON error response
func (h *CatalogueHandler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}
