package geocoding

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/viatorai/viator-assistant/internal/api"
	"github.com/viatorai/viator-assistant/internal/types"
)

type Handler struct {
	geocodingService Service
	logger           *slog.Logger
}

func NewHandler(geocodingService Service, logger *slog.Logger) *Handler {
	return &Handler{
		geocodingService: geocodingService,
		logger:           logger,
	}
}

// Forward handles GET /geocoding/forward?place=...
func (h *Handler) Forward(w http.ResponseWriter, r *http.Request) {
	place := r.URL.Query().Get("place")
	if place == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "place is required")
		return
	}

	result, err := h.geocodingService.Forward(r.Context(), place)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Forward geocoding failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, "geocoding lookup failed")
		return
	}
	if result == nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "no match for that place")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// Reverse handles GET /geocoding/reverse?lat=...&lon=...
func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLng != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "lat and lon are required")
		return
	}
	loc := types.Location{Lat: lat, Lng: lng}
	if !loc.Valid() {
		api.ErrorResponse(w, r, http.StatusBadRequest, "coordinates out of bounds")
		return
	}

	name, err := h.geocodingService.Reverse(r.Context(), loc)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Reverse geocoding failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, "geocoding lookup failed")
		return
	}
	if name == "" {
		api.ErrorResponse(w, r, http.StatusNotFound, "no place at those coordinates")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"name": name})
}
