package places

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/viatorai/viator-assistant/internal/api"
	"github.com/viatorai/viator-assistant/internal/types"
)

type Handler struct {
	placesService Service
	logger        *slog.Logger
}

func NewHandler(placesService Service, logger *slog.Logger) *Handler {
	return &Handler{
		placesService: placesService,
		logger:        logger,
	}
}

// GetNearby handles GET /places?lat=...&lon=...&radiusKm=N.
func (h *Handler) GetNearby(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLng != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "lat and lon are required")
		return
	}
	loc := types.Location{Lat: lat, Lng: lng}

	radiusKm := 5.0
	if raw := r.URL.Query().Get("radiusKm"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "radiusKm must be a positive number")
			return
		}
		radiusKm = parsed
	}

	elements, err := h.placesService.Nearby(r.Context(), loc, radiusKm)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Nearby POI lookup failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, "places lookup failed")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{"elements": elements})
}
