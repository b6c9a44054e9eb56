package spiral

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/viatorai/viator-assistant/internal/api"
	"github.com/viatorai/viator-assistant/internal/types"
)

type Handler struct {
	spiralService Service
	logger        *slog.Logger
}

func NewHandler(spiralService Service, logger *slog.Logger) *Handler {
	return &Handler{
		spiralService: spiralService,
		logger:        logger,
	}
}

// GetSuggestions handles GET /spiral-weather?lat=...&lon=...&preference=...
// and returns the ranked points with their weather cards.
func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLng != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "lat and lon are required")
		return
	}
	center := types.Location{Lat: lat, Lng: lng}
	if !center.Valid() {
		api.ErrorResponse(w, r, http.StatusBadRequest, "coordinates out of bounds")
		return
	}
	preference := r.URL.Query().Get("preference")

	points, err := h.spiralService.Locate(r.Context(), center, preference)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Spiral weather survey failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, "weather survey failed")
		return
	}

	type suggestion struct {
		Location types.Location    `json:"location"`
		Name     string            `json:"name"`
		Priority int               `json:"priority"`
		Weather  types.WeatherData `json:"weather"`
	}
	suggestions := make([]suggestion, 0, len(points))
	for i, point := range points {
		suggestions = append(suggestions, suggestion{
			Location: point.Location,
			Name:     point.Name,
			Priority: i + 1,
			Weather:  h.spiralService.Format(point),
		})
	}
	api.WriteJSONResponse(w, r, http.StatusOK, suggestions)
}
