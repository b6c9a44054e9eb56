package weather

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/viatorai/viator-assistant/internal/api"
	"github.com/viatorai/viator-assistant/internal/types"
)

type Handler struct {
	weatherService Service
	logger         *slog.Logger
}

func NewHandler(weatherService Service, logger *slog.Logger) *Handler {
	return &Handler{
		weatherService: weatherService,
		logger:         logger,
	}
}

// GetWeather handles GET /weather?type=...&lat=...&lon=... where type is
// one of current, forecast, air_pollution, air_pollution_forecast
// (default current). A provider rejection answers 404.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	loc, ok := parseLocation(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	var payload any
	var err error

	switch r.URL.Query().Get("type") {
	case "", "current":
		var data *types.CurrentWeather
		data, err = h.weatherService.Current(ctx, loc)
		if data != nil {
			payload = data
		}
	case "forecast":
		var data *types.Forecast
		data, err = h.weatherService.Forecast(ctx, loc)
		if data != nil {
			payload = data
		}
	case "air_pollution":
		var data *types.AirPollution
		data, err = h.weatherService.CurrentAirPollution(ctx, loc)
		if data != nil {
			payload = data
		}
	case "air_pollution_forecast":
		var data []types.AirPollutionEntry
		data, err = h.weatherService.ForecastAirPollution(ctx, loc)
		if data != nil {
			payload = data
		}
	default:
		api.ErrorResponse(w, r, http.StatusBadRequest, "unknown weather type")
		return
	}

	if err != nil {
		h.logger.ErrorContext(ctx, "Weather lookup failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, "weather lookup failed")
		return
	}
	if payload == nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "no weather data for that location")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, payload)
}

func parseLocation(w http.ResponseWriter, r *http.Request) (types.Location, bool) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLng != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "lat and lon are required")
		return types.Location{}, false
	}
	loc := types.Location{Lat: lat, Lng: lng}
	if !loc.Valid() {
		api.ErrorResponse(w, r, http.StatusBadRequest, "coordinates out of bounds")
		return types.Location{}, false
	}
	return loc, true
}
