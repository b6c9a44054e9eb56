package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/viatorai/viator-assistant/app/observability/metrics"
	"github.com/viatorai/viator-assistant/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service wraps the four OpenWeatherMap endpoints the assistant uses.
// Each call validates the provider's own success marker and returns
// (nil, nil) when the provider answered but reported no usable data, so
// "fetch failed" and "empty data" stay distinguishable to callers.
type Service interface {
	Current(ctx context.Context, loc types.Location) (*types.CurrentWeather, error)
	Forecast(ctx context.Context, loc types.Location) (*types.Forecast, error)
	CurrentAirPollution(ctx context.Context, loc types.Location) (*types.AirPollution, error)
	ForecastAirPollution(ctx context.Context, loc types.Location) ([]types.AirPollutionEntry, error)
}

type ServiceImpl struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewService(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (s *ServiceImpl) Current(ctx context.Context, loc types.Location) (*types.CurrentWeather, error) {
	body, err := s.fetch(ctx, "/weather", loc, true)
	if err != nil {
		return nil, fmt.Errorf("fetching current weather: %w", err)
	}

	var data types.CurrentWeather
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decoding current weather: %w", err)
	}
	if data.Cod != http.StatusOK {
		s.logger.WarnContext(ctx, "Current weather lookup rejected by provider", slog.Int("cod", data.Cod))
		return nil, nil
	}
	return &data, nil
}

func (s *ServiceImpl) Forecast(ctx context.Context, loc types.Location) (*types.Forecast, error) {
	body, err := s.fetch(ctx, "/forecast", loc, true)
	if err != nil {
		return nil, fmt.Errorf("fetching forecast: %w", err)
	}

	var data types.Forecast
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decoding forecast: %w", err)
	}
	// The forecast endpoint reports cod as a string
	if data.Cod != "200" {
		s.logger.WarnContext(ctx, "Forecast lookup rejected by provider", slog.String("cod", data.Cod))
		return nil, nil
	}
	return &data, nil
}

func (s *ServiceImpl) CurrentAirPollution(ctx context.Context, loc types.Location) (*types.AirPollution, error) {
	body, err := s.fetch(ctx, "/air_pollution", loc, false)
	if err != nil {
		return nil, fmt.Errorf("fetching current air pollution: %w", err)
	}

	var data types.AirPollution
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decoding current air pollution: %w", err)
	}
	if len(data.List) == 0 {
		return nil, nil
	}
	return &data, nil
}

func (s *ServiceImpl) ForecastAirPollution(ctx context.Context, loc types.Location) ([]types.AirPollutionEntry, error) {
	body, err := s.fetch(ctx, "/air_pollution/forecast", loc, false)
	if err != nil {
		return nil, fmt.Errorf("fetching forecast air pollution: %w", err)
	}

	var data types.AirPollution
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decoding forecast air pollution: %w", err)
	}
	if len(data.List) == 0 {
		return nil, nil
	}
	return data.List, nil
}

func (s *ServiceImpl) fetch(ctx context.Context, path string, loc types.Location, metricUnits bool) ([]byte, error) {
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%f", loc.Lat))
	query.Set("lon", fmt.Sprintf("%f", loc.Lng))
	query.Set("appid", s.apiKey)
	query.Set("lang", "en")
	if metricUnits {
		query.Set("units", "metric")
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.RecordUpstream(ctx, "openweather", "error", time.Since(start))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordUpstream(ctx, "openweather", "error", time.Since(start))
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	metrics.RecordUpstream(ctx, "openweather", "ok", time.Since(start))
	return body, nil
}
