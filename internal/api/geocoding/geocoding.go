package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/viatorai/viator-assistant/app/observability/metrics"
	"github.com/viatorai/viator-assistant/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service resolves place names to coordinates and back. Both lookups use
// only the provider's first result; an empty result set is reported as a
// nil/empty value, not an error.
type Service interface {
	Forward(ctx context.Context, placeName string) (*types.GeocodeResult, error)
	Reverse(ctx context.Context, loc types.Location) (string, error)
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

// Forward resolves a free-text place name. Returns (nil, nil) when the
// provider has no match.
func (s *ServiceImpl) Forward(ctx context.Context, placeName string) (*types.GeocodeResult, error) {
	query := url.Values{}
	query.Set("q", placeName)
	query.Set("limit", "1")
	query.Set("appid", s.apiKey)
	query.Set("lang", "en")

	results, err := s.fetch(ctx, s.baseURL+"/direct?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("forward geocoding %q: %w", placeName, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// Reverse resolves coordinates to a display name. Returns "" when the
// provider has no match.
func (s *ServiceImpl) Reverse(ctx context.Context, loc types.Location) (string, error) {
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%f", loc.Lat))
	query.Set("lon", fmt.Sprintf("%f", loc.Lng))
	query.Set("limit", "1")
	query.Set("appid", s.apiKey)
	query.Set("lang", "en")

	results, err := s.fetch(ctx, s.baseURL+"/reverse?"+query.Encode())
	if err != nil {
		return "", fmt.Errorf("reverse geocoding [%f, %f]: %w", loc.Lat, loc.Lng, err)
	}
	if len(results) == 0 {
		return "", nil
	}
	if results[0].Name == "" {
		return "this spot", nil
	}
	return results[0].Name, nil
}

func (s *ServiceImpl) fetch(ctx context.Context, rawURL string) ([]types.GeocodeResult, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.RecordUpstream(ctx, "geocoding", "error", time.Since(start))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordUpstream(ctx, "geocoding", "error", time.Since(start))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var results []types.GeocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		metrics.RecordUpstream(ctx, "geocoding", "error", time.Since(start))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	metrics.RecordUpstream(ctx, "geocoding", "ok", time.Since(start))
	return results, nil
}
