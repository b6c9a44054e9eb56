package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/viatorai/viator-assistant/app/observability/metrics"
	"github.com/viatorai/viator-assistant/internal/types"
)

// At most this many raw elements are returned per query.
const maxElements = 10

var whitespace = regexp.MustCompile(`\s+`)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service finds nearby points of interest via an Overpass query unioning
// the five categories the assistant suggests (attractions, restaurants,
// parks, pubs, museums).
type Service interface {
	Nearby(ctx context.Context, loc types.Location, radiusKm float64) ([]types.OverpassElement, error)
}

type ServiceImpl struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
}

func NewService(baseURL string, timeout time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Nearby returns up to 10 elements within radiusKm of loc, or (nil, nil)
// when the area has none.
func (s *ServiceImpl) Nearby(ctx context.Context, loc types.Location, radiusKm float64) ([]types.OverpassElement, error) {
	if !loc.Valid() {
		return nil, fmt.Errorf("coordinates out of bounds: [%f, %f]", loc.Lat, loc.Lng)
	}

	query := buildQuery(loc, radiusKm)
	form := url.Values{}
	form.Set("data", query)

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.RecordUpstream(ctx, "overpass", "error", time.Since(start))
		return nil, fmt.Errorf("overpass request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordUpstream(ctx, "overpass", "error", time.Since(start))
		body, _ := io.ReadAll(resp.Body)
		s.logger.ErrorContext(ctx, "Overpass API error",
			slog.Int("status", resp.StatusCode),
			slog.String("body", truncate(string(body), 200)))
		return nil, fmt.Errorf("overpass returned status %d", resp.StatusCode)
	}

	var data types.OverpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		metrics.RecordUpstream(ctx, "overpass", "error", time.Since(start))
		return nil, fmt.Errorf("failed to decode overpass response: %w", err)
	}
	metrics.RecordUpstream(ctx, "overpass", "ok", time.Since(start))

	if len(data.Elements) == 0 {
		return nil, nil
	}
	if len(data.Elements) > maxElements {
		return data.Elements[:maxElements], nil
	}
	return data.Elements, nil
}

func buildQuery(loc types.Location, radiusKm float64) string {
	radiusMeters := radiusKm * 1000
	query := fmt.Sprintf(`[out:json][timeout:25];
(
  node["tourism"="attraction"](around:%[1]f,%[2]f,%[3]f);
  node["amenity"="restaurant"](around:%[1]f,%[2]f,%[3]f);
  node["leisure"="park"](around:%[1]f,%[2]f,%[3]f);
  node["amenity"="pub"](around:%[1]f,%[2]f,%[3]f);
  node["tourism"="museum"](around:%[1]f,%[2]f,%[3]f);
);
out body;`, radiusMeters, loc.Lat, loc.Lng)
	return whitespace.ReplaceAllString(query, " ")
}

func truncate(str string, num int) string {
	if len(str) > num {
		return str[0:num] + "..."
	}
	return str
}
