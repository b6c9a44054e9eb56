package spiral

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/viatorai/viator-assistant/internal/api/geocoding"
	"github.com/viatorai/viator-assistant/internal/api/weather"
	"github.com/viatorai/viator-assistant/internal/kvstore"
	"github.com/viatorai/viator-assistant/internal/types"
)

// cacheKey is deliberately global rather than keyed by center: results
// computed for one center are reused for any center until the TTL
// lapses. Known fidelity limitation carried over from the product.
const cacheKey = "spiral_weather_cache"

// aggregation window over the 5-day/3-hour forecast
const maxForecastEntries = 40

const topResults = 5

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service surveys weather conditions on a spiral around a center point
// and ranks the sampled locations against a free-text preference.
type Service interface {
	Locate(ctx context.Context, center types.Location, preference string) ([]types.SpiralWeatherPoint, error)
	Format(point types.SpiralWeatherPoint) types.WeatherData
}

type ServiceImpl struct {
	logger      *slog.Logger
	weather     weather.Service
	geocoder    geocoding.Service
	store       kvstore.Store
	radiusKm    float64
	numPoints   int
	concurrency int
	cacheTTL    time.Duration
	now         func() time.Time
}

func NewService(weatherSvc weather.Service, geocoder geocoding.Service, store kvstore.Store,
	radiusKm float64, numPoints, concurrency int, cacheTTL time.Duration, logger *slog.Logger) *ServiceImpl {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &ServiceImpl{
		logger:      logger,
		weather:     weatherSvc,
		geocoder:    geocoder,
		store:       store,
		radiusKm:    radiusKm,
		numPoints:   numPoints,
		concurrency: concurrency,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

// Locate returns the top 5 sampled points ranked by the preference. The
// sampled set is served from the cache when fresh; otherwise every point
// is fetched with bounded concurrency and a point is dropped entirely if
// either of its fetches fails or comes back empty.
func (s *ServiceImpl) Locate(ctx context.Context, center types.Location, preference string) ([]types.SpiralWeatherPoint, error) {
	if points := s.cachedPoints(ctx); points != nil {
		return rank(points, preference), nil
	}

	points, err := s.survey(ctx, center)
	if err != nil {
		return nil, err
	}

	if len(points) > 0 {
		entry := types.SpiralCache{Points: points, Timestamp: s.now().UnixMilli()}
		if err := s.store.Set(ctx, cacheKey, entry, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "Spiral cache write failed", slog.Any("error", err))
		}
	}

	return rank(points, preference), nil
}

func (s *ServiceImpl) cachedPoints(ctx context.Context) []types.SpiralWeatherPoint {
	var cached types.SpiralCache
	found, err := s.store.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.logger.WarnContext(ctx, "Spiral cache read failed", slog.Any("error", err))
		return nil
	}
	if !found || s.now().UnixMilli()-cached.Timestamp > s.cacheTTL.Milliseconds() {
		return nil
	}
	return cached.Points
}

func (s *ServiceImpl) survey(ctx context.Context, center types.Location) ([]types.SpiralWeatherPoint, error) {
	candidates := generatePoints(center, s.radiusKm, s.numPoints)

	var (
		mu     sync.Mutex
		points []types.SpiralWeatherPoint
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, candidate := range candidates {
		g.Go(func() error {
			point, ok := s.samplePoint(gctx, candidate)
			if !ok {
				return nil
			}
			mu.Lock()
			points = append(points, point)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Spiral survey complete",
		slog.Int("candidates", len(candidates)),
		slog.Int("retained", len(points)))
	return points, nil
}

// samplePoint fetches forecast and pollution for one candidate and
// aggregates it. A candidate is discarded on any fetch failure or empty
// payload rather than failing the whole survey.
func (s *ServiceImpl) samplePoint(ctx context.Context, loc types.Location) (types.SpiralWeatherPoint, bool) {
	forecast, err := s.weather.Forecast(ctx, loc)
	if err != nil || forecast == nil || len(forecast.List) == 0 {
		if err != nil {
			s.logger.WarnContext(ctx, "Spiral forecast fetch failed",
				slog.Float64("lat", loc.Lat), slog.Float64("lng", loc.Lng), slog.Any("error", err))
		}
		return types.SpiralWeatherPoint{}, false
	}

	pollution, err := s.weather.ForecastAirPollution(ctx, loc)
	if err != nil || len(pollution) == 0 {
		if err != nil {
			s.logger.WarnContext(ctx, "Spiral air pollution fetch failed",
				slog.Float64("lat", loc.Lat), slog.Float64("lng", loc.Lng), slog.Any("error", err))
		}
		return types.SpiralWeatherPoint{}, false
	}

	name, err := s.geocoder.Reverse(ctx, loc)
	if err != nil || name == "" {
		name = "Unknown Location"
	}

	point := types.SpiralWeatherPoint{
		Location:     loc,
		Name:         name,
		Forecast:     forecast,
		AirPollution: pollution,
	}
	aggregate(&point)
	return point, true
}

// aggregate fills the ranking averages from the first 40 entries (or
// fewer when the forecast window is short).
func aggregate(point *types.SpiralWeatherPoint) {
	entries := point.Forecast.List
	if len(entries) > maxForecastEntries {
		entries = entries[:maxForecastEntries]
	}
	pollution := point.AirPollution
	if len(pollution) > maxForecastEntries {
		pollution = pollution[:maxForecastEntries]
	}

	var temp, wind, clouds, humidity float64
	for _, entry := range entries {
		temp += entry.Main.Temp
		wind += entry.Wind.Speed
		clouds += entry.Clouds.All
		humidity += entry.Main.Humidity
	}
	n := float64(len(entries))
	point.AvgTemp = temp / n
	point.AvgWindSpeed = wind / n
	point.AvgCloudCover = clouds / n
	point.AvgHumidity = humidity / n

	var aqi float64
	for _, entry := range pollution {
		aqi += float64(entry.Main.AQI)
	}
	point.AvgAQI = aqi / float64(len(pollution))
}

// Format turns a sampled point into the weather-card bundle the UI
// renders: every 8th forecast entry (one per day), min/max over the
// aggregation window, air quality from the first pollution entry.
func (s *ServiceImpl) Format(point types.SpiralWeatherPoint) types.WeatherData {
	entries := point.Forecast.List
	if len(entries) > maxForecastEntries {
		entries = entries[:maxForecastEntries]
	}
	first := entries[0]

	minTemp, maxTemp := entries[0].Main.TempMin, entries[0].Main.TempMax
	for _, entry := range entries[1:] {
		minTemp = min(minTemp, entry.Main.TempMin)
		maxTemp = max(maxTemp, entry.Main.TempMax)
	}

	var days []types.DayForecast
	for i, entry := range entries {
		if i%8 != 0 {
			continue
		}
		condition := types.WeatherCondition{}
		if len(entry.Weather) > 0 {
			condition = entry.Weather[0]
		}
		days = append(days, types.DayForecast{
			Dt: entry.Dt,
			Temp: types.DayTemp{
				Day:   entry.Main.Temp,
				Min:   entry.Main.TempMin,
				Max:   entry.Main.TempMax,
				Night: entry.Main.Temp,
			},
			Weather:  condition,
			Pop:      entry.Pop,
			Humidity: entry.Main.Humidity,
		})
	}

	description := ""
	if len(first.Weather) > 0 {
		description = first.Weather[0].Description
	}

	return types.WeatherData{
		City: types.CityInfo{
			Name:     point.Name,
			Country:  countryOrUnknown(point.Forecast.City.Country),
			Sunrise:  point.Forecast.City.Sunrise,
			Sunset:   point.Forecast.City.Sunset,
			Timezone: point.Forecast.City.Timezone,
		},
		Temperature: types.Temperature{
			Value:     first.Main.Temp,
			Min:       minTemp,
			Max:       maxTemp,
			FeelsLike: first.Main.FeelsLike,
			Unit:      "C",
		},
		Humidity: types.UnitValue{Value: first.Main.Humidity, Unit: "%"},
		Pressure: types.UnitValue{Value: first.Main.Pressure, Unit: "hPa"},
		Wind: types.Wind{
			Speed: types.WindSpeed{Value: first.Wind.Speed, Unit: "m/s", Name: "Light Breeze"},
			Direction: types.WindDirection{
				Value: first.Wind.Deg,
				Code:  weather.WindDirectionCode(first.Wind.Deg),
				Name:  weather.WindDirectionName(first.Wind.Deg),
			},
		},
		Clouds:     types.NamedValue{Value: first.Clouds.All, Name: description},
		Visibility: types.Visibility{Value: first.Visibility / 1000},
		AirQuality: types.AirQuality{
			Index:      point.AirPollution[0].Main.AQI,
			Components: point.AirPollution[0].Components,
		},
		Forecast: days,
	}
}

func countryOrUnknown(country string) string {
	if country == "" {
		return "Unknown"
	}
	return country
}
