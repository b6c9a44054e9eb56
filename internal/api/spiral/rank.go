package spiral

import (
	"sort"
	"strings"

	"github.com/viatorai/viator-assistant/internal/types"
)

// rank orders points by how well they match the preference phrase and
// returns the best 5. The input slice is not modified. An unrecognized
// preference falls back to coolest-first.
func rank(points []types.SpiralWeatherPoint, preference string) []types.SpiralWeatherPoint {
	ranked := make([]types.SpiralWeatherPoint, len(points))
	copy(ranked, points)

	less := comparator(strings.ToLower(preference))
	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})

	if len(ranked) > topResults {
		ranked = ranked[:topResults]
	}
	return ranked
}

func comparator(pref string) func(a, b types.SpiralWeatherPoint) bool {
	switch {
	case strings.Contains(pref, "rainy") || strings.Contains(pref, "precipitation"):
		return func(a, b types.SpiralWeatherPoint) bool {
			return totalRain(a) > totalRain(b)
		}
	case strings.Contains(pref, "cool") || strings.Contains(pref, "cold") || strings.Contains(pref, "not hot"):
		return func(a, b types.SpiralWeatherPoint) bool { return a.AvgTemp < b.AvgTemp }
	case strings.Contains(pref, "warm") || strings.Contains(pref, "hot"):
		return func(a, b types.SpiralWeatherPoint) bool { return a.AvgTemp > b.AvgTemp }
	case strings.Contains(pref, "air pollution less") || strings.Contains(pref, "clean air") || strings.Contains(pref, "good air"):
		return func(a, b types.SpiralWeatherPoint) bool { return a.AvgAQI < b.AvgAQI }
	case strings.Contains(pref, "windy"):
		return func(a, b types.SpiralWeatherPoint) bool { return a.AvgWindSpeed > b.AvgWindSpeed }
	case strings.Contains(pref, "sunny"):
		return func(a, b types.SpiralWeatherPoint) bool { return a.AvgCloudCover < b.AvgCloudCover }
	case strings.Contains(pref, "humid"):
		return func(a, b types.SpiralWeatherPoint) bool { return a.AvgHumidity > b.AvgHumidity }
	case strings.Contains(pref, "calm") || strings.Contains(pref, "low wind"):
		return func(a, b types.SpiralWeatherPoint) bool { return a.AvgWindSpeed < b.AvgWindSpeed }
	default:
		return func(a, b types.SpiralWeatherPoint) bool { return a.AvgTemp < b.AvgTemp }
	}
}

// totalRain sums forecast 3h rain volumes over the aggregation window.
func totalRain(point types.SpiralWeatherPoint) float64 {
	entries := point.Forecast.List
	if len(entries) > maxForecastEntries {
		entries = entries[:maxForecastEntries]
	}
	var total float64
	for _, entry := range entries {
		if entry.Rain != nil {
			total += entry.Rain.ThreeHours
		}
	}
	return total
}
