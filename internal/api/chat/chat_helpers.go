package chat

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/viatorai/viator-assistant/internal/api/weather"
	"github.com/viatorai/viator-assistant/internal/types"
)

// formatNewsSummary renders up to five articles as the markdown rundown
// embedded in the prompt.
func formatNewsSummary(articles []types.Article, location string, daysBack int) string {
	if len(articles) == 0 {
		return fmt.Sprintf("No news found for %s in the past %d day%s.", location, daysBack, plural(daysBack))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Here’s a detailed rundown of the latest news for %s from the past %d day%s:\n\n", location, daysBack, plural(daysBack))
	for i, article := range articles {
		if i == 5 {
			break
		}
		published := article.PublishedAt
		date := published
		if parsed, err := time.Parse(time.RFC3339, published); err == nil {
			date = parsed.Format("Monday, January 2, 2006")
		}
		description := article.Description
		if description == "" {
			description = "No description available."
		}
		fmt.Fprintf(&sb, "**%d. %s** (Published by *%s* on %s)\n", i+1, article.Title, article.Source.Name, date)
		fmt.Fprintf(&sb, "%s\n\n", description)
	}
	return sb.String()
}

// formatForecast renders the first five forecast entries as a short
// per-day summary.
func formatForecast(forecast *types.Forecast, location string) string {
	if forecast == nil || len(forecast.List) == 0 {
		return fmt.Sprintf("No forecast data available for %s.", location)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Here’s the 5-day weather forecast for %s:\n\n", location)
	for i, entry := range forecast.List {
		if i == 5 {
			break
		}
		date := time.Unix(entry.Dt, 0).UTC().Format("Monday, Jan 2")
		description := ""
		if len(entry.Weather) > 0 {
			description = entry.Weather[0].Description
		}
		fmt.Fprintf(&sb, "**%s**: %g°C, %s, Humidity: %g%%\n", date, entry.Main.Temp, description, entry.Main.Humidity)
	}
	return sb.String()
}

// suggestClothing builds the clothing advice snippet from current
// conditions.
func suggestClothing(current *types.CurrentWeather, location string) string {
	if current == nil {
		return fmt.Sprintf("I don’t have the weather data for %s to suggest clothing.", location)
	}

	temp := current.Main.Temp
	description := ""
	if len(current.Weather) > 0 {
		description = strings.ToLower(current.Weather[0].Description)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Here’s what to wear in %s today (currently %g°C, %s):\n", location, temp, description)
	switch {
	case temp < 5:
		sb.WriteString("- Bundle up with a heavy coat, scarf, gloves, and warm layers.")
	case temp < 15:
		sb.WriteString("- A jacket or sweater with long pants should do the trick.")
	case temp < 25:
		sb.WriteString("- Light clothing like a t-shirt and jeans works well.")
	default:
		sb.WriteString("- Go for shorts, a t-shirt, and maybe some sunglasses!")
	}

	if strings.Contains(description, "rain") {
		sb.WriteString("\n- Don’t forget an umbrella or raincoat—it’s wet out there!")
	} else if strings.Contains(description, "clear") || strings.Contains(description, "sun") {
		sb.WriteString("\n- Sunscreen might be a good idea with all that sunshine.")
	}
	return sb.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// aqiLabel maps the provider's 1..5 index to its coarse label.
func aqiLabel(aqi int) string {
	switch aqi {
	case 5:
		return "Very Poor"
	case 4:
		return "Poor"
	case 3:
		return "Moderate"
	default:
		return "Good"
	}
}

// poisFromElements converts raw spatial-query elements into the POI
// shape the UI renders. Category falls back through the tag families
// the query unions over.
func poisFromElements(elements []types.OverpassElement) []types.PointOfInterest {
	if elements == nil {
		return nil
	}
	pois := make([]types.PointOfInterest, 0, len(elements))
	for _, el := range elements {
		name := el.Tags["name"]
		if name == "" {
			name = "Unnamed"
		}
		category := el.Tags["amenity"]
		if category == "" {
			category = el.Tags["leisure"]
		}
		if category == "" {
			category = el.Tags["tourism"]
		}
		if category == "" {
			category = "unknown"
		}
		pois = append(pois, types.PointOfInterest{
			ID:       strconv.FormatInt(el.ID, 10),
			Lat:      el.Lat,
			Lng:      el.Lon,
			Name:     name,
			Category: category,
		})
	}
	return pois
}

// buildWeatherCard assembles the widget card from the three raw
// provider payloads. Min/max deliberately come from the first forecast
// entry while the headline value comes from current conditions, so the
// headline can fall outside [min, max].
func buildWeatherCard(locationName string, current *types.CurrentWeather, air *types.AirPollution, forecast *types.Forecast) *types.WeatherData {
	country := current.Sys.Country
	if country == "" {
		country = "Unknown"
	}
	description := ""
	if len(current.Weather) > 0 {
		description = current.Weather[0].Description
	}

	var days []types.DayForecast
	for i, entry := range forecast.List {
		if i == 5 {
			break
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

	return &types.WeatherData{
		City: types.CityInfo{
			Name:     locationName,
			Country:  country,
			Sunrise:  current.Sys.Sunrise,
			Sunset:   current.Sys.Sunset,
			Timezone: current.Timezone,
		},
		Temperature: types.Temperature{
			Value:     current.Main.Temp,
			Min:       forecast.List[0].Main.TempMin,
			Max:       forecast.List[0].Main.TempMax,
			FeelsLike: current.Main.FeelsLike,
			Unit:      "C",
		},
		Humidity: types.UnitValue{Value: current.Main.Humidity, Unit: "%"},
		Pressure: types.UnitValue{Value: current.Main.Pressure, Unit: "hPa"},
		Wind: types.Wind{
			Speed: types.WindSpeed{Value: current.Wind.Speed, Unit: "m/s", Name: "Light Breeze"},
			Direction: types.WindDirection{
				Value: current.Wind.Deg,
				Code:  weather.WindDirectionCode(current.Wind.Deg),
				Name:  weather.WindDirectionName(current.Wind.Deg),
			},
		},
		Clouds:     types.NamedValue{Value: current.Clouds.All, Name: description},
		Visibility: types.Visibility{Value: current.Visibility / 1000},
		AirQuality: types.AirQuality{
			Index:      air.List[0].Main.AQI,
			Components: air.List[0].Components,
		},
		Forecast: days,
	}
}
