package types

// CategoryWeatherSuggestion marks POIs produced by the spiral weather
// search rather than the Overpass query. For these, Priority carries the
// 1-based rank of the suggestion.
const CategoryWeatherSuggestion = "Weather Suggestion"

// PointOfInterest is a named, categorized, geolocated place shown as a
// map marker. One set is produced per assistant turn and replaces the
// previous set in the UI.
type PointOfInterest struct {
	ID       string  `json:"id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Priority int     `json:"priority,omitempty"`
}
