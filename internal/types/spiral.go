package types

// SpiralWeatherPoint is one sampled location from the spiral weather
// search with its fetched data and the aggregates used for ranking.
// Averages are taken over the first 40 forecast entries.
type SpiralWeatherPoint struct {
	Location      Location            `json:"location"`
	Name          string              `json:"name"`
	Forecast      *Forecast           `json:"forecast"`
	AirPollution  []AirPollutionEntry `json:"airPollution"`
	AvgTemp       float64             `json:"avgTemp"`
	AvgAQI        float64             `json:"avgAQI"`
	AvgWindSpeed  float64             `json:"avgWindSpeed"`
	AvgCloudCover float64             `json:"avgCloudCover"`
	AvgHumidity   float64             `json:"avgHumidity"`
}

// SpiralCache is the stored result set for the spiral search.
type SpiralCache struct {
	Points    []SpiralWeatherPoint `json:"points"`
	Timestamp int64                `json:"timestamp"`
}
