package types

// WeatherData is the normalized weather-widget bundle combining current
// conditions, forecast entries and air-quality components for one place.
//
// Note: temperature.value comes from the current-conditions call while
// min/max come from the forecast call, so value is not guaranteed to sit
// inside [min, max].
type WeatherData struct {
	City        CityInfo      `json:"city"`
	Temperature Temperature   `json:"temperature"`
	Humidity    UnitValue     `json:"humidity"`
	Pressure    UnitValue     `json:"pressure"`
	Wind        Wind          `json:"wind"`
	Clouds      NamedValue    `json:"clouds"`
	Visibility  Visibility    `json:"visibility"`
	AirQuality  AirQuality    `json:"airQuality"`
	Forecast    []DayForecast `json:"forecast"`
}

type CityInfo struct {
	Name     string `json:"name"`
	Country  string `json:"country"`
	Sunrise  int64  `json:"sunrise"`
	Sunset   int64  `json:"sunset"`
	Timezone int    `json:"timezone"`
}

type Temperature struct {
	Value     float64 `json:"value"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	FeelsLike float64 `json:"feels_like"`
	Unit      string  `json:"unit"`
}

type UnitValue struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Wind struct {
	Speed     WindSpeed     `json:"speed"`
	Direction WindDirection `json:"direction"`
}

type WindSpeed struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	Name  string  `json:"name"`
}

type WindDirection struct {
	Value float64 `json:"value"`
	Code  string  `json:"code"`
	Name  string  `json:"name"`
}

type NamedValue struct {
	Value float64 `json:"value"`
	Name  string  `json:"name"`
}

type Visibility struct {
	Value float64 `json:"value"`
}

type AirQuality struct {
	Index      int           `json:"index"`
	Components AirComponents `json:"components"`
}

type AirComponents struct {
	CO   float64 `json:"co"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
}

type DayForecast struct {
	Dt       int64            `json:"dt"`
	Temp     DayTemp          `json:"temp"`
	Weather  WeatherCondition `json:"weather"`
	Pop      float64          `json:"pop"`
	Humidity float64          `json:"humidity"`
}

type DayTemp struct {
	Day   float64 `json:"day"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Night float64 `json:"night"`
}

type WeatherCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}
