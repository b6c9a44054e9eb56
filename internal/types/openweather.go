package types

// Raw OpenWeatherMap payloads. Only the fields the pipeline reads are
// declared; everything else the provider sends is dropped on decode.

// CurrentWeather is the /data/2.5/weather payload. The provider reports
// success with a numeric cod of 200.
type CurrentWeather struct {
	Cod        int                `json:"cod"`
	Name       string             `json:"name"`
	Timezone   int                `json:"timezone"`
	Visibility float64            `json:"visibility"`
	Main       WeatherMain        `json:"main"`
	Weather    []WeatherCondition `json:"weather"`
	Wind       WindReading        `json:"wind"`
	Clouds     CloudCover         `json:"clouds"`
	Sys        SysInfo            `json:"sys"`
}

// Forecast is the /data/2.5/forecast payload (5 day / 3 hour). Unlike the
// current-conditions endpoint, cod arrives as the string "200" here.
type Forecast struct {
	Cod  string          `json:"cod"`
	List []ForecastEntry `json:"list"`
	City ForecastCity    `json:"city"`
}

type ForecastEntry struct {
	Dt         int64              `json:"dt"`
	Main       WeatherMain        `json:"main"`
	Weather    []WeatherCondition `json:"weather"`
	Clouds     CloudCover         `json:"clouds"`
	Wind       WindReading        `json:"wind"`
	Visibility float64            `json:"visibility"`
	Pop        float64            `json:"pop"`
	Rain       *RainVolume        `json:"rain,omitempty"`
}

type RainVolume struct {
	ThreeHours float64 `json:"3h"`
}

type WeatherMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  float64 `json:"pressure"`
	Humidity  float64 `json:"humidity"`
}

type WindReading struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

type CloudCover struct {
	All float64 `json:"all"`
}

type SysInfo struct {
	Country string `json:"country"`
	Sunrise int64  `json:"sunrise"`
	Sunset  int64  `json:"sunset"`
}

type ForecastCity struct {
	Name     string `json:"name"`
	Country  string `json:"country"`
	Sunrise  int64  `json:"sunrise"`
	Sunset   int64  `json:"sunset"`
	Timezone int    `json:"timezone"`
}

// AirPollution is the /data/2.5/air_pollution{,/forecast} payload.
type AirPollution struct {
	List []AirPollutionEntry `json:"list"`
}

type AirPollutionEntry struct {
	Dt         int64         `json:"dt"`
	Main       AQIMain       `json:"main"`
	Components AirComponents `json:"components"`
}

// AQIMain carries the provider's 1..5 air quality index.
type AQIMain struct {
	AQI int `json:"aqi"`
}

// GeocodeResult is one hit from the /geo/1.0/direct and /geo/1.0/reverse
// endpoints.
type GeocodeResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
}
