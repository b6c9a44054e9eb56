package weather

var windCodes = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

var windNames = []string{
	"North", "North-Northeast", "Northeast", "East-Northeast",
	"East", "East-Southeast", "Southeast", "South-Southeast",
	"South", "South-Southwest", "Southwest", "West-Southwest",
	"West", "West-Northwest", "Northwest", "North-Northwest",
}

func windIndex(degrees float64) int {
	idx := int((degrees+11.25)/22.5) % 16
	if idx < 0 {
		idx += 16
	}
	return idx
}

// WindDirectionCode maps a bearing in degrees to its 16-point compass
// abbreviation.
func WindDirectionCode(degrees float64) string {
	return windCodes[windIndex(degrees)]
}

// WindDirectionName maps a bearing in degrees to its 16-point compass
// name.
func WindDirectionName(degrees float64) string {
	return windNames[windIndex(degrees)]
}
