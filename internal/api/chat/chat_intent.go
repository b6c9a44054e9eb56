package chat

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent is the coarse routing decision for one user message. Exactly
// one intent is produced per message; precedence is the order the
// checks run in Classify.
type Intent int

const (
	// IntentQuery is the catch-all for supported questions that go
	// through location resolution, enrichment and the language model.
	IntentQuery Intent = iota
	IntentHelp
	IntentGreeting
	IntentHowAreYou
	IntentThanks
	IntentUnsupported
	IntentWeatherPreference
)

func (i Intent) String() string {
	switch i {
	case IntentHelp:
		return "help"
	case IntentGreeting:
		return "greeting"
	case IntentHowAreYou:
		return "how_are_you"
	case IntentThanks:
		return "thanks"
	case IntentUnsupported:
		return "unsupported"
	case IntentWeatherPreference:
		return "weather_preference"
	default:
		return "query"
	}
}

// QueryFlags are the non-exclusive topic markers that drive enrichment
// for IntentQuery messages. A message can set several at once, e.g. a
// trip-planning message that also asks for the 5-day forecast.
type QueryFlags struct {
	ThingsToDo      bool
	TripPlanning    bool
	TellMeAbout     bool
	NewsUpdates     bool
	TempMarker      bool
	CurrentLocation bool
	AirQuality      bool
	Forecast        bool
	Clothing        bool
	WeatherInfo     bool
	AppFeature      bool
}

// RequiresLocation reports whether the message needs resolved
// coordinates before enrichment can run. Terminology and app-feature
// questions are answered without one.
func (f QueryFlags) RequiresLocation() bool {
	return f.ThingsToDo || f.TripPlanning || f.TellMeAbout || f.NewsUpdates ||
		f.AirQuality || f.Forecast || f.Clothing
}

func (f QueryFlags) supported() bool {
	return f.ThingsToDo || f.TripPlanning || f.TellMeAbout || f.NewsUpdates ||
		f.AirQuality || f.Forecast || f.Clothing || f.WeatherInfo || f.AppFeature
}

var (
	greetingRe    = regexp.MustCompile(`^(hello|hi|hey|good (morning|afternoon|evening|night))\b`)
	howAreYouRe   = regexp.MustCompile(`\b(how are you|how's it going|how have you been)\b`)
	thanksRe      = regexp.MustCompile(`\b(thank you|thanks|appreciate it)\b`)
	weatherInfoRe = regexp.MustCompile(`\bwhat (is|does) (aqi|an? air quality index|humidity|air pressure|dew point|uv index)\b`)
	appFeatureRe  = regexp.MustCompile(`\b(what can you do|what do you do|how do i use)\b`)

	radiusRe    = regexp.MustCompile(`(?i)within\s+(\d+\.?\d*)\s*(km|m)\b`)
	timeRangeRe = regexp.MustCompile(`(?i)(past|last)\s+(\d+)\s+(day|days|month|months)`)

	// Captures the place name after a keyword anchor, consuming up to
	// the first terminator (marker tag, question mark, duration or
	// radius suffix, coordinate tag, or end of message).
	placeRe = regexp.MustCompile(`(?i)(?:things to do in|things to do near|about|for|to|regarding|in|from)\s+([A-Za-z\s]+?)(?:\{location=temporary marker\}|\?|\s+for\s+\d+\s+days|\s+within\s+\d+\.?\d*\s*(?:km|m)|\s+at\s+\[|$)`)
)

// Classify routes a message to exactly one intent, first match wins:
// help, then the small-talk patterns, then the refusal for unsupported
// topics, then weather-preference, and finally the generic query path.
// The returned flags are only meaningful for IntentQuery and
// IntentWeatherPreference.
func Classify(message string) (Intent, QueryFlags) {
	lower := strings.ToLower(message)
	flags := classifyFlags(lower)

	switch {
	case strings.TrimSpace(lower) == "help":
		return IntentHelp, flags
	case greetingRe.MatchString(lower):
		return IntentGreeting, flags
	case howAreYouRe.MatchString(lower):
		return IntentHowAreYou, flags
	case thanksRe.MatchString(lower):
		return IntentThanks, flags
	}

	unsupported := strings.Contains(lower, "what happened") ||
		strings.Contains(lower, "events coming up") ||
		strings.Contains(lower, "restaurants") ||
		(!flags.supported() && !isWeatherPreference(lower) && !strings.Contains(lower, "remind me"))
	if unsupported && !flags.TempMarker && !flags.CurrentLocation {
		return IntentUnsupported, flags
	}

	if isWeatherPreference(lower) {
		return IntentWeatherPreference, flags
	}
	return IntentQuery, flags
}

func classifyFlags(lower string) QueryFlags {
	return QueryFlags{
		ThingsToDo: strings.Contains(lower, "things i can do in") ||
			strings.Contains(lower, "things to do in") ||
			strings.Contains(lower, "things to do near"),
		TripPlanning: strings.Contains(lower, "plan a trip to"),
		TellMeAbout:  strings.Contains(lower, "tell me about"),
		NewsUpdates: strings.Contains(lower, "what are the updates regarding") ||
			strings.Contains(lower, "any recent news from"),
		TempMarker: strings.Contains(lower, "temporary marker") ||
			strings.Contains(lower, "this location"),
		CurrentLocation: strings.Contains(lower, "current location"),
		AirQuality:      strings.Contains(lower, "how's the air quality"),
		Forecast:        strings.Contains(lower, "5-day forecast"),
		Clothing:        strings.Contains(lower, "what should i wear"),
		WeatherInfo:     weatherInfoRe.MatchString(lower),
		AppFeature:      appFeatureRe.MatchString(lower),
	}
}

func isWeatherPreference(lower string) bool {
	return strings.Contains(lower, "someplace") ||
		strings.Contains(lower, "somewhere") ||
		strings.Contains(lower, "place where") ||
		strings.Contains(lower, "what are some")
}

// extractPlaceName pulls a free-text place name out of the message, or
// "" when no anchor matches.
func extractPlaceName(message string) string {
	match := placeRe.FindStringSubmatch(message)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// parseRadiusKm reads a "within N km" or "within N m" suffix, falling
// back to 5 km. Meter values are normalized to kilometers.
func parseRadiusKm(message string) float64 {
	match := radiusRe.FindStringSubmatch(message)
	if match == nil {
		return 5
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 5
	}
	if strings.ToLower(match[2]) == "m" {
		return value / 1000
	}
	return value
}

// parseNewsDaysBack reads a "past/last N days/months" phrase, falling
// back to 7 days. Months count as 30 days.
func parseNewsDaysBack(message string) int {
	match := timeRangeRe.FindStringSubmatch(message)
	if match == nil {
		return 7
	}
	quantity, err := strconv.Atoi(match[2])
	if err != nil {
		return 7
	}
	if strings.Contains(strings.ToLower(match[3]), "month") {
		return quantity * 30
	}
	return quantity
}
