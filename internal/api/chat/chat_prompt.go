package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/viatorai/viator-assistant/internal/types"
)

// Canned replies for turns that never reach the language model.
const (
	greetingReply  = "Hey there! Hope you're having a great day. How can I help you?"
	howAreYouReply = "I'm doing great, thanks for asking! How about you?"
	thanksReply    = "You're very welcome! Let me know if you need anything else."
	refusalReply   = "Sorry, I can’t answer that! I’m built to help with weather, air quality, news updates, nearby activities, and travel planning. What else can I assist you with?"
	needSpotReply  = "Hmm, I need a spot to work with! Drop a marker or give me a place name like 'Paris', and I'll get going!"
	apologyReply   = "Yikes, something went off the rails. Let's try again soon!"
	emptyReply     = "Hey, I've got nothing yet—give me a place or a nudge!"
)

const helpGuide = `Here's what I can do for you:

1. **Plan travel** — "Plan a trip to Paris" or "Plan a trip to Paris for 7 days".
2. **Tell you about a place** — "Tell me about London" or "Tell me about this location" (weather, air quality, and news).
3. **List nearby activities** — "Things to do in Paris within 15 km" or "Things to do in this location".
4. **News updates** — "What are the updates regarding London?" or "Any recent news from Tokyo?".
5. **Quick checks** — "How's the air quality in this location?", "What's the 5-day forecast for Berlin?", "What should I wear in Oslo today?".
6. **Weather-based suggestions** — "What are some colder places I can go to?" or "I want to go somewhere sunny".

Drop a marker on the map or name a place, and I'll take it from there!`

// tripPlanInstruction tells the model the machine-readable shape for
// trip-planning replies so the post-processor can flatten it.
const tripPlanInstruction = "\nFor this trip plan, include a JSON object in your reply shaped as " +
	`{"front": "<one-line trip headline>", "second": "<practical overview paragraph>", "daily": ["Day 1: ...", "Day 2: ..."]} ` +
	"followed by nothing else inside the braces."

// historyPreamble seeds the model conversation with the assistant's
// capabilities and the coordinate context for this turn.
func historyPreamble(tempMarker, current *types.Location, dailyNewsLimit int, now time.Time) []types.ChatTurn {
	primer := fmt.Sprintf(`You're a friendly, chatty Map assistant who loves helping out with a warm, natural tone. You can:
1. Plan travel (e.g., "Plan a trip to Paris" or "Set a travel plan for Paris{location=temporary marker} for 7 days").
2. Share weather, air quality, and news info (e.g., "Tell me about the location{location=temporary marker}?" or "Tell me about London" or "Tell me about this location").
3. List nearby activities (e.g., "What are the things I can do in Paris (within 15 km)?" or "Things to do in this location").
4. Provide news updates (e.g., "What are the updates regarding London?").
5. Answer specific queries like:
   - "How's the air quality in this location?"
   - "What's the 5-day forecast for this location?"
   - "What should I wear in this location today?"
   - "Any recent news from this location?"
6. Suggest nearby locations based on weather preferences (e.g., "What are some colder places I can go to?" or "I want to go to someplace rainy").

When parsing commands:
- Respond with friendly greetings.
- Use temporary marker coordinates [%s] only when "temporary marker" or "this location" is explicitly mentioned.
- Use current location coordinates [%s] for "this location", "current location", or as the default when no specific place is mentioned.
- If a place name is given (e.g., "Paris" in "Things to do in Paris"), fetch its coordinates using the API.
- For "Tell me about..." or "Plan a trip to...":
  - Return weather and air quality as structured data for a widget card.
  - Include a natural text response with weather, health tips, clothing advice, local suggestions, and recent news (past week by default).
- For "What are the updates regarding..." or "Any recent news from...":
  - Provide a concise summary of news, defaulting to the past week unless a specific time range (e.g., "past 2 days", "last month") is mentioned.
- For "What are the things I can do in..." or "Things to do in/near...":
  - Parse for radius (default to 5 km if not specified).
  - Suggest up to 10 POIs within the specified radius.
- For weather preference queries like "What are some [condition] places I can go to?":
  - Use spiral weather data to suggest top 5 locations within 200km based on conditions (e.g., cold, warm, rainy, windy, sunny, humid, calm, clean air).
- Format naturally with bold text and bullet points.
- Use location names instead of coordinates in responses.
- Assume current date is %s.
- Limit news requests to %d per day; if exceeded, say "You've hit the daily news limit of %d requests—check back tomorrow!"
- If a question is outside these capabilities (e.g., historical events beyond news, specific event details), respond: "Sorry, I can’t answer that! I’m built to help with weather, air quality, news updates, nearby activities, and travel planning. What else can I assist you with?"`,
		coordsOrNotProvided(tempMarker),
		coordsOrNotProvided(current),
		now.UTC().Format("2006-01-02"),
		dailyNewsLimit, dailyNewsLimit)

	return []types.ChatTurn{
		{Role: "user", Parts: primer},
		{Role: "model", Parts: "Hey there! I'm your go-to buddy for weather, trips, news, and fun stuff to do. Give me a place or a question, and I'll help out!"},
	}
}

func coordsOrNotProvided(loc *types.Location) string {
	if loc == nil {
		return "not provided"
	}
	return fmt.Sprintf("%f, %f", loc.Lat, loc.Lng)
}

// spiralPrompt embeds the ranked suggestions for weather-preference
// turns.
func spiralPrompt(message string, pois []types.PointOfInterest) string {
	encoded, _ := json.Marshal(pois)
	return message +
		"\nSpiral Weather Data (top 5 locations within 200km):\n" + string(encoded) + "\n" +
		fmt.Sprintf("Provide a friendly response listing these locations with their weather details, matching the user's preference: %q.", message)
}

// promptContext is everything the enrichment phase collected for one
// turn.
type promptContext struct {
	message          string
	location         types.Location
	locationName     string
	radiusKm         float64
	newsDaysBack     int
	dailyNewsLimit   int
	flags            QueryFlags
	current          *types.CurrentWeather
	forecast         *types.Forecast
	currentAir       *types.AirPollution
	forecastAir      []types.AirPollutionEntry
	pois             []types.PointOfInterest
	news             []types.Article
	newsQuotaReached bool
}

// buildPrompt concatenates the raw message with the coordinate context
// and JSON/text renderings of whatever enrichment data was fetched.
func buildPrompt(pc promptContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\nCoordinates: [%f, %f]\nLocation name: %s",
		pc.message, pc.location.Lat, pc.location.Lng, pc.locationName)

	if pc.current != nil {
		sb.WriteString("\nWeather data: " + marshal(pc.current))
	}
	if pc.currentAir != nil {
		sb.WriteString("\nCurrent air pollution data: " + marshal(pc.currentAir))
	}
	if pc.forecastAir != nil {
		entries := pc.forecastAir
		if len(entries) > 24 {
			entries = entries[:24]
		}
		sb.WriteString("\nForecast air pollution data: " + marshal(entries))
	}
	if pc.pois != nil {
		fmt.Fprintf(&sb, "\nNearby POIs (within %g km): %s", pc.radiusKm, marshal(pc.pois))
	}
	if pc.forecast != nil {
		sb.WriteString("\n5-day weather forecast: " + marshal(pc.forecast))
	}

	if pc.flags.AirQuality && pc.currentAir != nil && len(pc.currentAir.List) > 0 {
		entry := pc.currentAir.List[0]
		fmt.Fprintf(&sb, "\nAir quality response: The air quality in %s is at AQI %d (%s). PM2.5: %g µg/m³, O3: %g µg/m³.",
			pc.locationName, entry.Main.AQI, aqiLabel(entry.Main.AQI), entry.Components.PM25, entry.Components.O3)
	}
	if pc.flags.Forecast && pc.forecast != nil {
		sb.WriteString("\nForecast response: " + formatForecast(pc.forecast, pc.locationName))
	}
	if pc.flags.Clothing && pc.current != nil {
		sb.WriteString("\nClothing response: " + suggestClothing(pc.current, pc.locationName))
	}
	if pc.news != nil {
		fmt.Fprintf(&sb, "\nRecent news (past %d days):\n%s", pc.newsDaysBack, formatNewsSummary(pc.news, pc.locationName, pc.newsDaysBack))
	} else if pc.newsQuotaReached {
		fmt.Fprintf(&sb, "\nNews: You've hit the daily news limit of %d requests—check back tomorrow!", pc.dailyNewsLimit)
	}

	if pc.flags.TripPlanning {
		sb.WriteString(tripPlanInstruction)
	}
	return sb.String()
}

func marshal(v any) string {
	encoded, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(encoded)
}
