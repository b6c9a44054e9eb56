package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    Intent
	}{
		{"help exact match", "help", IntentHelp},
		{"help with whitespace", "  Help  ", IntentHelp},
		{"greeting hello", "Hello there", IntentGreeting},
		{"greeting good morning", "good morning!", IntentGreeting},
		{"how are you", "So, how are you today?", IntentHowAreYou},
		{"thanks", "thanks a lot", IntentThanks},
		{"thank you", "Thank you so much", IntentThanks},
		{"unsupported what happened", "What happened in Rome in 44 BC?", IntentUnsupported},
		{"unsupported events", "Any events coming up in Berlin?", IntentUnsupported},
		{"unsupported restaurants", "Best restaurants in Lisbon", IntentUnsupported},
		{"unsupported gibberish", "recite a poem about socks", IntentUnsupported},
		{"weather preference someplace", "I want to go to someplace rainy", IntentWeatherPreference},
		{"weather preference what are some", "What are some colder places I can go to?", IntentWeatherPreference},
		{"tell me about", "Tell me about London", IntentQuery},
		{"trip planning", "Plan a trip to Paris for 7 days", IntentQuery},
		{"things to do", "Things to do in Porto within 10 km", IntentQuery},
		{"news updates", "Any recent news from Tokyo?", IntentQuery},
		{"air quality", "How's the air quality in this location?", IntentQuery},
		{"forecast", "What's the 5-day forecast for Berlin?", IntentQuery},
		{"clothing", "What should I wear in Oslo today?", IntentQuery},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := Classify(tc.message)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	t.Run("greeting wins over supported topic", func(t *testing.T) {
		got, _ := Classify("Hey, tell me about London")
		assert.Equal(t, IntentGreeting, got)
	})

	t.Run("marker reference escapes the refusal", func(t *testing.T) {
		got, flags := Classify("What happened at this location?")
		assert.NotEqual(t, IntentUnsupported, got)
		assert.True(t, flags.TempMarker)
	})
}

func TestClassifyFlags(t *testing.T) {
	_, flags := Classify("Plan a trip to Paris and give me the 5-day forecast")
	assert.True(t, flags.TripPlanning)
	assert.True(t, flags.Forecast)
	assert.False(t, flags.TellMeAbout)

	_, flags = Classify("Tell me about this location")
	assert.True(t, flags.TellMeAbout)
	assert.True(t, flags.TempMarker)

	_, flags = Classify("What is humidity?")
	assert.True(t, flags.WeatherInfo)
	assert.False(t, flags.RequiresLocation())

	_, flags = Classify("What can you do?")
	assert.True(t, flags.AppFeature)
	assert.False(t, flags.RequiresLocation())
}

func TestExtractPlaceName(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"Tell me about London", "London"},
		{"Plan a trip to Paris for 7 days", "Paris"},
		{"Things to do in New York within 10 km", "New York"},
		{"What are the updates regarding Lisbon?", "Lisbon"},
		{"Tell me about Rio de Janeiro{location=temporary marker}", "Rio de Janeiro"},
		{"hello world no anchor here", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, extractPlaceName(tc.message), "message: %s", tc.message)
	}
}

func TestParseRadiusKm(t *testing.T) {
	assert.Equal(t, 10.0, parseRadiusKm("things to do in Porto within 10 km"))
	assert.Equal(t, 0.5, parseRadiusKm("things to do here within 500 m"))
	assert.Equal(t, 2.5, parseRadiusKm("within 2.5 km please"))
	assert.Equal(t, 5.0, parseRadiusKm("things to do in Porto"))
}

func TestParseNewsDaysBack(t *testing.T) {
	assert.Equal(t, 2, parseNewsDaysBack("news from the past 2 days"))
	assert.Equal(t, 30, parseNewsDaysBack("updates from the last 1 month"))
	assert.Equal(t, 60, parseNewsDaysBack("news from the past 2 months"))
	assert.Equal(t, 7, parseNewsDaysBack("any recent news from Tokyo?"))
}
