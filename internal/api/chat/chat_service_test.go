package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/viatorai/viator-assistant/internal/types"
)

type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Generate(ctx context.Context, history []types.ChatTurn, prompt string) (string, error) {
	args := m.Called(ctx, history, prompt)
	return args.String(0), args.Error(1)
}

type MockGeocodingService struct {
	mock.Mock
}

func (m *MockGeocodingService) Forward(ctx context.Context, placeName string) (*types.GeocodeResult, error) {
	args := m.Called(ctx, placeName)
	data, _ := args.Get(0).(*types.GeocodeResult)
	return data, args.Error(1)
}

func (m *MockGeocodingService) Reverse(ctx context.Context, loc types.Location) (string, error) {
	args := m.Called(ctx, loc)
	return args.String(0), args.Error(1)
}

type MockWeatherService struct {
	mock.Mock
}

func (m *MockWeatherService) Current(ctx context.Context, loc types.Location) (*types.CurrentWeather, error) {
	args := m.Called(ctx, loc)
	data, _ := args.Get(0).(*types.CurrentWeather)
	return data, args.Error(1)
}

func (m *MockWeatherService) Forecast(ctx context.Context, loc types.Location) (*types.Forecast, error) {
	args := m.Called(ctx, loc)
	data, _ := args.Get(0).(*types.Forecast)
	return data, args.Error(1)
}

func (m *MockWeatherService) CurrentAirPollution(ctx context.Context, loc types.Location) (*types.AirPollution, error) {
	args := m.Called(ctx, loc)
	data, _ := args.Get(0).(*types.AirPollution)
	return data, args.Error(1)
}

func (m *MockWeatherService) ForecastAirPollution(ctx context.Context, loc types.Location) ([]types.AirPollutionEntry, error) {
	args := m.Called(ctx, loc)
	data, _ := args.Get(0).([]types.AirPollutionEntry)
	return data, args.Error(1)
}

type MockPlacesService struct {
	mock.Mock
}

func (m *MockPlacesService) Nearby(ctx context.Context, loc types.Location, radiusKm float64) ([]types.OverpassElement, error) {
	args := m.Called(ctx, loc, radiusKm)
	data, _ := args.Get(0).([]types.OverpassElement)
	return data, args.Error(1)
}

type MockNewsService struct {
	mock.Mock
}

func (m *MockNewsService) ForLocation(ctx context.Context, location string, pageSize, daysBack int) ([]types.Article, error) {
	args := m.Called(ctx, location, pageSize, daysBack)
	data, _ := args.Get(0).([]types.Article)
	return data, args.Error(1)
}

func (m *MockNewsService) QuotaAvailable(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *MockNewsService) RecordRequest(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockNewsService) DailyLimit() int {
	return m.Called().Int(0)
}

type MockSpiralService struct {
	mock.Mock
}

func (m *MockSpiralService) Locate(ctx context.Context, center types.Location, preference string) ([]types.SpiralWeatherPoint, error) {
	args := m.Called(ctx, center, preference)
	data, _ := args.Get(0).([]types.SpiralWeatherPoint)
	return data, args.Error(1)
}

func (m *MockSpiralService) Format(point types.SpiralWeatherPoint) types.WeatherData {
	args := m.Called(point)
	return args.Get(0).(types.WeatherData)
}

type testDeps struct {
	llm      *MockLLM
	geocoder *MockGeocodingService
	weather  *MockWeatherService
	places   *MockPlacesService
	news     *MockNewsService
	spiral   *MockSpiralService
	service  *ServiceImpl
}

func newTestService(t *testing.T) *testDeps {
	t.Helper()
	d := &testDeps{
		llm:      new(MockLLM),
		geocoder: new(MockGeocodingService),
		weather:  new(MockWeatherService),
		places:   new(MockPlacesService),
		news:     new(MockNewsService),
		spiral:   new(MockSpiralService),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d.service = NewService(d.llm, d.geocoder, d.weather, d.places, d.news, d.spiral, 200, 10, logger)
	return d
}

// stubEnrichment makes every data-client call answer "no data" so a
// turn can reach prompt assembly without real fetches.
func (d *testDeps) stubEnrichment() {
	d.weather.On("Current", mock.Anything, mock.Anything).Return(nil, nil)
	d.weather.On("Forecast", mock.Anything, mock.Anything).Return(nil, nil)
	d.weather.On("CurrentAirPollution", mock.Anything, mock.Anything).Return(nil, nil)
	d.weather.On("ForecastAirPollution", mock.Anything, mock.Anything).Return(nil, nil)
	d.places.On("Nearby", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
}

func TestGetChatResponseCannedReplies(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"greeting", "Hello!", greetingReply},
		{"how are you", "how are you doing?", howAreYouReply},
		{"thanks", "thanks a bunch", thanksReply},
		{"refusal", "What happened in 1823?", refusalReply},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := newTestService(t)
			resp := d.service.GetChatResponse(context.Background(), tc.message, nil, nil)
			assert.Equal(t, tc.want, resp.Content)
			assert.Nil(t, resp.Data)
			d.llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
			d.weather.AssertNotCalled(t, "Current", mock.Anything, mock.Anything)
			d.news.AssertNotCalled(t, "ForLocation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("help guide", func(t *testing.T) {
		d := newTestService(t)
		resp := d.service.GetChatResponse(context.Background(), "help", nil, nil)
		assert.Contains(t, resp.Content, "Plan travel")
		assert.Nil(t, resp.Data)
		d.llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetChatResponseLocationErrors(t *testing.T) {
	t.Run("no location available", func(t *testing.T) {
		d := newTestService(t)
		resp := d.service.GetChatResponse(context.Background(), "Tell me about this location", nil, nil)
		assert.Equal(t, needSpotReply, resp.Content)
		assert.Nil(t, resp.Data)
	})

	t.Run("unresolvable place name", func(t *testing.T) {
		d := newTestService(t)
		d.geocoder.On("Forward", mock.Anything, "Qxyzzy").Return(nil, nil)

		resp := d.service.GetChatResponse(context.Background(), "Plan a trip to Qxyzzy", nil, nil)
		assert.Equal(t, `Oops, I couldn't find "Qxyzzy" on the map. Try another spot or drop a marker!`, resp.Content)
		assert.Nil(t, resp.Data)
		d.weather.AssertNotCalled(t, "Current", mock.Anything, mock.Anything)
		d.news.AssertNotCalled(t, "ForLocation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		d.llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetChatResponseThingsToDoRadius(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		wantRadius float64
	}{
		{"explicit km", "Things to do in Porto within 10 km", 10},
		{"meters normalized", "Things to do in Porto within 500 m", 0.5},
		{"default", "Things to do in Porto", 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := newTestService(t)
			loc := types.Location{Lat: 41.15, Lng: -8.61}
			d.geocoder.On("Forward", mock.Anything, "Porto").Return(&types.GeocodeResult{Name: "Porto", Lat: loc.Lat, Lon: loc.Lng}, nil)
			d.news.On("DailyLimit").Return(10)
			d.weather.On("Current", mock.Anything, loc).Return(nil, nil)
			d.weather.On("CurrentAirPollution", mock.Anything, loc).Return(nil, nil)
			d.weather.On("ForecastAirPollution", mock.Anything, loc).Return(nil, nil)
			d.places.On("Nearby", mock.Anything, loc, tc.wantRadius).Return([]types.OverpassElement{
				{ID: 7, Lat: 41.16, Lon: -8.62, Tags: map[string]string{"name": "Jardim", "leisure": "park"}},
			}, nil)
			d.llm.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("Lots to do!", nil)

			resp := d.service.GetChatResponse(context.Background(), tc.message, nil, nil)
			assert.Equal(t, "Lots to do!", resp.Content)
			require.NotNil(t, resp.Data)
			assert.Equal(t, tc.wantRadius, resp.Data.RadiusKm)
			require.Len(t, resp.Data.POIs, 1)
			assert.Equal(t, "Jardim", resp.Data.POIs[0].Name)
			assert.Equal(t, "park", resp.Data.POIs[0].Category)
			d.places.AssertExpectations(t)
		})
	}
}

func TestGetChatResponseWeatherPreference(t *testing.T) {
	d := newTestService(t)
	current := types.Location{Lat: 38.72, Lng: -9.14}

	points := []types.SpiralWeatherPoint{
		{Location: types.Location{Lat: 39, Lng: -9}, Name: "Alpha", AvgTemp: 5},
		{Location: types.Location{Lat: 39.5, Lng: -9.5}, Name: "Beta", AvgTemp: 8},
		{Location: types.Location{Lat: 40, Lng: -10}, Name: "Gamma", AvgTemp: 11},
	}
	message := "What are some colder places I can go to?"

	d.news.On("DailyLimit").Return(10)
	d.geocoder.On("Reverse", mock.Anything, current).Return("Lisbon", nil)
	d.spiral.On("Locate", mock.Anything, current, message).Return(points, nil)
	d.spiral.On("Format", mock.Anything).Return(types.WeatherData{})
	d.llm.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("Here are some chilly spots!", nil)

	resp := d.service.GetChatResponse(context.Background(), message, nil, &current)
	assert.Equal(t, "Here are some chilly spots!", resp.Content)
	require.NotNil(t, resp.Data)
	assert.Equal(t, current, resp.Data.Center)
	assert.Equal(t, 200.0, resp.Data.RadiusKm)

	require.Len(t, resp.Data.POIs, 3)
	for i, poi := range resp.Data.POIs {
		assert.Equal(t, types.CategoryWeatherSuggestion, poi.Category)
		assert.Equal(t, i+1, poi.Priority)
	}
	assert.Equal(t, "Alpha", resp.Data.POIs[0].Name)

	cards, ok := resp.Data.WeatherData.([]types.WeatherData)
	require.True(t, ok)
	assert.Len(t, cards, 3)

	// The generic enrichment clients stay untouched on this path
	d.weather.AssertNotCalled(t, "Current", mock.Anything, mock.Anything)
	d.places.AssertNotCalled(t, "Nearby", mock.Anything, mock.Anything, mock.Anything)
	d.news.AssertNotCalled(t, "ForLocation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetChatResponseNewsQuota(t *testing.T) {
	loc := types.Location{Lat: 35.68, Lng: 139.69}
	setupResolution := func(d *testDeps) {
		d.geocoder.On("Forward", mock.Anything, "Tokyo").Return(&types.GeocodeResult{Name: "Tokyo", Lat: loc.Lat, Lon: loc.Lng}, nil)
		d.news.On("DailyLimit").Return(10)
		d.stubEnrichment()
	}

	t.Run("quota exhausted embeds the limit sentence", func(t *testing.T) {
		d := newTestService(t)
		setupResolution(d)
		d.news.On("QuotaAvailable", mock.Anything).Return(false)

		var prompt string
		d.llm.On("Generate", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { prompt = args.String(2) }).
			Return("No news today.", nil)

		resp := d.service.GetChatResponse(context.Background(), "Any recent news from Tokyo?", nil, nil)
		assert.Equal(t, "No news today.", resp.Content)
		assert.Contains(t, prompt, "You've hit the daily news limit of 10 requests—check back tomorrow!")
		d.news.AssertNotCalled(t, "ForLocation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		d.news.AssertNotCalled(t, "RecordRequest", mock.Anything)
	})

	t.Run("successful fetch records the request", func(t *testing.T) {
		d := newTestService(t)
		setupResolution(d)
		d.news.On("QuotaAvailable", mock.Anything).Return(true)
		d.news.On("ForLocation", mock.Anything, "Tokyo", 10, 7).Return([]types.Article{
			{Title: "Big story", PublishedAt: "2026-08-30T00:00:00Z", Source: types.ArticleSource{Name: "Wire"}},
		}, nil)
		d.news.On("RecordRequest", mock.Anything).Return()

		var prompt string
		d.llm.On("Generate", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { prompt = args.String(2) }).
			Return("Here is the news.", nil)

		resp := d.service.GetChatResponse(context.Background(), "Any recent news from Tokyo?", nil, nil)
		assert.Equal(t, "Here is the news.", resp.Content)
		assert.Contains(t, prompt, "Big story")
		d.news.AssertExpectations(t)
	})
}

func TestGetChatResponseTripPlanFlattening(t *testing.T) {
	loc := types.Location{Lat: 48.85, Lng: 2.35}
	setup := func(d *testDeps, reply string) {
		d.geocoder.On("Forward", mock.Anything, "Paris").Return(&types.GeocodeResult{Name: "Paris", Lat: loc.Lat, Lon: loc.Lng}, nil)
		d.news.On("DailyLimit").Return(10)
		d.news.On("QuotaAvailable", mock.Anything).Return(false)
		d.stubEnrichment()
		d.llm.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(reply, nil)
	}

	t.Run("embedded plan is flattened", func(t *testing.T) {
		d := newTestService(t)
		setup(d, `{"front": "Paris in 2 days", "second": "Spring is lovely.", "daily": ["Day 1: Louvre", "Day 2: Montmartre"]}`)

		resp := d.service.GetChatResponse(context.Background(), "Plan a trip to Paris", nil, nil)
		assert.Contains(t, resp.Content, "**Paris in 2 days**")
		assert.Contains(t, resp.Content, "- Day 2: Montmartre")
		assert.NotContains(t, resp.Content, `"front"`)
	})

	t.Run("malformed plan falls back to raw text", func(t *testing.T) {
		d := newTestService(t)
		raw := `Sure thing! {"front": "broken`
		setup(d, raw)

		resp := d.service.GetChatResponse(context.Background(), "Plan a trip to Paris", nil, nil)
		assert.Equal(t, raw, resp.Content)
	})
}

func TestGetChatResponseFailureSemantics(t *testing.T) {
	t.Run("model failure becomes the apology", func(t *testing.T) {
		d := newTestService(t)
		loc := types.Location{Lat: 51.5, Lng: -0.12}
		d.geocoder.On("Forward", mock.Anything, "London").Return(&types.GeocodeResult{Name: "London", Lat: loc.Lat, Lon: loc.Lng}, nil)
		d.news.On("DailyLimit").Return(10)
		d.news.On("QuotaAvailable", mock.Anything).Return(false)
		d.stubEnrichment()
		d.llm.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", fmt.Errorf("model unavailable"))

		resp := d.service.GetChatResponse(context.Background(), "Tell me about London", nil, nil)
		assert.Equal(t, apologyReply, resp.Content)
		assert.Nil(t, resp.Data)
	})

	t.Run("empty model reply gets the fallback line", func(t *testing.T) {
		d := newTestService(t)
		loc := types.Location{Lat: 51.5, Lng: -0.12}
		d.geocoder.On("Forward", mock.Anything, "London").Return(&types.GeocodeResult{Name: "London", Lat: loc.Lat, Lon: loc.Lng}, nil)
		d.news.On("DailyLimit").Return(10)
		d.news.On("QuotaAvailable", mock.Anything).Return(false)
		d.stubEnrichment()
		d.llm.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("   ", nil)

		resp := d.service.GetChatResponse(context.Background(), "Tell me about London", nil, nil)
		assert.Equal(t, emptyReply, resp.Content)
	})

	t.Run("failed enrichment still answers", func(t *testing.T) {
		d := newTestService(t)
		marker := types.Location{Lat: 40.4, Lng: -3.7}
		d.geocoder.On("Reverse", mock.Anything, marker).Return("", fmt.Errorf("timeout"))
		d.news.On("DailyLimit").Return(10)
		d.news.On("QuotaAvailable", mock.Anything).Return(false)
		d.weather.On("Current", mock.Anything, marker).Return(nil, fmt.Errorf("unreachable"))
		d.weather.On("Forecast", mock.Anything, marker).Return(nil, fmt.Errorf("unreachable"))
		d.weather.On("CurrentAirPollution", mock.Anything, marker).Return(nil, fmt.Errorf("unreachable"))
		d.weather.On("ForecastAirPollution", mock.Anything, marker).Return(nil, fmt.Errorf("unreachable"))
		d.places.On("Nearby", mock.Anything, marker, 5.0).Return(nil, fmt.Errorf("unreachable"))

		var prompt string
		d.llm.On("Generate", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { prompt = args.String(2) }).
			Return("Not much data, sorry!", nil)

		resp := d.service.GetChatResponse(context.Background(), "Tell me about this location", &marker, nil)
		assert.Equal(t, "Not much data, sorry!", resp.Content)
		assert.Nil(t, resp.Data)
		assert.Contains(t, prompt, "that spot you marked")
	})
}

type panickingLLM struct{}

func (panickingLLM) Generate(context.Context, []types.ChatTurn, string) (string, error) {
	panic("upstream library blew up")
}

func TestGetChatResponsePanicRecovery(t *testing.T) {
	d := newTestService(t)
	d.service.llm = panickingLLM{}

	loc := types.Location{Lat: 51.5, Lng: -0.12}
	d.geocoder.On("Forward", mock.Anything, "London").Return(&types.GeocodeResult{Name: "London", Lat: loc.Lat, Lon: loc.Lng}, nil)
	d.news.On("DailyLimit").Return(10)
	d.news.On("QuotaAvailable", mock.Anything).Return(false)
	d.stubEnrichment()

	var resp *types.ChatResponse
	assert.NotPanics(t, func() {
		resp = d.service.GetChatResponse(context.Background(), "Tell me about London", nil, nil)
	})
	require.NotNil(t, resp)
	assert.Equal(t, apologyReply, resp.Content)
	assert.Nil(t, resp.Data)
}

func TestGetChatResponseMetaQuestions(t *testing.T) {
	run := func(t *testing.T, message string, current *types.Location) {
		d := newTestService(t)
		d.news.On("DailyLimit").Return(10)

		var prompt string
		d.llm.On("Generate", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { prompt = args.String(2) }).
			Return("Here's the explanation.", nil)

		resp := d.service.GetChatResponse(context.Background(), message, nil, current)
		assert.Equal(t, "Here's the explanation.", resp.Content)
		assert.Nil(t, resp.Data)
		assert.Equal(t, message, prompt)

		d.weather.AssertNotCalled(t, "Current", mock.Anything, mock.Anything)
		d.weather.AssertNotCalled(t, "CurrentAirPollution", mock.Anything, mock.Anything)
		d.places.AssertNotCalled(t, "Nearby", mock.Anything, mock.Anything, mock.Anything)
		d.news.AssertNotCalled(t, "ForLocation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		d.geocoder.AssertNotCalled(t, "Reverse", mock.Anything, mock.Anything)
	}

	t.Run("terminology question without location", func(t *testing.T) {
		run(t, "What is humidity?", nil)
	})

	t.Run("terminology question ignores supplied location", func(t *testing.T) {
		run(t, "What is humidity?", &types.Location{Lat: 38.72, Lng: -9.14})
	})

	t.Run("app feature question ignores supplied location", func(t *testing.T) {
		run(t, "What can you do?", &types.Location{Lat: 38.72, Lng: -9.14})
	})
}

func TestGetChatResponseWeatherCard(t *testing.T) {
	d := newTestService(t)
	loc := types.Location{Lat: 51.5, Lng: -0.12}
	d.geocoder.On("Forward", mock.Anything, "London").Return(&types.GeocodeResult{Name: "London", Lat: loc.Lat, Lon: loc.Lng}, nil)
	d.news.On("DailyLimit").Return(10)
	d.news.On("QuotaAvailable", mock.Anything).Return(false)

	current := &types.CurrentWeather{
		Cod:     200,
		Main:    types.WeatherMain{Temp: 17, Humidity: 60, Pressure: 1012},
		Weather: []types.WeatherCondition{{Description: "light rain"}},
		Sys:     types.SysInfo{Country: "GB"},
	}
	air := &types.AirPollution{List: []types.AirPollutionEntry{{Main: types.AQIMain{AQI: 3}}}}
	forecast := &types.Forecast{Cod: "200", List: []types.ForecastEntry{
		{Main: types.WeatherMain{Temp: 16, TempMin: 12, TempMax: 19}},
	}}

	d.weather.On("Current", mock.Anything, loc).Return(current, nil)
	d.weather.On("CurrentAirPollution", mock.Anything, loc).Return(air, nil)
	d.weather.On("ForecastAirPollution", mock.Anything, loc).Return(nil, nil)
	d.weather.On("Forecast", mock.Anything, loc).Return(forecast, nil)
	d.places.On("Nearby", mock.Anything, loc, 5.0).Return([]types.OverpassElement{
		{ID: 1, Lat: 51.51, Lon: -0.13, Tags: map[string]string{"name": "Museum", "tourism": "museum"}},
	}, nil)
	d.llm.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("London is lovely.", nil)

	resp := d.service.GetChatResponse(context.Background(), "Tell me about London", nil, nil)
	require.NotNil(t, resp.Data)

	card, ok := resp.Data.WeatherData.(*types.WeatherData)
	require.True(t, ok)
	assert.Equal(t, "London", card.City.Name)
	assert.Equal(t, "GB", card.City.Country)
	assert.Equal(t, 17.0, card.Temperature.Value)
	assert.Equal(t, 12.0, card.Temperature.Min)
	assert.Equal(t, 3, card.AirQuality.Index)
}
