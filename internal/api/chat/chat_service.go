package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/viatorai/viator-assistant/app/observability/metrics"
	"github.com/viatorai/viator-assistant/internal/api/geocoding"
	"github.com/viatorai/viator-assistant/internal/api/news"
	"github.com/viatorai/viator-assistant/internal/api/places"
	"github.com/viatorai/viator-assistant/internal/api/spiral"
	"github.com/viatorai/viator-assistant/internal/api/weather"
	"github.com/viatorai/viator-assistant/internal/types"
)

// LLMClient sends a composed prompt with conversation history to the
// hosted model and returns its free-form text.
type LLMClient interface {
	Generate(ctx context.Context, history []types.ChatTurn, prompt string) (string, error)
}

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service is the conversational core: it classifies a message, resolves
// the target location, fans out to the data clients, composes a prompt
// for the language model, and reshapes the reply for the UI.
type Service interface {
	GetChatResponse(ctx context.Context, message string, tempMarker, current *types.Location) *types.ChatResponse
}

type ServiceImpl struct {
	logger         *slog.Logger
	llm            LLMClient
	geocoder       geocoding.Service
	weather        weather.Service
	places         places.Service
	news           news.Service
	spiral         spiral.Service
	spiralRadiusKm float64
	newsPageSize   int
	now            func() time.Time
}

func NewService(llm LLMClient, geocoder geocoding.Service, weatherSvc weather.Service,
	placesSvc places.Service, newsSvc news.Service, spiralSvc spiral.Service,
	spiralRadiusKm float64, newsPageSize int, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:         logger,
		llm:            llm,
		geocoder:       geocoder,
		weather:        weatherSvc,
		places:         placesSvc,
		news:           newsSvc,
		spiral:         spiralSvc,
		spiralRadiusKm: spiralRadiusKm,
		newsPageSize:   newsPageSize,
		now:            time.Now,
	}
}

// GetChatResponse produces the reply for one user turn. It never
// returns an error and never panics: any failure the pipeline cannot
// express as a user-facing message collapses into a generic apology.
func (s *ServiceImpl) GetChatResponse(ctx context.Context, message string, tempMarker, current *types.Location) (resp *types.ChatResponse) {
	start := time.Now()
	intent, flags := Classify(message)

	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "Chat turn panicked", slog.String("intent", intent.String()), slog.Any("panic", r))
			resp = &types.ChatResponse{Content: apologyReply, Data: nil}
		}
		metrics.RecordChatTurn(ctx, intent.String(), time.Since(start))
	}()

	result, err := s.respond(ctx, intent, flags, message, tempMarker, current)
	if err != nil {
		s.logger.ErrorContext(ctx, "Chat turn failed", slog.String("intent", intent.String()), slog.Any("error", err))
		return &types.ChatResponse{Content: apologyReply, Data: nil}
	}
	return result
}

func (s *ServiceImpl) respond(ctx context.Context, intent Intent, flags QueryFlags, message string, tempMarker, current *types.Location) (*types.ChatResponse, error) {
	switch intent {
	case IntentHelp:
		return &types.ChatResponse{Content: helpGuide}, nil
	case IntentGreeting:
		return &types.ChatResponse{Content: greetingReply}, nil
	case IntentHowAreYou:
		return &types.ChatResponse{Content: howAreYouReply}, nil
	case IntentThanks:
		return &types.ChatResponse{Content: thanksReply}, nil
	case IntentUnsupported:
		return &types.ChatResponse{Content: refusalReply}, nil
	}

	// Terminology and app-feature questions go straight to the model
	// with no coordinates and no enrichment, even when a location is
	// available.
	if (flags.WeatherInfo || flags.AppFeature) && !flags.RequiresLocation() {
		history := historyPreamble(tempMarker, current, s.news.DailyLimit(), s.now())
		text, err := s.llm.Generate(ctx, history, message)
		if err != nil {
			return nil, fmt.Errorf("generating response: %w", err)
		}
		return &types.ChatResponse{Content: nonEmpty(strings.TrimSpace(text))}, nil
	}

	loc, locationName, errResp := s.resolveLocation(ctx, flags, message, tempMarker, current, intent == IntentWeatherPreference)
	if errResp != nil {
		return errResp, nil
	}

	history := historyPreamble(tempMarker, current, s.news.DailyLimit(), s.now())

	if loc == nil {
		text, err := s.llm.Generate(ctx, history, message)
		if err != nil {
			return nil, fmt.Errorf("generating response: %w", err)
		}
		return &types.ChatResponse{Content: nonEmpty(strings.TrimSpace(text))}, nil
	}

	if intent == IntentWeatherPreference {
		return s.respondWeatherPreference(ctx, history, message, *loc)
	}

	pc := s.enrich(ctx, flags, message, *loc, locationName)
	prompt := buildPrompt(pc)

	text, err := s.llm.Generate(ctx, history, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating response: %w", err)
	}
	text = strings.TrimSpace(text)

	if flags.TripPlanning {
		flattened, ok := flattenTripPlan(text)
		if ok {
			text = flattened
		} else {
			s.logger.WarnContext(ctx, "Trip plan reply had no parseable itinerary block")
		}
	}

	var card *types.WeatherData
	if (flags.TellMeAbout || flags.TripPlanning || flags.AirQuality || flags.Clothing) &&
		pc.current != nil && pc.currentAir != nil && len(pc.currentAir.List) > 0 &&
		pc.forecast != nil && len(pc.forecast.List) > 0 {
		card = buildWeatherCard(locationName, pc.current, pc.currentAir, pc.forecast)
	}

	var data *types.ChatResponseData
	if pc.pois != nil {
		data = &types.ChatResponseData{
			POIs:     pc.pois,
			Center:   *loc,
			RadiusKm: pc.radiusKm,
		}
		if card != nil {
			data.WeatherData = card
		}
	}
	return &types.ChatResponse{Content: nonEmpty(text), Data: data}, nil
}

// resolveLocation applies the precedence rules: explicit temp-marker
// reference, explicit current-location reference, extracted place name,
// then the supplied current location as a default. A non-nil response
// means resolution failed in a way that ends the turn.
func (s *ServiceImpl) resolveLocation(ctx context.Context, flags QueryFlags, message string, tempMarker, current *types.Location, needsLocation bool) (*types.Location, string, *types.ChatResponse) {
	switch {
	case flags.TempMarker && tempMarker != nil:
		name := s.reverseOr(ctx, *tempMarker, "that spot you marked")
		return tempMarker, name, nil

	case flags.CurrentLocation && current != nil:
		name := s.reverseOr(ctx, *current, "your current spot")
		return current, name, nil
	}

	place := extractPlaceName(message)
	placeLower := strings.ToLower(place)
	if place != "" && placeLower != "current location" && placeLower != "this location" {
		result, err := s.geocoder.Forward(ctx, place)
		if err != nil {
			s.logger.WarnContext(ctx, "Forward geocoding failed", slog.String("place", place), slog.Any("error", err))
		}
		if result == nil {
			content := fmt.Sprintf("Oops, I couldn't find %q on the map. Try another spot or drop a marker!", place)
			return nil, "", &types.ChatResponse{Content: content}
		}
		return &types.Location{Lat: result.Lat, Lng: result.Lon}, place, nil
	}

	if current != nil {
		name := ""
		if flags.RequiresLocation() || needsLocation {
			name = s.reverseOr(ctx, *current, "your current spot")
		}
		return current, name, nil
	}

	if flags.RequiresLocation() || needsLocation {
		return nil, "", &types.ChatResponse{Content: needSpotReply}
	}
	return nil, "", nil
}

func (s *ServiceImpl) reverseOr(ctx context.Context, loc types.Location, fallback string) string {
	name, err := s.geocoder.Reverse(ctx, loc)
	if err != nil {
		s.logger.WarnContext(ctx, "Reverse geocoding failed", slog.Any("error", err))
	}
	if name == "" {
		return fallback
	}
	return name
}

// respondWeatherPreference is the spiral short-circuit: rank sample
// points around the location, tag them as Weather Suggestion POIs, and
// ask the model for a friendly rendering. The generic enrichment
// clients are never called on this path.
func (s *ServiceImpl) respondWeatherPreference(ctx context.Context, history []types.ChatTurn, message string, loc types.Location) (*types.ChatResponse, error) {
	points, err := s.spiral.Locate(ctx, loc, message)
	if err != nil {
		return nil, fmt.Errorf("locating weather suggestions: %w", err)
	}

	pois := make([]types.PointOfInterest, 0, len(points))
	cards := make([]types.WeatherData, 0, len(points))
	for i, point := range points {
		pois = append(pois, types.PointOfInterest{
			ID:       fmt.Sprintf("spiral-%d", i),
			Lat:      point.Location.Lat,
			Lng:      point.Location.Lng,
			Name:     point.Name,
			Category: types.CategoryWeatherSuggestion,
			Priority: i + 1,
		})
		cards = append(cards, s.spiral.Format(point))
	}

	text, err := s.llm.Generate(ctx, history, spiralPrompt(message, pois))
	if err != nil {
		return nil, fmt.Errorf("generating response: %w", err)
	}

	data := &types.ChatResponseData{
		POIs:     pois,
		Center:   loc,
		RadiusKm: s.spiralRadiusKm,
	}
	if len(cards) > 0 {
		data.WeatherData = cards
	}
	return &types.ChatResponse{Content: nonEmpty(strings.TrimSpace(text)), Data: data}, nil
}

// enrich runs the conditional fan-out. Fetches within each phase are
// independent and run concurrently; individual failures are logged and
// leave the corresponding field empty rather than ending the turn. The
// tell-me-about/trip-planning phase re-issues two phase-one fetches;
// the calls are idempotent, so only the extra requests are observable.
func (s *ServiceImpl) enrich(ctx context.Context, flags QueryFlags, message string, loc types.Location, locationName string) promptContext {
	pc := promptContext{
		message:        message,
		location:       loc,
		locationName:   locationName,
		radiusKm:       5,
		newsDaysBack:   parseNewsDaysBack(message),
		dailyNewsLimit: s.news.DailyLimit(),
		flags:          flags,
	}
	if flags.ThingsToDo {
		pc.radiusKm = parseRadiusKm(message)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := s.weather.Current(gctx, loc)
		if err != nil {
			s.logger.WarnContext(gctx, "Current weather fetch failed", slog.Any("error", err))
			return nil
		}
		pc.current = data
		return nil
	})
	g.Go(func() error {
		data, err := s.weather.CurrentAirPollution(gctx, loc)
		if err != nil {
			s.logger.WarnContext(gctx, "Current air pollution fetch failed", slog.Any("error", err))
			return nil
		}
		pc.currentAir = data
		return nil
	})
	g.Go(func() error {
		data, err := s.weather.ForecastAirPollution(gctx, loc)
		if err != nil {
			s.logger.WarnContext(gctx, "Forecast air pollution fetch failed", slog.Any("error", err))
			return nil
		}
		pc.forecastAir = data
		return nil
	})
	g.Go(func() error {
		elements, err := s.places.Nearby(gctx, loc, pc.radiusKm)
		if err != nil {
			s.logger.WarnContext(gctx, "Nearby POI fetch failed", slog.Any("error", err))
			return nil
		}
		pc.pois = poisFromElements(elements)
		return nil
	})
	_ = g.Wait()

	g, gctx = errgroup.WithContext(ctx)
	if flags.TellMeAbout || flags.TripPlanning || flags.AirQuality || flags.Clothing {
		g.Go(func() error {
			data, err := s.weather.Current(gctx, loc)
			if err != nil {
				s.logger.WarnContext(gctx, "Current weather re-fetch failed", slog.Any("error", err))
				return nil
			}
			if data != nil {
				pc.current = data
			}
			return nil
		})
		g.Go(func() error {
			data, err := s.weather.CurrentAirPollution(gctx, loc)
			if err != nil {
				s.logger.WarnContext(gctx, "Current air pollution re-fetch failed", slog.Any("error", err))
				return nil
			}
			if data != nil {
				pc.currentAir = data
			}
			return nil
		})
	}
	if flags.TellMeAbout || flags.TripPlanning || flags.Forecast {
		g.Go(func() error {
			data, err := s.weather.Forecast(gctx, loc)
			if err != nil {
				s.logger.WarnContext(gctx, "Forecast fetch failed", slog.Any("error", err))
				return nil
			}
			pc.forecast = data
			return nil
		})
	}
	if flags.TellMeAbout || flags.TripPlanning {
		g.Go(func() error {
			data, err := s.weather.ForecastAirPollution(gctx, loc)
			if err != nil {
				s.logger.WarnContext(gctx, "Forecast air pollution re-fetch failed", slog.Any("error", err))
				return nil
			}
			if data != nil {
				pc.forecastAir = data
			}
			return nil
		})
		g.Go(func() error {
			elements, err := s.places.Nearby(gctx, loc, pc.radiusKm)
			if err != nil {
				s.logger.WarnContext(gctx, "Nearby POI re-fetch failed", slog.Any("error", err))
				return nil
			}
			if elements != nil {
				pc.pois = poisFromElements(elements)
			}
			return nil
		})
	}
	_ = g.Wait()

	if flags.TellMeAbout || flags.TripPlanning || flags.NewsUpdates {
		if s.news.QuotaAvailable(ctx) {
			articles, err := s.news.ForLocation(ctx, locationName, s.newsPageSize, pc.newsDaysBack)
			if err != nil {
				s.logger.WarnContext(ctx, "News fetch failed", slog.Any("error", err))
			} else if articles != nil {
				pc.news = articles
				s.news.RecordRequest(ctx)
			}
		} else {
			pc.newsQuotaReached = true
		}
	}

	return pc
}

func nonEmpty(text string) string {
	if text == "" {
		return emptyReply
	}
	return text
}
