package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/viatorai/viator-assistant/internal/api/chat"
	"github.com/viatorai/viator-assistant/internal/api/geocoding"
	"github.com/viatorai/viator-assistant/internal/api/news"
	"github.com/viatorai/viator-assistant/internal/api/places"
	"github.com/viatorai/viator-assistant/internal/api/spiral"
	"github.com/viatorai/viator-assistant/internal/api/weather"
)

// Config contains the handlers the router mounts.
type Config struct {
	ChatHandler      *chat.Handler
	GeocodingHandler *geocoding.Handler
	WeatherHandler   *weather.Handler
	NewsHandler      *news.Handler
	PlacesHandler    *places.Handler
	SpiralHandler    *spiral.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to
// be applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", cfg.ChatHandler.GetChatResponse)

		r.Get("/geocoding/forward", cfg.GeocodingHandler.Forward)
		r.Get("/geocoding/reverse", cfg.GeocodingHandler.Reverse)
		r.Get("/weather", cfg.WeatherHandler.GetWeather)
		r.Get("/news", cfg.NewsHandler.GetNews)
		r.Get("/places", cfg.PlacesHandler.GetNearby)
		r.Get("/spiral-weather", cfg.SpiralHandler.GetSuggestions)
	})

	return r
}
