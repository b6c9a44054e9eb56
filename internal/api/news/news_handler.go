package news

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/viatorai/viator-assistant/internal/api"
)

type Handler struct {
	newsService Service
	logger      *slog.Logger
	pageSize    int
}

func NewHandler(newsService Service, pageSize int, logger *slog.Logger) *Handler {
	return &Handler{
		newsService: newsService,
		logger:      logger,
		pageSize:    pageSize,
	}
}

// GetNews handles GET /news?location=...&daysBack=N. The daily quota
// applies here the same way it does to chat turns.
func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "location is required")
		return
	}

	daysBack := 7
	if raw := r.URL.Query().Get("daysBack"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "daysBack must be a positive integer")
			return
		}
		daysBack = parsed
	}

	if !h.newsService.QuotaAvailable(r.Context()) {
		api.ErrorResponse(w, r, http.StatusTooManyRequests, "daily news limit reached")
		return
	}

	articles, err := h.newsService.ForLocation(r.Context(), location, h.pageSize, daysBack)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "News lookup failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, "news lookup failed")
		return
	}
	if articles != nil {
		h.newsService.RecordRequest(r.Context())
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"status":   "ok",
		"articles": articles,
	})
}
