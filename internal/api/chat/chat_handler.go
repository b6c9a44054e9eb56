package chat

import (
	"log/slog"
	"net/http"

	"github.com/viatorai/viator-assistant/internal/api"
	"github.com/viatorai/viator-assistant/internal/types"
)

type Handler struct {
	chatService Service
	logger      *slog.Logger
}

func NewHandler(chatService Service, logger *slog.Logger) *Handler {
	return &Handler{
		chatService: chatService,
		logger:      logger,
	}
}

type chatRequest struct {
	Message         string          `json:"message"`
	TempMarker      *types.Location `json:"tempMarker,omitempty"`
	CurrentLocation *types.Location `json:"currentLocation,omitempty"`
}

// GetChatResponse handles POST /chat. The orchestrator converts every
// internal failure into a user-facing message, so this always answers
// 200 for a well-formed request.
func (h *Handler) GetChatResponse(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Message == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "message is required")
		return
	}
	if req.TempMarker != nil && !req.TempMarker.Valid() {
		api.ErrorResponse(w, r, http.StatusBadRequest, "tempMarker coordinates out of bounds")
		return
	}
	if req.CurrentLocation != nil && !req.CurrentLocation.Valid() {
		api.ErrorResponse(w, r, http.StatusBadRequest, "currentLocation coordinates out of bounds")
		return
	}

	resp := h.chatService.GetChatResponse(r.Context(), req.Message, req.TempMarker, req.CurrentLocation)
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
