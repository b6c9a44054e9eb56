package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// ChatMessage is one turn of the conversation. Messages are append-only;
// the conversation is the ordered sequence and entries are never mutated
// once appended.
type ChatMessage struct {
	ID        uuid.UUID         `json:"id"`
	Content   string            `json:"content"`
	Sender    string            `json:"sender"`
	Timestamp time.Time         `json:"timestamp"`
	Data      *ChatResponseData `json:"data,omitempty"`
}

// ChatTurn is a role/content pair sent to the language model as history.
type ChatTurn struct {
	Role  string `json:"role"`
	Parts string `json:"parts"`
}

// ChatResponse is the orchestrator's reply for one user message.
type ChatResponse struct {
	Content string            `json:"content"`
	Data    *ChatResponseData `json:"data"`
}

// ChatResponseData becomes the new authoritative map overlay state; it
// replaces the previous turn's data rather than merging into it.
// WeatherData holds either a single WeatherData card or, for spiral
// weather suggestions, a slice of them.
type ChatResponseData struct {
	POIs        []PointOfInterest `json:"pois"`
	Center      Location          `json:"center"`
	RadiusKm    float64           `json:"radiusKm"`
	WeatherData any               `json:"weatherData,omitempty"`
}
