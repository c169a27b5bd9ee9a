package domain

import (
	"context"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/stream"
)

// ============ Usecase-facing DTOs ============

// ChatRequest is one chat turn submitted by a storefront user.
type ChatRequest struct {
	UserID      string
	AgentID     string
	Message     string
	ImageBase64 string
}

// TripContext is the structured context parsed out of a user message.
type TripContext struct {
	Destination string `json:"destination"`
	Dates       string `json:"dates"`
	Activity    string `json:"activity"`
}

// ItineraryDay is one day of an extracted day-by-day itinerary.
type ItineraryDay struct {
	Day        int      `json:"day"`
	Title      string   `json:"title,omitempty"`
	Activities []string `json:"activities,omitempty"`
}

// AgentStreamer talks to the external agent platform and yields the
// normalized event stream for one conversation turn.
type AgentStreamer interface {
	// Converse opens a streaming turn against the named agent. The returned
	// channel is closed after the terminal completion or error event.
	Converse(ctx context.Context, input, agentID string) (<-chan stream.Event, error)

	// ConverseSync runs a turn to completion and returns the assistant's
	// full reply text. Used by the synchronous extraction agents.
	ConverseSync(ctx context.Context, input, agentID string) (string, error)
}

// VisionAnalyzer describes an image for trip-planning context. It is an
// external collaborator; analysis internals are out of scope here.
type VisionAnalyzer interface {
	// Ready reports whether the analyzer is configured with credentials.
	Ready() bool

	// AnalyzeImage returns a terrain/conditions description for a
	// base64-encoded image.
	AnalyzeImage(ctx context.Context, imageBase64 string) (string, error)
}

// ChatUsecase drives chat turns and the synchronous extraction agents.
type ChatUsecase interface {
	// ChatStreaming opens a streaming turn. Vision context, when available,
	// is injected ahead of the agent stream.
	ChatStreaming(ctx context.Context, req *ChatRequest) (<-chan stream.Event, error)

	// ParseTripContext extracts destination/dates/activity from a message.
	ParseTripContext(ctx context.Context, message string) (*TripContext, error)

	// ExtractItinerary extracts a day-by-day itinerary from a trip plan.
	ExtractItinerary(ctx context.Context, tripPlan string) ([]ItineraryDay, error)
}
