package dto

import "github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain"

// ChatRequest is the /api/chat request body.
type ChatRequest struct {
	Message     string `json:"message"`
	UserID      string `json:"user_id"`
	AgentID     string `json:"agent_id"`
	ImageBase64 string `json:"image_base64"`
}

// TripContextResponse is the /api/parse-trip-context reply.
type TripContextResponse struct {
	Destination string `json:"destination"`
	Dates       string `json:"dates"`
	Activity    string `json:"activity"`
}

// ItineraryResponse is the /api/extract-itinerary reply.
type ItineraryResponse struct {
	Days []domain.ItineraryDay `json:"days"`
}
