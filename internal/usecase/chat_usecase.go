package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/stream"
	pkglogger "github.com/jeffvestal/wayfinder-supply-co-sub000/pkg/logger"
)

// Agent IDs provisioned on the agent platform.
const (
	DefaultAgentID   = "wayfinder-search-agent"
	contextAgentID   = "context-extractor-agent"
	itineraryAgentID = "itinerary-extractor-agent"
)

const defaultUserID = "user_new"

// chatUsecase drives chat turns against the agent platform, injecting vision
// context when an image rides along with the message.
type chatUsecase struct {
	agent  domain.AgentStreamer
	vision domain.VisionAnalyzer
	logger *slog.Logger
}

// NewChatUsecase creates the chat usecase.
func NewChatUsecase(agent domain.AgentStreamer, vision domain.VisionAnalyzer, logger *slog.Logger) domain.ChatUsecase {
	return &chatUsecase{
		agent:  agent,
		vision: vision,
		logger: logger,
	}
}

// ChatStreaming opens one streaming turn. When the request carries an image
// and the vision analyzer is configured, the image is described first and the
// description is prepended to the agent input; the analysis (or its failure)
// is surfaced on the stream ahead of the agent events.
func (u *chatUsecase) ChatStreaming(ctx context.Context, req *domain.ChatRequest) (<-chan stream.Event, error) {
	if req == nil || req.Message == "" {
		return nil, domain.NewInvalidInputError("message is required")
	}

	userID := req.UserID
	if userID == "" {
		userID = defaultUserID
	}
	agentID := req.AgentID
	if agentID == "" {
		agentID = DefaultAgentID
	}

	var visionEvent *stream.Event
	visionContext := ""
	if req.ImageBase64 != "" {
		if u.vision != nil && u.vision.Ready() {
			description, err := u.vision.AnalyzeImage(ctx, req.ImageBase64)
			if err != nil {
				// Vision failures never block the turn.
				pkglogger.WithError(u.logger, err).Warn("vision analysis failed, proceeding without")
				ev, encErr := stream.NewEvent(stream.TypeVisionError, stream.VisionErrorData{
					Error: domain.UserMessage(err),
				})
				if encErr == nil {
					visionEvent = &ev
				}
			} else {
				u.logger.Info("vision context added", "chars", len(description))
				visionContext = fmt.Sprintf("[Vision Context: %s] ", description)
				ev, encErr := stream.NewEvent(stream.TypeVisionAnalysis, stream.VisionAnalysisData{
					Description: description,
				})
				if encErr == nil {
					visionEvent = &ev
				}
			}
		} else {
			u.logger.Info("image provided but vision analyzer not configured, ignoring image")
		}
	}

	input := fmt.Sprintf("%s[User ID: %s] %s", visionContext, userID, req.Message)

	agentEvents, err := u.agent.Converse(ctx, input, agentID)
	if err != nil {
		return nil, err
	}

	if visionEvent == nil {
		return agentEvents, nil
	}

	out := make(chan stream.Event, 1)
	go func() {
		defer close(out)
		out <- *visionEvent
		for ev := range agentEvents {
			out <- ev
		}
	}()
	return out, nil
}

// ParseTripContext asks the context-extractor agent for structured trip
// details. Unparseable replies yield an empty context, not an error.
func (u *chatUsecase) ParseTripContext(ctx context.Context, message string) (*domain.TripContext, error) {
	if message == "" {
		return nil, domain.NewInvalidInputError("message is required")
	}

	reply, err := u.agent.ConverseSync(ctx, message, contextAgentID)
	if err != nil {
		return nil, err
	}

	var tc domain.TripContext
	if !extractJSON(reply, []string{"destination", "dates", "activity"}, &tc) {
		u.logger.Warn("trip context reply not parseable, returning empty context")
	}
	return &tc, nil
}

// ExtractItinerary asks the itinerary-extractor agent for a day-by-day plan.
func (u *chatUsecase) ExtractItinerary(ctx context.Context, tripPlan string) ([]domain.ItineraryDay, error) {
	if tripPlan == "" {
		return nil, domain.NewInvalidInputError("trip plan is required")
	}

	reply, err := u.agent.ConverseSync(ctx, tripPlan, itineraryAgentID)
	if err != nil {
		return nil, err
	}

	var out struct {
		Days []domain.ItineraryDay `json:"days"`
	}
	if !extractJSON(reply, []string{"days"}, &out) {
		u.logger.Warn("itinerary reply not parseable, returning empty itinerary")
	}
	if out.Days == nil {
		out.Days = []domain.ItineraryDay{}
	}
	return out.Days, nil
}
