package handler

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/protocol/sse"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/handler/dto"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/stream"
	pkglogger "github.com/jeffvestal/wayfinder-supply-co-sub000/pkg/logger"
)

// ChatHandler serves the streaming chat proxy and the synchronous
// extraction endpoints.
type ChatHandler struct {
	usecase domain.ChatUsecase
	logger  *slog.Logger
}

// NewChatHandler creates the chat handler.
func NewChatHandler(usecase domain.ChatUsecase, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// sseFrame is the wire envelope for one stream event.
type sseFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// drainEvents consumes a stream until the producer closes it. Used after a
// client disconnect so the producer goroutine can run to completion.
func drainEvents(events <-chan stream.Event) {
	for range events {
	}
}

// Chat proxies one chat turn as an SSE stream. The body carries the message
// plus optional user, agent, and image fields; message may also arrive as a
// query parameter for older clients.
func (h *ChatHandler) Chat(ctx context.Context, c *app.RequestContext) {
	var req dto.ChatRequest
	if len(c.Request.Body()) > 0 {
		if err := c.BindJSON(&req); err != nil {
			h.logger.Error("failed to bind chat request", "error", err)
			ErrorResponse(c, domain.NewInvalidInputError("invalid request body"))
			return
		}
	}
	if req.Message == "" {
		req.Message = c.Query("message")
		if req.UserID == "" {
			req.UserID = c.Query("user_id")
		}
		if req.AgentID == "" {
			req.AgentID = c.Query("agent_id")
		}
	}
	if req.Message == "" {
		ErrorResponse(c, domain.NewInvalidInputError("message is required"))
		return
	}

	logger := pkglogger.FromContext(ctx)
	logger.Info("chat request received",
		"user_id", req.UserID,
		"agent_id", req.AgentID,
		"has_image", req.ImageBase64 != "")

	events, err := h.usecase.ChatStreaming(ctx, &domain.ChatRequest{
		UserID:      req.UserID,
		AgentID:     req.AgentID,
		Message:     req.Message,
		ImageBase64: req.ImageBase64,
	})
	if err != nil {
		h.logger.Error("chat turn failed to start", "error", err)
		ErrorResponse(c, err)
		return
	}

	// Status must be set before the SSE writer takes over the response.
	c.SetStatusCode(consts.StatusOK)
	writer := sse.NewWriter(c)
	defer writer.Close()

	for ev := range events {
		frame, err := sonic.Marshal(sseFrame{Type: ev.Type, Data: ev.Data})
		if err != nil {
			logger.Error("failed to encode sse frame", "type", ev.Type, "error", err)
			continue
		}
		if err := writer.WriteEvent("", "", frame); err != nil {
			logger.Warn("client disconnected mid-stream", "error", err)
			// The producer keeps sending until its turn finishes. Drain
			// so it never blocks on the channel buffer.
			go drainEvents(events)
			return
		}
	}

	if err := writer.WriteEvent("", "", []byte("[DONE]")); err != nil {
		logger.Warn("failed to write done marker", "error", err)
	}
}

// ParseTripContext extracts destination, dates, and activity from a message.
func (h *ChatHandler) ParseTripContext(ctx context.Context, c *app.RequestContext) {
	message := c.Query("message")
	if message == "" {
		ErrorResponse(c, domain.NewInvalidInputError("message query parameter is required"))
		return
	}

	tc, err := h.usecase.ParseTripContext(ctx, message)
	if err != nil {
		h.logger.Error("trip context parse failed", "error", err)
		ErrorResponse(c, err)
		return
	}

	c.JSON(consts.StatusOK, dto.TripContextResponse{
		Destination: tc.Destination,
		Dates:       tc.Dates,
		Activity:    tc.Activity,
	})
}

// ExtractItinerary extracts a day-by-day itinerary from a trip plan.
func (h *ChatHandler) ExtractItinerary(ctx context.Context, c *app.RequestContext) {
	tripPlan := c.Query("trip_plan")
	if tripPlan == "" {
		ErrorResponse(c, domain.NewInvalidInputError("trip_plan query parameter is required"))
		return
	}

	days, err := h.usecase.ExtractItinerary(ctx, tripPlan)
	if err != nil {
		h.logger.Error("itinerary extraction failed", "error", err)
		ErrorResponse(c, err)
		return
	}

	c.JSON(consts.StatusOK, dto.ItineraryResponse{Days: days})
}
