package stream

import (
	"encoding/json"

	"github.com/bytedance/sonic"
)

// Event types emitted over the chat event stream.
const (
	TypeConversationStarted = "conversation_started"
	TypeReasoning           = "reasoning"
	TypeToolCall            = "tool_call"
	TypeToolResult          = "tool_result"
	TypeMessageChunk        = "message_chunk"
	TypeMessageComplete     = "message_complete"
	TypeCompletion          = "completion"
	TypeError               = "error"
	TypeVisionAnalysis      = "vision_analysis"
	TypeVisionError         = "vision_error"
)

// Event is one decoded envelope from the chat event stream.
// Data holds the raw JSON payload for the event type.
type Event struct {
	Type string
	Data json.RawMessage
}

// NewEvent builds an Event by marshaling payload as the event data.
func NewEvent(eventType string, payload interface{}) (Event, error) {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Data: data}, nil
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v interface{}) error {
	return sonic.Unmarshal(e.Data, v)
}

// Payload shapes per event type. These mirror the wire contract of the
// storefront chat proxy; tool results are deliberately left untyped since
// their shape is not fixed by any contract.
type (
	ConversationStartedData struct {
		ConversationID string `json:"conversation_id"`
	}

	ReasoningData struct {
		Reasoning string `json:"reasoning"`
	}

	ToolCallData struct {
		ToolCallID string                 `json:"tool_call_id"`
		ToolID     string                 `json:"tool_id"`
		Params     map[string]interface{} `json:"params"`
	}

	ToolResultData struct {
		ToolCallID string        `json:"tool_call_id"`
		Results    []interface{} `json:"results"`
	}

	MessageChunkData struct {
		TextChunk string `json:"text_chunk"`
	}

	MessageCompleteData struct {
		MessageContent string `json:"message_content"`
	}

	CompletionData struct {
		ConversationID string `json:"conversation_id"`
	}

	ErrorData struct {
		Error string      `json:"error"`
		Code  interface{} `json:"code,omitempty"`
	}

	VisionAnalysisData struct {
		Description string `json:"description"`
	}

	VisionErrorData struct {
		Error string `json:"error"`
	}
)
