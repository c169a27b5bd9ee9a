package agentbuilder

import (
	"log/slog"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/stream"
)

// normalizer turns raw Agent Builder frames into the storefront's normalized
// event vocabulary. Upstream events carry no type tag; they are classified by
// which keys their payload carries, and the platform wraps most payloads in
// an extra {"data": {...}} envelope. The normalizer also keeps the running
// step recap that ships with the final completion event.
type normalizer struct {
	logger         *slog.Logger
	conversationID string
	steps          []map[string]interface{}
}

func newNormalizer(logger *slog.Logger) *normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &normalizer{logger: logger}
}

// line consumes one raw line from the upstream body and returns the
// normalized events it produced (usually zero or one). Malformed JSON is
// skipped, never fatal.
func (n *normalizer) line(raw string) []stream.Event {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, ":") || strings.HasPrefix(line, "event:") {
		return nil
	}
	payload, ok := strings.CutPrefix(line, "data:")
	if !ok {
		return nil
	}

	var outer map[string]interface{}
	if err := sonic.UnmarshalString(strings.TrimSpace(payload), &outer); err != nil {
		n.logger.Debug("skipping malformed upstream line")
		return nil
	}

	// Platform-level errors (expired keys, rate limits) arrive on the outer
	// object, not inside the data wrapper.
	if errInfo, ok := outer["error"]; ok {
		return n.errorEvent(errInfo)
	}

	data, ok := outer["data"].(map[string]interface{})
	if !ok {
		data = outer
	}
	return n.classify(data)
}

func (n *normalizer) classify(data map[string]interface{}) []stream.Event {
	if id, ok := data["conversation_id"].(string); ok && id != "" {
		n.conversationID = id
		return n.emit(stream.TypeConversationStarted, stream.ConversationStartedData{ConversationID: id})
	}

	if reasoning, ok := data["reasoning"].(string); ok {
		// Transient "consulting my tools" chatter is not part of the trace.
		if transient, _ := data["transient"].(bool); transient {
			return nil
		}
		n.steps = append(n.steps, map[string]interface{}{
			"type":      "reasoning",
			"reasoning": reasoning,
		})
		return n.emit(stream.TypeReasoning, stream.ReasoningData{Reasoning: reasoning})
	}

	// Tool results carry both keys; this check must run before the bare
	// tool_call_id one.
	if results, hasResults := data["results"]; hasResults {
		if callID, ok := data["tool_call_id"].(string); ok {
			return n.toolResult(callID, results)
		}
	}

	if callID, ok := data["tool_call_id"].(string); ok {
		return n.toolCall(callID, data)
	}

	if chunk, ok := data["text_chunk"].(string); ok {
		return n.emit(stream.TypeMessageChunk, stream.MessageChunkData{TextChunk: chunk})
	}

	if content, ok := data["message_content"].(string); ok {
		return n.emit(stream.TypeMessageComplete, stream.MessageCompleteData{MessageContent: content})
	}

	// Round completion wraps the full reply under response.message.
	if round, ok := data["round"].(map[string]interface{}); ok {
		if response, ok := round["response"].(map[string]interface{}); ok {
			if message, ok := response["message"].(string); ok {
				return n.emit(stream.TypeMessageComplete, stream.MessageCompleteData{MessageContent: message})
			}
		}
	}

	return nil
}

func (n *normalizer) toolResult(callID string, results interface{}) []stream.Event {
	resultList, _ := results.([]interface{})
	for _, step := range n.steps {
		if step["tool_call_id"] == callID {
			step["results"] = resultList
			break
		}
	}
	return n.emit(stream.TypeToolResult, stream.ToolResultData{
		ToolCallID: callID,
		Results:    resultList,
	})
}

func (n *normalizer) toolCall(callID string, data map[string]interface{}) []stream.Event {
	toolID, _ := data["tool_id"].(string)
	// Progress updates arrive with a null tool_id and are dropped.
	if toolID == "" {
		return nil
	}
	params, _ := data["params"].(map[string]interface{})

	for _, step := range n.steps {
		if step["tool_call_id"] == callID {
			// Re-emitted call: refresh params once populated, no new event.
			if len(params) > 0 {
				step["params"] = params
			}
			return nil
		}
	}

	// A placeholder call without params never becomes a step.
	if len(params) == 0 {
		return nil
	}

	n.steps = append(n.steps, map[string]interface{}{
		"type":         "tool_call",
		"tool_call_id": callID,
		"tool_id":      toolID,
		"params":       params,
		"results":      []interface{}{},
	})
	return n.emit(stream.TypeToolCall, stream.ToolCallData{
		ToolCallID: callID,
		ToolID:     toolID,
		Params:     params,
	})
}

func (n *normalizer) errorEvent(errInfo interface{}) []stream.Event {
	data := stream.ErrorData{Error: "unknown error"}
	if m, ok := errInfo.(map[string]interface{}); ok {
		if msg, ok := m["message"].(string); ok && msg != "" {
			data.Error = msg
		}
		data.Code = m["code"]
	} else if s, ok := errInfo.(string); ok {
		data.Error = s
	}
	return n.emit(stream.TypeError, data)
}

// finish emits the completion recap that closes out every successful stream.
func (n *normalizer) finish() []stream.Event {
	return n.emit(stream.TypeCompletion, map[string]interface{}{
		"conversation_id": n.conversationID,
		"steps":           n.steps,
	})
}

func (n *normalizer) emit(eventType string, payload interface{}) []stream.Event {
	ev, err := stream.NewEvent(eventType, payload)
	if err != nil {
		n.logger.Warn("failed to encode event", "type", eventType, "error", err)
		return nil
	}
	return []stream.Event{ev}
}
