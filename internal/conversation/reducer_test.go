package conversation

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/stream"
)

func event(t *testing.T, eventType string, payload interface{}) stream.Event {
	t.Helper()
	ev, err := stream.NewEvent(eventType, payload)
	require.NoError(t, err)
	return ev
}

func newState() State {
	return NewState("m1", time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
}

func TestHappyPathTurn(t *testing.T) {
	// Scenario: reasoning, one tool call with results, streamed text, then
	// an authoritative completion.
	events := []stream.Event{
		event(t, stream.TypeReasoning, stream.ReasoningData{Reasoning: "checking weather"}),
		event(t, stream.TypeToolCall, stream.ToolCallData{
			ToolCallID: "1", ToolID: "product_search",
			Params: map[string]interface{}{"q": "tent"},
		}),
		event(t, stream.TypeToolResult, stream.ToolResultData{
			ToolCallID: "1",
			Results: []interface{}{
				map[string]interface{}{"_id": "P1"},
				map[string]interface{}{"_source": map[string]interface{}{"id": "P2"}},
			},
		}),
		event(t, stream.TypeMessageChunk, stream.MessageChunkData{TextChunk: "Here are"}),
		event(t, stream.TypeMessageChunk, stream.MessageChunkData{TextChunk: " two tents."}),
		event(t, stream.TypeMessageComplete, stream.MessageCompleteData{MessageContent: "Here are two tents."}),
	}

	s := newState()
	statuses := []Status{s.Message.Status}
	for _, ev := range events {
		s = Apply(s, ev)
		statuses = append(statuses, s.Message.Status)
	}

	assert.Equal(t, "Here are two tents.", s.Message.Content)
	assert.Equal(t, StatusComplete, s.Message.Status)
	assert.False(t, s.Errored)

	calls := s.ToolCallSteps()
	require.Len(t, calls, 1)
	assert.Equal(t, "product_search", calls[0].ToolID)
	assert.True(t, calls[0].ResultsSet)
	require.Len(t, calls[0].Results, 2)

	assert.Equal(t, []Status{
		StatusThinking, StatusThinking, StatusWorking, StatusWorking,
		StatusTyping, StatusTyping, StatusComplete,
	}, statuses)
}

func TestContentMonotonicUntilOverwrite(t *testing.T) {
	s := newState()
	prev := ""
	for _, chunk := range []string{"a", "bc", "", "def"} {
		s = Apply(s, event(t, stream.TypeMessageChunk, stream.MessageChunkData{TextChunk: chunk}))
		require.True(t, strings.HasPrefix(s.Message.Content, prev))
		require.GreaterOrEqual(t, len(s.Message.Content), len(prev))
		prev = s.Message.Content
	}

	// The final overwrite may set any value, idempotent if equal.
	s = Apply(s, event(t, stream.TypeMessageComplete, stream.MessageCompleteData{MessageContent: "reassembled"}))
	assert.Equal(t, "reassembled", s.Message.Content)
	s = Apply(s, event(t, stream.TypeMessageComplete, stream.MessageCompleteData{MessageContent: "reassembled"}))
	assert.Equal(t, "reassembled", s.Message.Content)
}

func TestEmptyParamsToolCallCreatesNoStep(t *testing.T) {
	s := newState()
	s = Apply(s, event(t, stream.TypeToolCall, stream.ToolCallData{
		ToolCallID: "1", ToolID: "product_search",
	}))

	assert.Empty(t, s.Message.Steps)
	assert.Equal(t, StatusThinking, s.Message.Status)
}

func TestPlaceholderThenPopulatedCallYieldsOneStep(t *testing.T) {
	// Upstream agents re-emit a placeholder empty-params call before the
	// populated one; exactly one step must come out.
	s := newState()
	s = Apply(s, event(t, stream.TypeToolCall, stream.ToolCallData{
		ToolCallID: "1", ToolID: "product_search",
	}))
	s = Apply(s, event(t, stream.TypeToolCall, stream.ToolCallData{
		ToolCallID: "1", ToolID: "product_search",
		Params: map[string]interface{}{"q": "tent"},
	}))
	s = Apply(s, event(t, stream.TypeToolCall, stream.ToolCallData{
		ToolCallID: "1", ToolID: "product_search",
		Params: map[string]interface{}{"q": "duplicate"},
	}))

	require.Len(t, s.Message.Steps, 1)
	assert.Equal(t, "tent", s.Message.Steps[0].Params["q"])
}

func TestOrphanToolResultDropped(t *testing.T) {
	s := newState()
	s = Apply(s, event(t, stream.TypeToolResult, stream.ToolResultData{
		ToolCallID: "ghost",
		Results:    []interface{}{map[string]interface{}{"_id": "P1"}},
	}))

	assert.Empty(t, s.Message.Steps)
	assert.Equal(t, 1, s.OrphanResults)
	assert.Equal(t, StatusThinking, s.Message.Status)
}

func TestDuplicateToolResultLastWriteWins(t *testing.T) {
	s := newState()
	s = Apply(s, event(t, stream.TypeToolCall, stream.ToolCallData{
		ToolCallID: "1", ToolID: "product_search",
		Params: map[string]interface{}{"q": "tent"},
	}))
	s = Apply(s, event(t, stream.TypeToolResult, stream.ToolResultData{
		ToolCallID: "1",
		Results:    []interface{}{map[string]interface{}{"_id": "old"}},
	}))
	s = Apply(s, event(t, stream.TypeToolResult, stream.ToolResultData{
		ToolCallID: "1",
		Results:    []interface{}{map[string]interface{}{"_id": "new"}},
	}))

	calls := s.ToolCallSteps()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Results, 1)
	assert.Equal(t, map[string]interface{}{"_id": "new"}, calls[0].Results[0])
}

func TestErrorIsTerminal(t *testing.T) {
	s := newState()
	s = Apply(s, event(t, stream.TypeError, stream.ErrorData{Error: "rate limited"}))

	assert.Equal(t, StatusComplete, s.Message.Status)
	assert.True(t, s.Errored)
	assert.Contains(t, s.Message.Content, "rate limited")

	// No further events are processed for this message.
	after := Apply(s, event(t, stream.TypeMessageChunk, stream.MessageChunkData{TextChunk: "late"}))
	assert.Equal(t, s.Message.Content, after.Message.Content)
	assert.Empty(t, after.Message.Steps)
}

func TestVisionEventsBecomeReasoningSteps(t *testing.T) {
	s := newState()
	s = Apply(s, event(t, stream.TypeVisionAnalysis, stream.VisionAnalysisData{Description: "alpine terrain, snow"}))
	s = Apply(s, event(t, stream.TypeVisionError, stream.VisionErrorData{Error: "image too large"}))

	require.Len(t, s.Message.Steps, 2)
	assert.Equal(t, StepReasoning, s.Message.Steps[0].Kind)
	assert.Contains(t, s.Message.Steps[0].Text, "alpine terrain")
	assert.Contains(t, s.Message.Steps[1].Text, "image too large")
}

func TestReasoningAfterToolCallKeepsWorkingStatus(t *testing.T) {
	s := newState()
	s = Apply(s, event(t, stream.TypeToolCall, stream.ToolCallData{
		ToolCallID: "1", ToolID: "get_weather",
		Params: map[string]interface{}{"city": "Tromsø"},
	}))
	s = Apply(s, event(t, stream.TypeReasoning, stream.ReasoningData{Reasoning: "weather looks rough"}))

	assert.Equal(t, StatusWorking, s.Message.Status)
	assert.Len(t, s.Message.Steps, 2)
}

func TestMalformedPayloadLeavesStateUnchanged(t *testing.T) {
	s := newState()
	before := s
	s = Apply(s, stream.Event{Type: stream.TypeToolCall, Data: []byte(`"not an object"`)})
	assert.Equal(t, before.Message, s.Message)
}

func TestConversationIDTracked(t *testing.T) {
	s := newState()
	s = Apply(s, event(t, stream.TypeConversationStarted, stream.ConversationStartedData{ConversationID: "conv-9"}))
	assert.Equal(t, "conv-9", s.ConversationID)

	s = Apply(s, event(t, stream.TypeCompletion, stream.CompletionData{ConversationID: "conv-9"}))
	assert.Equal(t, StatusComplete, s.Message.Status)
}

func TestApplyDoesNotAliasPreviousTrace(t *testing.T) {
	s1 := Apply(newState(), event(t, stream.TypeToolCall, stream.ToolCallData{
		ToolCallID: "1", ToolID: "product_search",
		Params: map[string]interface{}{"q": "tent"},
	}))
	s2 := Apply(s1, event(t, stream.TypeToolResult, stream.ToolResultData{
		ToolCallID: "1",
		Results:    []interface{}{map[string]interface{}{"_id": "P1"}},
	}))

	assert.False(t, s1.Message.Steps[0].ResultsSet)
	assert.True(t, s2.Message.Steps[0].ResultsSet)
}

func TestRunFromDecoder(t *testing.T) {
	body := "data: {\"type\":\"reasoning\",\"data\":{\"reasoning\":\"thinking it over\"}}\n\n" +
		"data: {\"type\":\"message_chunk\",\"data\":{\"text_chunk\":\"Pack layers.\"}}\n\n" +
		"data: {\"type\":\"completion\",\"data\":{\"conversation_id\":\"c1\"}}\n\n"

	var observed int
	final := Run(stream.NewDecoder(strings.NewReader(body), nil), newState(), func(State) { observed++ })

	assert.Equal(t, 3, observed)
	assert.Equal(t, "Pack layers.", final.Message.Content)
	assert.Equal(t, StatusComplete, final.Message.Status)
	assert.Equal(t, "c1", final.ConversationID)
}

func TestRunClosesOutTruncatedStream(t *testing.T) {
	body := "data: {\"type\":\"message_chunk\",\"data\":{\"text_chunk\":\"partial\"}}\n\n"

	final := Run(stream.NewDecoder(strings.NewReader(body), nil), newState(), nil)
	assert.Equal(t, StatusComplete, final.Message.Status)
	assert.Equal(t, "partial", final.Message.Content)
	assert.False(t, final.Errored)
}

func TestFinishWithTransportFault(t *testing.T) {
	s := Apply(newState(), event(t, stream.TypeMessageChunk, stream.MessageChunkData{TextChunk: "lost "}))
	final := Finish(s, io.ErrUnexpectedEOF)

	assert.True(t, final.Errored)
	assert.Equal(t, StatusComplete, final.Message.Status)
	assert.Contains(t, final.Message.Content, "unexpected EOF")
}
