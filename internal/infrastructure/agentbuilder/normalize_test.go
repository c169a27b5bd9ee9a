package agentbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/stream"
)

func feed(t *testing.T, n *normalizer, lines ...string) []stream.Event {
	t.Helper()
	var events []stream.Event
	for _, line := range lines {
		events = append(events, n.line(line)...)
	}
	return events
}

func TestNormalizerConversationStart(t *testing.T) {
	n := newNormalizer(nil)

	events := feed(t, n, `data: {"data": {"conversation_id": "conv-42"}}`)

	require.Len(t, events, 1)
	assert.Equal(t, stream.TypeConversationStarted, events[0].Type)

	var data stream.ConversationStartedData
	require.NoError(t, events[0].Decode(&data))
	assert.Equal(t, "conv-42", data.ConversationID)
}

func TestNormalizerTransientReasoningSkipped(t *testing.T) {
	n := newNormalizer(nil)

	events := feed(t, n,
		`data: {"data": {"reasoning": "Consulting my tools...", "transient": true}}`,
		`data: {"data": {"reasoning": "Looking at alpine gear options"}}`,
	)

	require.Len(t, events, 1)
	assert.Equal(t, stream.TypeReasoning, events[0].Type)

	var data stream.ReasoningData
	require.NoError(t, events[0].Decode(&data))
	assert.Equal(t, "Looking at alpine gear options", data.Reasoning)
}

func TestNormalizerToolCallLifecycle(t *testing.T) {
	n := newNormalizer(nil)

	// Progress frame with a null tool_id, then a placeholder without params,
	// then the populated call.
	events := feed(t, n,
		`data: {"data": {"tool_call_id": "call-1", "tool_id": null}}`,
		`data: {"data": {"tool_call_id": "call-1", "tool_id": "product_search", "params": {}}}`,
		`data: {"data": {"tool_call_id": "call-1", "tool_id": "product_search", "params": {"query": "tents"}}}`,
	)

	require.Len(t, events, 1)
	assert.Equal(t, stream.TypeToolCall, events[0].Type)

	var data stream.ToolCallData
	require.NoError(t, events[0].Decode(&data))
	assert.Equal(t, "call-1", data.ToolCallID)
	assert.Equal(t, "product_search", data.ToolID)
	assert.Equal(t, map[string]interface{}{"query": "tents"}, data.Params)
}

func TestNormalizerReemittedCallRefreshesParamsSilently(t *testing.T) {
	n := newNormalizer(nil)

	events := feed(t, n,
		`data: {"data": {"tool_call_id": "call-1", "tool_id": "product_search", "params": {"query": "tents"}}}`,
		`data: {"data": {"tool_call_id": "call-1", "tool_id": "product_search", "params": {"query": "tents", "size": 5}}}`,
	)

	require.Len(t, events, 1)
	require.Len(t, n.steps, 1)
	assert.Equal(t, map[string]interface{}{"query": "tents", "size": float64(5)}, n.steps[0]["params"])
}

func TestNormalizerToolResultBeforeBareCallCheck(t *testing.T) {
	n := newNormalizer(nil)

	// A frame carrying both results and tool_call_id is a result, not a call.
	events := feed(t, n,
		`data: {"data": {"tool_call_id": "call-1", "tool_id": "product_search", "params": {"query": "tents"}}}`,
		`data: {"data": {"tool_call_id": "call-1", "results": [{"_id": "SKU-1"}]}}`,
	)

	require.Len(t, events, 2)
	assert.Equal(t, stream.TypeToolCall, events[0].Type)
	assert.Equal(t, stream.TypeToolResult, events[1].Type)

	var data stream.ToolResultData
	require.NoError(t, events[1].Decode(&data))
	assert.Equal(t, "call-1", data.ToolCallID)
	require.Len(t, data.Results, 1)

	// The recap step picked up the results too.
	require.Len(t, n.steps, 1)
	assert.Equal(t, []interface{}{map[string]interface{}{"_id": "SKU-1"}}, n.steps[0]["results"])
}

func TestNormalizerTextAndCompletion(t *testing.T) {
	n := newNormalizer(nil)

	events := feed(t, n,
		`data: {"data": {"conversation_id": "conv-7"}}`,
		`data: {"data": {"text_chunk": "Here are "}}`,
		`data: {"data": {"text_chunk": "three tents."}}`,
		`data: {"data": {"message_content": "Here are three tents."}}`,
	)
	events = append(events, n.finish()...)

	require.Len(t, events, 5)
	assert.Equal(t, stream.TypeMessageChunk, events[1].Type)
	assert.Equal(t, stream.TypeMessageComplete, events[3].Type)
	assert.Equal(t, stream.TypeCompletion, events[4].Type)

	var done stream.CompletionData
	require.NoError(t, events[4].Decode(&done))
	assert.Equal(t, "conv-7", done.ConversationID)
}

func TestNormalizerRoundResponseMessage(t *testing.T) {
	n := newNormalizer(nil)

	events := feed(t, n,
		`data: {"data": {"round": {"response": {"message": "Final answer."}}}}`,
	)

	require.Len(t, events, 1)
	assert.Equal(t, stream.TypeMessageComplete, events[0].Type)

	var data stream.MessageCompleteData
	require.NoError(t, events[0].Decode(&data))
	assert.Equal(t, "Final answer.", data.MessageContent)
}

func TestNormalizerOuterError(t *testing.T) {
	n := newNormalizer(nil)

	events := feed(t, n, `data: {"error": {"message": "API key expired", "code": 401}}`)

	require.Len(t, events, 1)
	assert.Equal(t, stream.TypeError, events[0].Type)

	var data stream.ErrorData
	require.NoError(t, events[0].Decode(&data))
	assert.Equal(t, "API key expired", data.Error)
}

func TestNormalizerSkipsNoise(t *testing.T) {
	n := newNormalizer(nil)

	events := feed(t, n,
		"",
		": keep-alive",
		"event: message",
		"data: {not json",
		`data: {"data": {"something_else": true}}`,
	)

	assert.Empty(t, events)
}
