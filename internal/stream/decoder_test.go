package stream

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader returns one predefined chunk per Read call, simulating
// network reads that split frames at arbitrary byte boundaries.
type chunkReader struct {
	chunks []string
	pos    int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.chunks) {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[r.pos])
	r.pos++
	return n, nil
}

func drain(t *testing.T, d *Decoder) []Event {
	t.Helper()
	var events []Event
	for {
		ev, err := d.Next()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func TestDecoderFlatEnvelope(t *testing.T) {
	body := "data: {\"type\":\"reasoning\",\"data\":{\"reasoning\":\"checking weather\"}}\n\n" +
		"data: {\"type\":\"message_chunk\",\"data\":{\"text_chunk\":\"Here are\"}}\n\n"

	events := drain(t, NewDecoder(strings.NewReader(body), nil))
	require.Len(t, events, 2)

	assert.Equal(t, TypeReasoning, events[0].Type)
	var reasoning ReasoningData
	require.NoError(t, events[0].Decode(&reasoning))
	assert.Equal(t, "checking weather", reasoning.Reasoning)

	assert.Equal(t, TypeMessageChunk, events[1].Type)
	var chunk MessageChunkData
	require.NoError(t, events[1].Decode(&chunk))
	assert.Equal(t, "Here are", chunk.TextChunk)
}

func TestDecoderNestedEnvelope(t *testing.T) {
	// Second wire convention: type under "event", data JSON-encoded as a
	// string requiring a second parse pass.
	body := `data: {"event":"tool_call","data":"{\"tool_call_id\":\"c1\",\"tool_id\":\"product_search\",\"params\":{\"q\":\"tent\"}}"}` + "\n\n"

	events := drain(t, NewDecoder(strings.NewReader(body), nil))
	require.Len(t, events, 1)
	assert.Equal(t, TypeToolCall, events[0].Type)

	var call ToolCallData
	require.NoError(t, events[0].Decode(&call))
	assert.Equal(t, "c1", call.ToolCallID)
	assert.Equal(t, "product_search", call.ToolID)
	assert.Equal(t, "tent", call.Params["q"])
}

func TestDecoderChunkSplitFrame(t *testing.T) {
	// A frame's JSON body split across two network reads must still parse
	// as exactly one event.
	r := &chunkReader{chunks: []string{
		`data: {"ty`,
		"pe\":\"reasoning\",\"data\":{\"reasoning\":\"split\"}}\n\n",
	}}

	events := drain(t, NewDecoder(r, nil))
	require.Len(t, events, 1)
	assert.Equal(t, TypeReasoning, events[0].Type)
}

func TestDecoderMalformedLineRecovered(t *testing.T) {
	body := "data: {\"type\":\"reasoning\",\"data\":{\"reasoning\":\"first\"}}\n\n" +
		"data: {not valid json\n\n" +
		"data: {\"type\":\"reasoning\",\"data\":{\"reasoning\":\"second\"}}\n\n"

	d := NewDecoder(strings.NewReader(body), nil)
	events := drain(t, d)

	require.Len(t, events, 2)
	assert.Equal(t, 1, d.Skipped())
}

func TestDecoderEnvelopeWithoutType(t *testing.T) {
	body := "data: {\"data\":{\"reasoning\":\"orphan payload\"}}\n\n" +
		"data: {\"type\":\"reasoning\",\"data\":{\"reasoning\":\"kept\"}}\n\n"

	d := NewDecoder(strings.NewReader(body), nil)
	events := drain(t, d)

	require.Len(t, events, 1)
	assert.Equal(t, 1, d.Skipped())
}

func TestDecoderTrailingIncompleteBufferDiscarded(t *testing.T) {
	body := "data: {\"type\":\"reasoning\",\"data\":{\"reasoning\":\"complete\"}}\n\n" +
		`data: {"type":"reasoning","data":{"reason` // no terminator, cut by EOF

	events := drain(t, NewDecoder(strings.NewReader(body), nil))
	require.Len(t, events, 1)
}

func TestDecoderIgnoresCommentsAndEventLines(t *testing.T) {
	body := ": keepalive\n\n" +
		"event: reasoning\n" +
		"data: {\"type\":\"reasoning\",\"data\":{\"reasoning\":\"x\"}}\n\n"

	events := drain(t, NewDecoder(strings.NewReader(body), nil))
	require.Len(t, events, 1)
}

func TestDecoderDoneMarkerEndsStream(t *testing.T) {
	body := "data: {\"type\":\"message_chunk\",\"data\":{\"text_chunk\":\"hi\"}}\n\n" +
		"data: [DONE]\n\n" +
		"data: {\"type\":\"message_chunk\",\"data\":{\"text_chunk\":\"never\"}}\n\n"

	events := drain(t, NewDecoder(strings.NewReader(body), nil))
	require.Len(t, events, 1)
}
