package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/stream"
)

type fakeStreamer struct {
	events    []stream.Event
	syncReply string
	err       error

	lastInput string
	lastAgent string
}

func (f *fakeStreamer) Converse(ctx context.Context, input, agentID string) (<-chan stream.Event, error) {
	f.lastInput = input
	f.lastAgent = agentID
	if f.err != nil {
		return nil, f.err
	}
	out := make(chan stream.Event, len(f.events))
	for _, ev := range f.events {
		out <- ev
	}
	close(out)
	return out, nil
}

func (f *fakeStreamer) ConverseSync(ctx context.Context, input, agentID string) (string, error) {
	f.lastInput = input
	f.lastAgent = agentID
	return f.syncReply, f.err
}

type fakeVision struct {
	ready       bool
	description string
	err         error
}

func (f *fakeVision) Ready() bool { return f.ready }

func (f *fakeVision) AnalyzeImage(ctx context.Context, imageBase64 string) (string, error) {
	return f.description, f.err
}

func collectEvents(ch <-chan stream.Event) []stream.Event {
	var events []stream.Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChatStreamingPrefixesUserID(t *testing.T) {
	streamer := &fakeStreamer{}
	u := NewChatUsecase(streamer, &fakeVision{}, quietLogger())

	ch, err := u.ChatStreaming(context.Background(), &domain.ChatRequest{
		UserID:  "user_platinum",
		Message: "I need a tent for Patagonia",
	})
	require.NoError(t, err)
	collectEvents(ch)

	assert.Equal(t, "[User ID: user_platinum] I need a tent for Patagonia", streamer.lastInput)
	assert.Equal(t, DefaultAgentID, streamer.lastAgent)
}

func TestChatStreamingDefaultsUserAndAgent(t *testing.T) {
	streamer := &fakeStreamer{}
	u := NewChatUsecase(streamer, &fakeVision{}, quietLogger())

	ch, err := u.ChatStreaming(context.Background(), &domain.ChatRequest{Message: "hello"})
	require.NoError(t, err)
	collectEvents(ch)

	assert.Equal(t, "[User ID: user_new] hello", streamer.lastInput)
	assert.Equal(t, "wayfinder-search-agent", streamer.lastAgent)
}

func TestChatStreamingRequiresMessage(t *testing.T) {
	u := NewChatUsecase(&fakeStreamer{}, &fakeVision{}, quietLogger())

	_, err := u.ChatStreaming(context.Background(), &domain.ChatRequest{})
	assert.True(t, domain.IsInvalidInput(err))
}

func TestChatStreamingInjectsVisionAnalysis(t *testing.T) {
	agentEvent, err := stream.NewEvent(stream.TypeMessageComplete, stream.MessageCompleteData{
		MessageContent: "Pack crampons.",
	})
	require.NoError(t, err)

	streamer := &fakeStreamer{events: []stream.Event{agentEvent}}
	vision := &fakeVision{ready: true, description: "Snowy alpine ridge, winter conditions"}
	u := NewChatUsecase(streamer, vision, quietLogger())

	ch, err := u.ChatStreaming(context.Background(), &domain.ChatRequest{
		UserID:      "user_new",
		Message:     "what gear do I need here?",
		ImageBase64: "aGVsbG8=",
	})
	require.NoError(t, err)

	events := collectEvents(ch)
	require.Len(t, events, 2)
	assert.Equal(t, stream.TypeVisionAnalysis, events[0].Type)
	assert.Equal(t, stream.TypeMessageComplete, events[1].Type)

	var data stream.VisionAnalysisData
	require.NoError(t, events[0].Decode(&data))
	assert.Equal(t, "Snowy alpine ridge, winter conditions", data.Description)

	assert.Equal(t,
		"[Vision Context: Snowy alpine ridge, winter conditions] [User ID: user_new] what gear do I need here?",
		streamer.lastInput)
}

func TestChatStreamingVisionFailureDoesNotBlockTurn(t *testing.T) {
	streamer := &fakeStreamer{}
	vision := &fakeVision{ready: true, err: errors.New("model overloaded")}
	u := NewChatUsecase(streamer, vision, quietLogger())

	ch, err := u.ChatStreaming(context.Background(), &domain.ChatRequest{
		Message:     "gear for this?",
		ImageBase64: "aGVsbG8=",
	})
	require.NoError(t, err)

	events := collectEvents(ch)
	require.Len(t, events, 1)
	assert.Equal(t, stream.TypeVisionError, events[0].Type)

	// No vision context in the agent input.
	assert.Equal(t, "[User ID: user_new] gear for this?", streamer.lastInput)
}

func TestChatStreamingIgnoresImageWhenVisionNotReady(t *testing.T) {
	streamer := &fakeStreamer{}
	u := NewChatUsecase(streamer, &fakeVision{ready: false}, quietLogger())

	ch, err := u.ChatStreaming(context.Background(), &domain.ChatRequest{
		Message:     "hello",
		ImageBase64: "aGVsbG8=",
	})
	require.NoError(t, err)

	events := collectEvents(ch)
	assert.Empty(t, events)
	assert.Equal(t, "[User ID: user_new] hello", streamer.lastInput)
}

func TestParseTripContext(t *testing.T) {
	streamer := &fakeStreamer{
		syncReply: "```json\n{\"destination\": \"Patagonia\", \"dates\": \"March\", \"activity\": \"trekking\"}\n```",
	}
	u := NewChatUsecase(streamer, &fakeVision{}, quietLogger())

	tc, err := u.ParseTripContext(context.Background(), "trekking Patagonia in March")
	require.NoError(t, err)
	assert.Equal(t, "context-extractor-agent", streamer.lastAgent)
	assert.Equal(t, &domain.TripContext{
		Destination: "Patagonia",
		Dates:       "March",
		Activity:    "trekking",
	}, tc)
}

func TestParseTripContextUnparseableYieldsEmpty(t *testing.T) {
	streamer := &fakeStreamer{syncReply: "Sorry, I could not determine that."}
	u := NewChatUsecase(streamer, &fakeVision{}, quietLogger())

	tc, err := u.ParseTripContext(context.Background(), "hmm")
	require.NoError(t, err)
	assert.Equal(t, &domain.TripContext{}, tc)
}

func TestExtractItinerary(t *testing.T) {
	streamer := &fakeStreamer{
		syncReply: `Here is your plan:
{"days": [{"day": 1, "title": "Arrival", "activities": ["check in", "acclimatize"]}]}`,
	}
	u := NewChatUsecase(streamer, &fakeVision{}, quietLogger())

	days, err := u.ExtractItinerary(context.Background(), "a week in Patagonia")
	require.NoError(t, err)
	assert.Equal(t, "itinerary-extractor-agent", streamer.lastAgent)
	require.Len(t, days, 1)
	assert.Equal(t, 1, days[0].Day)
	assert.Equal(t, "Arrival", days[0].Title)
}

func TestExtractItineraryUpstreamError(t *testing.T) {
	streamer := &fakeStreamer{err: domain.NewUpstreamError("agent platform", errors.New("boom"))}
	u := NewChatUsecase(streamer, &fakeVision{}, quietLogger())

	_, err := u.ExtractItinerary(context.Background(), "plan")
	assert.True(t, domain.IsUpstream(err))
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose around fence", "Sure!\n```json\n{\"a\": 1}\n```\nDone.", `{"a": 1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stripCodeFences(tc.in))
		})
	}
}

func TestExtractJSONRegexFallback(t *testing.T) {
	var tc domain.TripContext
	ok := extractJSON(
		`The context is {"destination": "Kyoto", "dates": "April", "activity": "hiking"} as requested.`,
		[]string{"destination", "dates", "activity"}, &tc)

	require.True(t, ok)
	assert.Equal(t, "Kyoto", tc.Destination)
}
