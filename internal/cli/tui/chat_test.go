package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/stream"
)

// pumpStream repeatedly invokes waitForEvent until it reports done or an
// error, collecting the events delivered along the way.
func pumpStream(t *testing.T, events <-chan stream.Event, errs <-chan error) ([]stream.Event, tea.Msg) {
	t.Helper()
	var got []stream.Event
	for i := 0; i < 100; i++ {
		msg := waitForEvent(events, errs)()
		if ev, ok := msg.(streamEventMsg); ok {
			got = append(got, ev.event)
			continue
		}
		return got, msg
	}
	t.Fatal("stream never finished")
	return nil, nil
}

func TestWaitForEventDeliversBufferedEventsAfterClose(t *testing.T) {
	// The producer closes both channels together once the stream ends,
	// possibly with events still sitting in the buffer.
	for trial := 0; trial < 200; trial++ {
		events := make(chan stream.Event, 10)
		errs := make(chan error, 1)
		events <- stream.Event{Type: stream.TypeToolResult}
		events <- stream.Event{Type: stream.TypeMessageComplete}
		close(events)
		close(errs)

		got, last := pumpStream(t, events, errs)
		require.IsType(t, streamDoneMsg{}, last)
		require.Len(t, got, 2, "buffered events were dropped")
		require.Equal(t, stream.TypeToolResult, got[0].Type)
		require.Equal(t, stream.TypeMessageComplete, got[1].Type)
	}
}

func TestWaitForEventSurfacesTrailingError(t *testing.T) {
	events := make(chan stream.Event, 10)
	errs := make(chan error, 1)
	events <- stream.Event{Type: stream.TypeMessageChunk}
	errs <- errors.New("connection reset")
	close(events)
	close(errs)

	got, last := pumpStream(t, events, errs)
	require.Len(t, got, 1)
	require.IsType(t, streamErrMsg{}, last)
	require.EqualError(t, last.(streamErrMsg).err, "connection reset")
}

func TestWaitForEventDoneOnCleanClose(t *testing.T) {
	events := make(chan stream.Event)
	errs := make(chan error, 1)
	close(events)
	close(errs)

	got, last := pumpStream(t, events, errs)
	require.Empty(t, got)
	require.IsType(t, streamDoneMsg{}, last)
}
