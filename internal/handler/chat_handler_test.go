package handler

import (
	"testing"
	"time"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/stream"
)

func TestDrainEventsUnblocksProducer(t *testing.T) {
	events := make(chan stream.Event, 2)
	// Fill the buffer so the producer's next send blocks.
	events <- stream.Event{Type: stream.TypeMessageChunk}
	events <- stream.Event{Type: stream.TypeMessageChunk}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			events <- stream.Event{Type: stream.TypeMessageChunk}
		}
		close(events)
	}()

	go drainEvents(events)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer still blocked after the consumer went away")
	}
}
