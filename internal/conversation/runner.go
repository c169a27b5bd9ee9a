package conversation

import (
	"fmt"
	"io"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/stream"
)

// Run drains a decoder into the reducer, invoking observe (when non-nil)
// after every transition. It returns the terminal state; transport faults
// are folded into the state rather than propagated, so the caller always
// gets something renderable.
func Run(d *stream.Decoder, initial State, observe func(State)) State {
	s := initial
	for {
		ev, err := d.Next()
		if err == io.EOF {
			return Finish(s, nil)
		}
		if err != nil {
			return Finish(s, err)
		}
		s = Apply(s, ev)
		if observe != nil {
			observe(s)
		}
		if s.Errored {
			return s
		}
	}
}

// Collect drains an event channel into the reducer. Used where the events
// arrive over a channel instead of a decoder.
func Collect(initial State, events <-chan stream.Event) State {
	s := initial
	for ev := range events {
		s = Apply(s, ev)
		if s.Errored {
			return s
		}
	}
	return Finish(s, nil)
}

// Finish forces the state terminal. A transport fault becomes visible error
// text; a stream that ended without a completion event is closed out with
// whatever content accumulated.
func Finish(s State, transportErr error) State {
	if transportErr != nil && !s.Errored {
		s.Message.Content = fmt.Sprintf("Sorry, something went wrong: %s", transportErr)
		s.Message.Status = StatusComplete
		s.Errored = true
		return s
	}
	if s.Message.Status != StatusComplete {
		s.Message.Status = StatusComplete
	}
	return s
}
