package stream

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/bytedance/sonic"
)

// maxLineSize bounds a single SSE line; tool results can carry whole
// search responses, so this is generous.
const maxLineSize = 1024 * 1024

// Decoder reads an event-stream response body and yields decoded envelope
// events one at a time. It is a forward-only, single-pass reader: once the
// underlying body reports EOF the decoder is exhausted.
//
// Two envelope conventions coexist across this system and both are accepted:
//
//	data: {"type":"reasoning","data":{...}}
//	data: {"event":"reasoning","data":"{\"reasoning\":...}"}
//
// where the second carries its payload JSON-encoded as a string.
type Decoder struct {
	r       *bufio.Reader
	logger  *slog.Logger
	skipped int
}

// NewDecoder wraps body in a Decoder. The body is consumed incrementally;
// a frame split across two reads still parses as one event.
func NewDecoder(body io.Reader, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{
		r:      bufio.NewReaderSize(body, maxLineSize),
		logger: logger,
	}
}

// Next returns the next event from the stream. It returns io.EOF when the
// body ends; a trailing line without its terminator is discarded. Lines
// that fail to parse are skipped, not fatal. Any other error is a
// transport-level fault from the underlying body.
func (d *Decoder) Next() (Event, error) {
	for {
		line, err := d.r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// Incomplete trailing buffer is dropped by design.
				if strings.TrimSpace(line) != "" {
					d.logger.Debug("discarding incomplete trailing frame", "bytes", len(line))
				}
				return Event{}, io.EOF
			}
			return Event{}, err
		}

		line = strings.TrimSpace(line)

		// Skip blank frame delimiters, comments, and "event:" prefix lines;
		// the event type travels inside the data payload on both conventions.
		if line == "" || strings.HasPrefix(line, ":") || strings.HasPrefix(line, "event:") {
			continue
		}

		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)

		// OpenAI-style terminator used by some upstream emitters.
		if data == "[DONE]" {
			return Event{}, io.EOF
		}

		ev, ok := d.parseEnvelope(data)
		if !ok {
			d.skipped++
			d.logger.Debug("skipping malformed event line", "skipped_total", d.skipped)
			continue
		}
		return ev, nil
	}
}

// Skipped reports how many malformed data lines were recovered over.
func (d *Decoder) Skipped() int {
	return d.skipped
}

func (d *Decoder) parseEnvelope(data string) (Event, bool) {
	var env struct {
		Type  string          `json:"type"`
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := sonic.UnmarshalString(data, &env); err != nil {
		return Event{}, false
	}

	eventType := env.Type
	payload := []byte(env.Data)

	if eventType == "" {
		if env.Event == "" {
			return Event{}, false
		}
		eventType = env.Event
		// Nested convention: data is itself JSON-encoded as a string and
		// needs a second parse pass.
		var inner string
		if err := sonic.Unmarshal(env.Data, &inner); err == nil {
			payload = []byte(inner)
		}
	}

	if len(payload) == 0 || string(payload) == "null" {
		payload = []byte("{}")
	}
	return Event{Type: eventType, Data: payload}, true
}
