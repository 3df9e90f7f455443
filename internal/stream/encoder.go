package stream

import (
	"encoding/json"
	"fmt"
	"io"
)

// Delimiter separates consecutive encoded events on the wire.
//
// Protocol invariant: the leading and trailing newlines make the delimiter
// unambiguous, because encoding/json never emits a raw newline inside a
// marshaled value (control characters are escaped) and image bytes are
// base64-encoded before embedding. A payload may therefore contain the
// literal text "---CHUNK_END---" without corrupting the stream.
const Delimiter = "\n---CHUNK_END---\n"

// Flusher is the subset of http.Flusher the encoder needs. gin's
// ResponseWriter satisfies it; a nil flusher is allowed for buffered sinks.
type Flusher interface {
	Flush()
}

// Encoder serializes progress events onto a single long-lived writer.
// Each event is flushed the moment it is encoded so the client can render
// progress before the sequence completes.
type Encoder struct {
	w       io.Writer
	flusher Flusher
}

// NewEncoder creates an encoder over w. If w also implements Flusher
// (e.g. an HTTP response writer), every event is flushed after writing.
func NewEncoder(w io.Writer) *Encoder {
	enc := &Encoder{w: w}
	if f, ok := w.(Flusher); ok {
		enc.flusher = f
	}
	return enc
}

// Encode writes one event followed by the chunk delimiter and flushes.
// A write error means the client is gone; callers must stop emitting.
func (e *Encoder) Encode(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	if _, err := e.w.Write(payload); err != nil {
		return fmt.Errorf("failed to write %s event: %w", event.Type, err)
	}
	if _, err := io.WriteString(e.w, Delimiter); err != nil {
		return fmt.Errorf("failed to write chunk delimiter: %w", err)
	}

	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}
