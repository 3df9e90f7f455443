package stream

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
)

const readBufferSize = 4096

// Decoder reconstructs discrete events from an incrementally arriving byte
// stream. It makes no assumption that a full event arrives in one read:
// bytes are accumulated until a delimiter is found, and any partial suffix
// is retained for the next feed.
type Decoder struct {
	buf bytes.Buffer
}

// NewDecoder creates an empty decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends newly arrived bytes to the accumulation buffer
func (d *Decoder) Feed(p []byte) {
	d.buf.Write(p)
}

// Next extracts the next complete event from the buffer. It returns false
// when no full chunk is buffered yet. A chunk that fails to parse is logged
// and skipped rather than aborting the decode loop, so one malformed chunk
// cannot lose subsequent good frames.
func (d *Decoder) Next() (Event, bool) {
	for {
		data := d.buf.Bytes()
		idx := bytes.Index(data, []byte(Delimiter))
		if idx < 0 {
			return Event{}, false
		}

		payload := make([]byte, idx)
		copy(payload, data[:idx])
		d.buf.Next(idx + len(Delimiter))

		event, ok := parseEvent(payload)
		if !ok {
			continue
		}
		return event, true
	}
}

// parseEvent parses one chunk payload and normalizes legacy type tags
func parseEvent(payload []byte) (Event, bool) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return Event{}, false
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("⚠️  Skipping malformed chunk (%d bytes): %v", len(payload), err)
		return Event{}, false
	}
	if event.Type == eventFrameAlias {
		event.Type = EventFrame
	}
	return event, true
}

// Decode reads r to EOF, invoking handle for each decoded event. It stops
// early after a terminal event or when handle returns an error.
func Decode(r io.Reader, handle func(Event) error) error {
	dec := NewDecoder()
	chunk := make([]byte, readBufferSize)

	for {
		n, readErr := r.Read(chunk)
		if n > 0 {
			dec.Feed(chunk[:n])
			for {
				event, ok := dec.Next()
				if !ok {
					break
				}
				if err := handle(event); err != nil {
					return err
				}
				if event.IsTerminal() {
					return nil
				}
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}
