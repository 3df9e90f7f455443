package stream

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeAll(t *testing.T, events []Event) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, event := range events {
		require.NoError(t, enc.Encode(event))
	}
	return buf.Bytes()
}

func decodeAll(dec *Decoder) []Event {
	var events []Event
	for {
		event, ok := dec.Next()
		if !ok {
			return events
		}
		events = append(events, event)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	imageBytes := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0xFF}
	original := []Event{
		PosesEvent(`[{"pose":"arms raised"},{"pose":"arms lowered"}]`),
		FrameEvent(FramePayload{
			Type:            FrameTypeImage,
			Base64ImageData: base64.StdEncoding.EncodeToString(imageBytes),
			ContentType:     "image/png",
		}),
		FrameEvent(FramePayload{Type: FrameTypeText, Content: "cannot render this pose"}),
		CompleteEvent("Generation complete"),
	}

	encoded := encodeAll(t, original)

	dec := NewDecoder()
	dec.Feed(encoded)
	decoded := decodeAll(dec)

	require.Len(t, decoded, len(original))
	for i, event := range decoded {
		assert.Equal(t, original[i].Type, event.Type)
	}

	assert.Equal(t, `[{"pose":"arms raised"},{"pose":"arms lowered"}]`, decoded[0].Text())

	frame, err := decoded[1].Frame()
	require.NoError(t, err)
	assert.Equal(t, FrameTypeImage, frame.Type)
	assert.Equal(t, "image/png", frame.ContentType)

	roundTripped, err := base64.StdEncoding.DecodeString(frame.Base64ImageData)
	require.NoError(t, err)
	assert.Equal(t, imageBytes, roundTripped)

	textFrame, err := decoded[2].Frame()
	require.NoError(t, err)
	assert.Equal(t, FrameTypeText, textFrame.Type)
	assert.Equal(t, "cannot render this pose", textFrame.Content)

	assert.Equal(t, "Generation complete", decoded[3].Text())
}

func TestDecoderUnderFragmentation(t *testing.T) {
	original := []Event{
		PosesEvent("pose one\npose two\npose three"),
		FrameEvent(FramePayload{
			Type:            FrameTypeImage,
			Base64ImageData: base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0xAB}, 512)),
			ContentType:     "image/jpeg",
		}),
		CompleteEvent("done"),
	}
	encoded := encodeAll(t, original)

	// Feed one byte at a time: splits inside the delimiter and inside the
	// base64 payload must not change the reconstructed sequence.
	for _, chunkSize := range []int{1, 2, 3, 7, 64} {
		dec := NewDecoder()
		var decoded []Event
		for i := 0; i < len(encoded); i += chunkSize {
			end := i + chunkSize
			if end > len(encoded) {
				end = len(encoded)
			}
			dec.Feed(encoded[i:end])
			decoded = append(decoded, decodeAll(dec)...)
		}

		require.Len(t, decoded, len(original), "chunk size %d", chunkSize)
		for i, event := range decoded {
			assert.Equal(t, original[i].Type, event.Type, "chunk size %d", chunkSize)
			assert.JSONEq(t, string(original[i].Data), string(event.Data), "chunk size %d", chunkSize)
		}
	}
}

func TestPayloadMayContainDelimiterToken(t *testing.T) {
	// The delimiter is only recognized with its surrounding raw newlines,
	// which JSON encoding can never produce inside a payload.
	poseText := "lean forward\n---CHUNK_END---\nand hold"
	encoded := encodeAll(t, []Event{PosesEvent(poseText), CompleteEvent("done")})

	// Marshaled payloads must be newline-free or the delimiter scan breaks.
	firstPayload := strings.Split(string(encoded), Delimiter)[0]
	assert.NotContains(t, firstPayload, "\n")

	dec := NewDecoder()
	dec.Feed(encoded)
	decoded := decodeAll(dec)

	require.Len(t, decoded, 2)
	assert.Equal(t, poseText, decoded[0].Text())
	assert.Equal(t, EventComplete, decoded[1].Type)
}

func TestMalformedChunkIsSkipped(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.Encode(PosesEvent("pose one")))
	buf.WriteString("{not valid json")
	buf.WriteString(Delimiter)
	require.NoError(t, enc.Encode(CompleteEvent("done")))

	dec := NewDecoder()
	dec.Feed(buf.Bytes())
	decoded := decodeAll(dec)

	require.Len(t, decoded, 2)
	assert.Equal(t, EventPoses, decoded[0].Type)
	assert.Equal(t, EventComplete, decoded[1].Type)
}

func TestDecoderAcceptsLegacyFrameTag(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":"nanobanana","data":{"type":"image","base64ImageData":"aGk=","contentType":"image/png"}}`)
	buf.WriteString(Delimiter)

	dec := NewDecoder()
	dec.Feed(buf.Bytes())
	event, ok := dec.Next()

	require.True(t, ok)
	assert.Equal(t, EventFrame, event.Type)

	frame, err := event.Frame()
	require.NoError(t, err)
	assert.Equal(t, "image/png", frame.ContentType)
}

func TestDecodeStopsAtTerminalEvent(t *testing.T) {
	encoded := encodeAll(t, []Event{
		PosesEvent("pose one"),
		ErrorEvent("planner unavailable"),
		// Anything after a terminal event must not be delivered.
		FrameEvent(FramePayload{Type: FrameTypeText, Content: "late"}),
	})

	var seen []EventType
	err := Decode(bytes.NewReader(encoded), func(event Event) error {
		seen = append(seen, event.Type)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []EventType{EventPoses, EventError}, seen)
}
