package animation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/flipbook-labs/flipbook-api/internal/stream"
)

// Generation can run long: N sequential model calls behind one response
const defaultClientTimeout = 15 * time.Minute

// Client uploads an image and assembles the streamed progress events into
// an Animation. It is the reference consumer of the streaming protocol.
type Client struct {
	baseURL    string
	httpClient *http.Client
	frameRate  int
}

// NewClient creates a client against the given API base URL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultClientTimeout},
		frameRate:  DefaultFrameRate,
	}
}

// Generate uploads the image and consumes the response stream to its
// terminal event. Structural failures (HTTP errors, transport drops)
// return an error; generation failures surface on the Assembled result.
func (c *Client) Generate(ctx context.Context, imageData []byte, mediaType string) (*Assembled, error) {
	body, contentType, err := buildMultipart(imageData, mediaType)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/animations/generate", body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeHTTPError(resp)
	}

	assembler := NewAssembler(c.frameRate)
	if err := stream.Decode(resp.Body, assembler.Handle); err != nil {
		return assembler.Result(), fmt.Errorf("stream interrupted: %w", err)
	}
	return assembler.Result(), nil
}

// decodeHTTPError extracts the JSON error body of a non-streaming failure
func decodeHTTPError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		return fmt.Errorf("server rejected request (%d): %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("server rejected request (%d)", resp.StatusCode)
}

// buildMultipart wraps the image bytes in a single-field multipart body
func buildMultipart(imageData []byte, mediaType string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="source"`)
	header.Set("Content-Type", mediaType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create multipart field: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, "", fmt.Errorf("failed to write image bytes: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}
