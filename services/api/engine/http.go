package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxPayload bounds the engine response; texture data URLs are large.
const maxPayload = 64 << 20

// HTTPEngine invokes the engine's process endpoint.
type HTTPEngine struct {
	client *http.Client
	url    string
}

func NewHTTPEngine(client *http.Client, url string) *HTTPEngine {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPEngine{client: client, url: url}
}

// Process POSTs to the engine and decodes its output.
func (e *HTTPEngine) Process(ctx context.Context) (Output, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, nil)
	if err != nil {
		return Output{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return Output{}, fmt.Errorf("%w: request process: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Output{}, fmt.Errorf("%w: unexpected status %s", ErrUnavailable, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		return Output{}, fmt.Errorf("%w: read payload: %v", ErrUnavailable, err)
	}
	return DecodeBytes(body)
}
