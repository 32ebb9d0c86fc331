package offsync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// Sender submits records to the remote endpoint. Single sends serve the
// online bypass path; batch sends serve dispatch cycles. Both use the
// same endpoint and the same JSON serialization.
type Sender interface {
	Send(ctx context.Context, rec Record) error
	SendBatch(ctx context.Context, batch []Record) error
}

// HTTPSender posts record payloads to a sync endpoint.
type HTTPSender struct {
	client *http.Client
	target string
}

// HTTPSenderOption configures an HTTPSender.
type HTTPSenderOption func(*HTTPSender)

// WithHTTPClient overrides the default client (5s timeout).
func WithHTTPClient(client *http.Client) HTTPSenderOption {
	return func(s *HTTPSender) {
		if client != nil {
			s.client = client
		}
	}
}

// NewHTTPSender creates a sender targeting the given URL.
func NewHTTPSender(target string, opts ...HTTPSenderOption) *HTTPSender {
	s := &HTTPSender{
		target: target,
		client: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send posts a single record's payload.
func (s *HTTPSender) Send(ctx context.Context, rec Record) error {
	return s.post(ctx, []byte(rec.Payload))
}

// SendBatch posts the batch as a JSON array of payloads.
func (s *HTTPSender) SendBatch(ctx context.Context, batch []Record) error {
	payloads := make([]json.RawMessage, len(batch))
	for i, rec := range batch {
		payloads[i] = rec.Payload
	}
	body, err := json.Marshal(payloads)
	if err != nil {
		return &SendError{Err: err}
	}
	return s.post(ctx, body)
}

func (s *HTTPSender) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.target, bytes.NewReader(body))
	if err != nil {
		return &SendError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &SendError{Err: err}
	}
	defer func(body io.ReadCloser) { _ = body.Close() }(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &SendError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("endpoint responded with %s", resp.Status),
		}
	}
	return nil
}
