package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is returned when the checkout service answers with a non-2xx
// status.  The service sends no structured error body.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("checkout api error: status %d", e.StatusCode)
}

// HTTPBooker posts orders to the checkout service.  It does not retry.
type HTTPBooker struct {
	httpClient *http.Client
	url        string
}

// NewHTTPBooker returns a booker posting to url.  A nil httpClient gets a
// client bounded by timeout.
func NewHTTPBooker(url string, httpClient *http.Client, timeout time.Duration) *HTTPBooker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPBooker{httpClient: httpClient, url: url}
}

// Book posts o.Request as JSON.
func (b *HTTPBooker) Book(ctx context.Context, o Order) (Receipt, error) {
	body, err := json.Marshal(o.Request)
	if err != nil {
		return Receipt{}, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := b.httpClient.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
		return Receipt{}, &APIError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return Receipt{}, nil
}
