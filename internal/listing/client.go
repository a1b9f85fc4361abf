// Package listing fetches the showings of a day from the listing
// service and normalises them into sessions.
package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fullindescription/VL-rebrand/internal/model"
)

// ErrUnknownKind is returned for a kind the listing service has no feed for.
var ErrUnknownKind = errors.New("unknown listing kind")

var paths = map[model.Kind]string{
	model.KindScreening: "/api/events/getfilmsforday/",
	model.KindEvent:     "/api/events/geteventsforday/",
}

// APIError is returned when the listing service answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("listing api error: %d from %s: %s", e.StatusCode, e.Endpoint, e.Body)
}

// Client reads the listing service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        logrus.FieldLogger
}

// NewClient builds a client for baseURL.  If httpClient is nil a client
// with a 10s timeout is used; if log is nil the standard logrus logger is.
func NewClient(baseURL string, httpClient *http.Client, log logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log,
	}
}

// Sessions returns the sessions of kind on date (YYYY-MM-DD).  A payload
// that cannot be read as a list is logged and reported as no sessions.
func (c *Client) Sessions(ctx context.Context, kind model.Kind, date string) ([]model.Session, error) {
	path, ok := paths[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	endpoint := c.baseURL + path
	if date != "" {
		endpoint += "?" + url.Values{"date": {date}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
		return nil, &APIError{
			StatusCode: res.StatusCode,
			Endpoint:   endpoint,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", endpoint, err)
	}
	sessions, err := Decode(body, kind)
	if err != nil {
		c.log.WithError(err).WithField("endpoint", endpoint).Warn("listing payload ignored")
	}
	return sessions, nil
}
