// Package apiclient is a small read-only client for the Open Day API,
// used by the seatwatch terminal viewer.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iliyamo/openday-seat-reservation/internal/model"
)

// Client talks to one server. BaseURL has no trailing slash.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client with a 10s request timeout.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// StatusError is returned for non-2xx responses; Message is the
// server's "error" field when present.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// Settings fetches GET /api/settings.
func (c *Client) Settings(ctx context.Context) (*model.Settings, error) {
	var st model.Settings
	if err := c.get(ctx, "/api/settings", &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Events fetches GET /api/events.
func (c *Client) Events(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := c.get(ctx, "/api/events", &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Seats fetches GET /api/seats/:eventId.
func (c *Client) Seats(ctx context.Context, eventID uint64) ([]model.Seat, error) {
	var seats []model.Seat
	if err := c.get(ctx, fmt.Sprintf("/api/seats/%d", eventID), &seats); err != nil {
		return nil, err
	}
	return seats, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
		return &StatusError{Code: resp.StatusCode, Message: body.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
