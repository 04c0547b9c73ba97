// Package calendar talks to the external calendar service used for
// schedule and task side effects.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNotConfigured is returned when no calendar service base URL is set.
var ErrNotConfigured = errors.New("calendar service not configured")

// Event is a calendar event.
type Event struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// Task is a calendar to-do item.
type Task struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Notes string `json:"notes,omitempty"`
	Due   string `json:"due,omitempty"` // YYYY-MM-DD
}

// Client is an HTTP client for the calendar service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a calendar client. An empty baseURL yields a client whose
// calls all return ErrNotConfigured.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateEvent creates an event and returns it with the service-assigned id.
func (c *Client) CreateEvent(ctx context.Context, ev Event) (Event, error) {
	var created Event
	if err := c.post(ctx, "/events", ev, &created); err != nil {
		return Event{}, fmt.Errorf("creating event: %w", err)
	}
	return created, nil
}

// CreateTask creates a to-do item and returns it with the service-assigned id.
func (c *Client) CreateTask(ctx context.Context, task Task) (Task, error) {
	var created Task
	if err := c.post(ctx, "/tasks", task, &created); err != nil {
		return Task{}, fmt.Errorf("creating task: %w", err)
	}
	return created, nil
}

// ListEvents returns events starting within [from, to), soonest first.
func (c *Client) ListEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("timeMin", from.Format(time.RFC3339))
	q.Set("timeMax", to.Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/events?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("calendar service returned %d: %s", resp.StatusCode, string(body))
	}

	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decoding events: %w", err)
	}
	return events, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("calendar service returned %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// DayBounds returns the start of the given calendar day in loc and the
// start of the following day.
func DayBounds(day time.Time, loc *time.Location) (from, to time.Time) {
	y, m, d := day.In(loc).Date()
	from = time.Date(y, m, d, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 0, 1)
}
