// Package record defines the persisted record model: four collections,
// a shared envelope stamped at write time, and one typed payload per
// collection, validated at construction.
package record

import (
	"fmt"
	"time"
)

// Collection is a logical, named grouping of records of one kind.
type Collection string

const (
	Schedules Collection = "schedules"
	Tasks     Collection = "tasks"
	Notes     Collection = "notes"
	Meetings  Collection = "meetings"
)

// Collections returns all known collections in their canonical order.
func Collections() []Collection {
	return []Collection{Schedules, Tasks, Notes, Meetings}
}

// ParseCollection validates a collection name from an external caller.
func ParseCollection(s string) (Collection, error) {
	c := Collection(s)
	for _, known := range Collections() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// ValidationError reports malformed caller data, naming the offending field.
// It is raised before any external call or write is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ParseDate parses a strict YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// ParseClock parses a strict HH:MM time of day.
func ParseClock(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// Envelope is the common header shared by every stored record.
// ID and CreatedAt are assigned by the store at write time and are
// immutable afterward.
type Envelope struct {
	ID         string     `json:"id"`
	Collection Collection `json:"collection"`
	CreatedAt  time.Time  `json:"createdAt"`
	Source     string     `json:"source"`
}

// Doc is the flattened field set persisted for any record payload.
// Only the fields relevant to a payload's collection are populated.
type Doc struct {
	Title       string   `json:"title,omitempty"`
	Content     string   `json:"content,omitempty"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date,omitempty"`
	StartTime   string   `json:"startTime,omitempty"`
	EndTime     string   `json:"endTime,omitempty"`
	DueDate     string   `json:"dueDate,omitempty"`
	ActionItems []string `json:"actionItems,omitempty"`
}

// Text returns the most significant text of the document: content first,
// then description, then title. Used for embedding generation.
func (d Doc) Text() string {
	switch {
	case d.Content != "":
		return d.Content
	case d.Description != "":
		return d.Description
	default:
		return d.Title
	}
}

// Stored is a persisted record as returned by queries: envelope, flattened
// payload fields, and the embedding when the primary path produced one.
type Stored struct {
	Envelope
	Doc
	Embedding []float32 `json:"embedding,omitempty"`
}

// Payload is implemented by each collection's record body.
type Payload interface {
	Collection() Collection
	Validate() error
	Doc() Doc
}

// Schedule is a calendar event record.
type Schedule struct {
	Title       string
	Description string
	Date        string // YYYY-MM-DD
	StartTime   string // HH:MM
	EndTime     string // HH:MM
}

func (s Schedule) Collection() Collection { return Schedules }

func (s Schedule) Validate() error {
	if s.Title == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if s.Date == "" {
		return &ValidationError{Field: "date", Reason: "required"}
	}
	if _, err := ParseDate(s.Date); err != nil {
		return &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	if s.StartTime == "" {
		return &ValidationError{Field: "startTime", Reason: "required"}
	}
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return &ValidationError{Field: "startTime", Reason: "must be HH:MM"}
	}
	if s.EndTime == "" {
		return &ValidationError{Field: "endTime", Reason: "required"}
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return &ValidationError{Field: "endTime", Reason: "must be HH:MM"}
	}
	if !start.Before(end) {
		return &ValidationError{Field: "endTime", Reason: "must be after startTime"}
	}
	return nil
}

func (s Schedule) Doc() Doc {
	return Doc{
		Title:       s.Title,
		Description: s.Description,
		Date:        s.Date,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
	}
}

// Span returns the event's start and end instants in the given location.
// Call Validate first; Span assumes well-formed date and time fields.
func (s Schedule) Span(loc *time.Location) (start, end time.Time, err error) {
	start, err = time.ParseInLocation(dateLayout+" "+timeLayout, s.Date+" "+s.StartTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing start instant: %w", err)
	}
	end, err = time.ParseInLocation(dateLayout+" "+timeLayout, s.Date+" "+s.EndTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing end instant: %w", err)
	}
	return start, end, nil
}

// Task is a to-do record.
type Task struct {
	Title       string
	Description string
	DueDate     string // YYYY-MM-DD, optional
}

func (t Task) Collection() Collection { return Tasks }

func (t Task) Validate() error {
	if t.Title == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if t.DueDate != "" {
		if _, err := ParseDate(t.DueDate); err != nil {
			return &ValidationError{Field: "dueDate", Reason: "must be YYYY-MM-DD"}
		}
	}
	return nil
}

func (t Task) Doc() Doc {
	return Doc{Title: t.Title, Description: t.Description, DueDate: t.DueDate}
}

// Note is a free-form memo record.
type Note struct {
	Title   string
	Content string
}

func (n Note) Collection() Collection { return Notes }

func (n Note) Validate() error {
	if n.Title == "" && n.Content == "" {
		return &ValidationError{Field: "content", Reason: "required"}
	}
	return nil
}

func (n Note) Doc() Doc {
	return Doc{Title: n.Title, Content: n.Content}
}

// Meeting is a meeting summary record.
type Meeting struct {
	Title       string
	Summary     string
	ActionItems []string
}

func (m Meeting) Collection() Collection { return Meetings }

func (m Meeting) Validate() error {
	if m.Title == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	return nil
}

func (m Meeting) Doc() Doc {
	return Doc{Title: m.Title, Content: m.Summary, ActionItems: m.ActionItems}
}
