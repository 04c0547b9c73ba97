package command

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yupi/agentcore/internal/ollama"
)

const extractionTimeout = 10 * time.Second

// Chatter is the interface for structured chat completion.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []ollama.Message, jsonSchema *ollama.Schema) (string, error)
}

// Extractor classifies free-form user text into an ExtractedCommand using
// a fast local LLM.
type Extractor struct {
	client Chatter
	model  string
}

// NewExtractor creates an Extractor using the given chat client and model name.
func NewExtractor(client Chatter, model string) *Extractor {
	return &Extractor{client: client, model: model}
}

// Extract classifies text against the given reference date, which resolves
// relative expressions like "tomorrow" or weekday names to absolute dates.
// Given a fixed reference date the resolution is deterministic.
//
// On any upstream failure it returns a *ClassificationError and no partial
// result. A successful result always has a valid category (UNKNOWN when the
// classifier could not place the text) and has the query-marker override
// already applied.
func (e *Extractor) Extract(ctx context.Context, text string, referenceDate time.Time) (ExtractedCommand, error) {
	ctx, cancel := context.WithTimeout(ctx, extractionTimeout)
	defer cancel()

	messages := BuildPrompt(text, referenceDate)

	raw, err := e.client.Chat(ctx, e.model, messages, extractionSchema())
	if err != nil {
		return ExtractedCommand{}, &ClassificationError{Err: err}
	}

	var parsed struct {
		Category    string `json:"category"`
		Title       string `json:"title"`
		Date        string `json:"date"`
		StartTime   string `json:"startTime"`
		EndTime     string `json:"endTime"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return ExtractedCommand{}, &ClassificationError{Err: err}
	}

	cmd := ExtractedCommand{
		Category:    ParseCategory(parsed.Category),
		Title:       parsed.Title,
		Date:        parsed.Date,
		StartTime:   parsed.StartTime,
		EndTime:     parsed.EndTime,
		Description: parsed.Description,
	}
	return ApplyQueryOverride(cmd), nil
}

// extractionSchema returns the JSON schema for structured extraction output.
func extractionSchema() *ollama.Schema {
	return &ollama.Schema{
		Type: "object",
		Properties: map[string]ollama.SchemaProperty{
			"category": {
				Type:        "string",
				Description: "One of: SCHEDULE, SCHEDULE_QUERY, NOTE, TASK, BRIEFING, MEETING, UNKNOWN",
				Enum: []string{
					string(CategorySchedule), string(CategoryScheduleQuery),
					string(CategoryNote), string(CategoryTask),
					string(CategoryBriefing), string(CategoryMeeting),
					string(CategoryUnknown),
				},
			},
			"title":       {Type: "string", Description: "The main subject of the input"},
			"date":        {Type: "string", Description: "Resolved absolute date in YYYY-MM-DD format, empty if none"},
			"startTime":   {Type: "string", Description: "Start time in 24-hour HH:MM format, empty if none"},
			"endTime":     {Type: "string", Description: "End time in 24-hour HH:MM format, empty if none"},
			"description": {Type: "string", Description: "Additional details, empty if none"},
		},
		Required: []string{"category", "title"},
	}
}
