// Package command turns free-form user text into a typed, dated command
// via a local LLM, and normalizes the result before routing.
package command

import (
	"fmt"
	"strings"
)

// Category classifies what the user asked for.
type Category string

const (
	CategorySchedule      Category = "SCHEDULE"
	CategoryScheduleQuery Category = "SCHEDULE_QUERY"
	CategoryNote          Category = "NOTE"
	CategoryTask          Category = "TASK"
	CategoryBriefing      Category = "BRIEFING"
	CategoryMeeting       Category = "MEETING"
	CategoryUnknown       Category = "UNKNOWN"
)

// ParseCategory maps a raw classifier label onto a known Category.
// Unrecognized labels collapse to UNKNOWN; the category is always set.
func ParseCategory(s string) Category {
	switch Category(strings.ToUpper(strings.TrimSpace(s))) {
	case CategorySchedule:
		return CategorySchedule
	case CategoryScheduleQuery:
		return CategoryScheduleQuery
	case CategoryNote:
		return CategoryNote
	case CategoryTask:
		return CategoryTask
	case CategoryBriefing:
		return CategoryBriefing
	case CategoryMeeting:
		return CategoryMeeting
	default:
		return CategoryUnknown
	}
}

// ExtractedCommand is the structured output of classifying user text.
// Time fields are only meaningful when Category is SCHEDULE.
type ExtractedCommand struct {
	Category    Category `json:"category"`
	Title       string   `json:"title"`
	Date        string   `json:"date,omitempty"`      // YYYY-MM-DD
	StartTime   string   `json:"startTime,omitempty"` // HH:MM
	EndTime     string   `json:"endTime,omitempty"`   // HH:MM
	Description string   `json:"description,omitempty"`
}

// ClassificationError reports an upstream classifier failure. No partial
// result accompanies it; callers must not guess a category.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classifying command: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// queryMarkers are title substrings meaning "tell me" / "show me". A
// SCHEDULE result whose title carries one is really a query about existing
// events, which some classifier runs mislabel as event creation.
//
// The marker list is locale-specific and admittedly brittle; it reproduces
// the correction layer the product shipped with rather than attempting a
// general solution.
var queryMarkers = []string{"알려줘", "보여줘"}

// ApplyQueryOverride reclassifies SCHEDULE as SCHEDULE_QUERY when the
// extracted title contains an explicit query marker. It runs after
// classification and before any persistence or side effect.
func ApplyQueryOverride(cmd ExtractedCommand) ExtractedCommand {
	if cmd.Category != CategorySchedule {
		return cmd
	}
	for _, marker := range queryMarkers {
		if strings.Contains(cmd.Title, marker) {
			cmd.Category = CategoryScheduleQuery
			return cmd
		}
	}
	return cmd
}
