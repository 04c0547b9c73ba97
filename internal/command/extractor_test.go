package command

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/yupi/agentcore/internal/ollama"
)

// mockChatter implements Chatter for testing.
type mockChatter struct {
	response string
	err      error
	messages []ollama.Message
}

func (m *mockChatter) Chat(ctx context.Context, model string, messages []ollama.Message, jsonSchema *ollama.Schema) (string, error) {
	m.messages = messages
	return m.response, m.err
}

var refDate = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC) // a Tuesday

func TestExtract_Schedule(t *testing.T) {
	mock := &mockChatter{
		response: `{"category":"SCHEDULE","title":"팀 회의","date":"2025-06-11","startTime":"14:00","endTime":"15:00"}`,
	}
	e := NewExtractor(mock, "phi3.5")

	got, err := e.Extract(context.Background(), "내일 오후 2시에 팀 회의", refDate)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := ExtractedCommand{
		Category:  CategorySchedule,
		Title:     "팀 회의",
		Date:      "2025-06-11",
		StartTime: "14:00",
		EndTime:   "15:00",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %+v, want %+v", got, want)
	}
}

func TestExtract_QueryOverride(t *testing.T) {
	// The base classifier mislabels a schedule question as SCHEDULE; the
	// title marker must force it to SCHEDULE_QUERY before routing.
	mock := &mockChatter{
		response: `{"category":"SCHEDULE","title":"오늘 일정 알려줘","date":"2025-06-10"}`,
	}
	e := NewExtractor(mock, "phi3.5")

	got, err := e.Extract(context.Background(), "오늘 일정 알려줘", refDate)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Category != CategoryScheduleQuery {
		t.Errorf("Category = %q, want SCHEDULE_QUERY", got.Category)
	}
	if got.Date != "2025-06-10" {
		t.Errorf("Date = %q, want reference date", got.Date)
	}
}

func TestExtract_UnrecognizedCategory(t *testing.T) {
	mock := &mockChatter{
		response: `{"category":"WEATHER","title":"날씨"}`,
	}
	e := NewExtractor(mock, "phi3.5")

	got, err := e.Extract(context.Background(), "오늘 날씨 어때", refDate)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Category != CategoryUnknown {
		t.Errorf("Category = %q, want UNKNOWN", got.Category)
	}
}

func TestExtract_ChatFailure(t *testing.T) {
	mock := &mockChatter{err: errors.New("connection refused")}
	e := NewExtractor(mock, "phi3.5")

	_, err := e.Extract(context.Background(), "내일 회의", refDate)
	var cerr *ClassificationError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *ClassificationError", err)
	}
}

func TestExtract_MalformedJSON(t *testing.T) {
	mock := &mockChatter{response: "Sure! Here is the JSON you asked for:"}
	e := NewExtractor(mock, "phi3.5")

	_, err := e.Extract(context.Background(), "내일 회의", refDate)
	var cerr *ClassificationError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *ClassificationError", err)
	}
}

func TestExtract_PromptCarriesReferenceDate(t *testing.T) {
	mock := &mockChatter{response: `{"category":"NOTE","title":"x"}`}
	e := NewExtractor(mock, "phi3.5")

	if _, err := e.Extract(context.Background(), "메모", refDate); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(mock.messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(mock.messages))
	}
	system := mock.messages[0].Content
	if !strings.Contains(system, "2025-06-10") || !strings.Contains(system, "Tuesday") {
		t.Errorf("system prompt missing reference date context:\n%s", system)
	}
}

func TestApplyQueryOverride(t *testing.T) {
	tests := []struct {
		name string
		in   ExtractedCommand
		want Category
	}{
		{"schedule with tell-me marker", ExtractedCommand{Category: CategorySchedule, Title: "오늘 일정 알려줘"}, CategoryScheduleQuery},
		{"schedule with show-me marker", ExtractedCommand{Category: CategorySchedule, Title: "내일 스케줄 보여줘"}, CategoryScheduleQuery},
		{"plain schedule untouched", ExtractedCommand{Category: CategorySchedule, Title: "팀 회의"}, CategorySchedule},
		{"marker in non-schedule untouched", ExtractedCommand{Category: CategoryNote, Title: "알려줘 메모"}, CategoryNote},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyQueryOverride(tt.in); got.Category != tt.want {
				t.Errorf("Category = %q, want %q", got.Category, tt.want)
			}
		})
	}
}
