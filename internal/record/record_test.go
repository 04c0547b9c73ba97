package record

import (
	"errors"
	"testing"
	"time"
)

func TestParseCollection(t *testing.T) {
	for _, name := range []string{"schedules", "tasks", "notes", "meetings"} {
		if _, err := ParseCollection(name); err != nil {
			t.Errorf("ParseCollection(%q): %v", name, err)
		}
	}
	if _, err := ParseCollection("journal"); err == nil {
		t.Error("ParseCollection(journal) = nil error, want error")
	}
}

func TestScheduleValidate(t *testing.T) {
	valid := Schedule{Title: "팀 회의", Date: "2025-06-11", StartTime: "14:00", EndTime: "15:00"}

	tests := []struct {
		name      string
		mutate    func(*Schedule)
		wantField string
	}{
		{"valid", func(s *Schedule) {}, ""},
		{"missing title", func(s *Schedule) { s.Title = "" }, "title"},
		{"missing date", func(s *Schedule) { s.Date = "" }, "date"},
		{"malformed date", func(s *Schedule) { s.Date = "11/06/2025" }, "date"},
		{"missing start", func(s *Schedule) { s.StartTime = "" }, "startTime"},
		{"malformed start", func(s *Schedule) { s.StartTime = "2pm" }, "startTime"},
		{"missing end", func(s *Schedule) { s.EndTime = "" }, "endTime"},
		{"start equals end", func(s *Schedule) { s.EndTime = "14:00" }, "endTime"},
		{"start after end", func(s *Schedule) { s.EndTime = "13:00" }, "endTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestScheduleSpan(t *testing.T) {
	s := Schedule{Title: "회의", Date: "2025-06-11", StartTime: "14:00", EndTime: "15:00"}
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatal(err)
	}

	start, end, err := s.Span(loc)
	if err != nil {
		t.Fatalf("Span: %v", err)
	}
	if got := start.Format(time.RFC3339); got != "2025-06-11T14:00:00+09:00" {
		t.Errorf("start = %s", got)
	}
	if end.Sub(start) != time.Hour {
		t.Errorf("duration = %v, want 1h", end.Sub(start))
	}
}

func TestTaskValidate(t *testing.T) {
	if err := (Task{Title: "보고서 작성", DueDate: "2025-06-13"}).Validate(); err != nil {
		t.Errorf("valid task: %v", err)
	}

	var verr *ValidationError
	if err := (Task{}).Validate(); !errors.As(err, &verr) || verr.Field != "title" {
		t.Errorf("missing title: got %v", err)
	}
	if err := (Task{Title: "x", DueDate: "friday"}).Validate(); !errors.As(err, &verr) || verr.Field != "dueDate" {
		t.Errorf("bad due date: got %v", err)
	}
}

func TestNoteValidate(t *testing.T) {
	if err := (Note{Content: "buy milk"}).Validate(); err != nil {
		t.Errorf("content-only note: %v", err)
	}
	if err := (Note{Title: "idea"}).Validate(); err != nil {
		t.Errorf("title-only note: %v", err)
	}
	if err := (Note{}).Validate(); err == nil {
		t.Error("empty note: want error")
	}
}

func TestDocText(t *testing.T) {
	tests := []struct {
		doc  Doc
		want string
	}{
		{Doc{Content: "c", Description: "d", Title: "t"}, "c"},
		{Doc{Description: "d", Title: "t"}, "d"},
		{Doc{Title: "t"}, "t"},
		{Doc{}, ""},
	}
	for _, tt := range tests {
		if got := tt.doc.Text(); got != tt.want {
			t.Errorf("Text(%+v) = %q, want %q", tt.doc, got, tt.want)
		}
	}
}
