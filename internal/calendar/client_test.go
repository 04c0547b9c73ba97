package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateEvent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/events" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		var ev Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		ev.ID = "ev-1"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(ev)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	start := time.Date(2025, 6, 11, 14, 0, 0, 0, time.UTC)
	created, err := c.CreateEvent(context.Background(), Event{Title: "팀 회의", Start: start, End: start.Add(time.Hour)})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if created.ID != "ev-1" || created.Title != "팀 회의" {
		t.Errorf("created = %+v", created)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestCreateTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var task Task
		json.NewDecoder(r.Body).Decode(&task)
		task.ID = "task-1"
		json.NewEncoder(w).Encode(task)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	created, err := c.CreateTask(context.Background(), Task{Title: "보고서 작성", Due: "2025-06-13"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.ID != "task-1" {
		t.Errorf("created = %+v", created)
	}
}

func TestListEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("timeMin") == "" || r.URL.Query().Get("timeMax") == "" {
			t.Errorf("missing time bounds: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode([]Event{{ID: "ev-1", Title: "아침 회의"}})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	from := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	events, err := c.ListEvents(context.Background(), from, from.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 || events[0].ID != "ev-1" {
		t.Errorf("events = %+v", events)
	}
}

func TestErrorStatusSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	if _, err := c.CreateEvent(context.Background(), Event{Title: "x"}); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestNotConfigured(t *testing.T) {
	c := New("", "")
	_, err := c.CreateEvent(context.Background(), Event{Title: "x"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
	_, err = c.ListEvents(context.Background(), time.Now(), time.Now())
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestDayBounds(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("loading location: %v", err)
	}

	day := time.Date(2025, 6, 10, 15, 30, 0, 0, loc)
	from, to := DayBounds(day, loc)

	if from.Hour() != 0 || from.Day() != 10 {
		t.Errorf("from = %v, want midnight of the 10th", from)
	}
	if to.Sub(from) != 24*time.Hour {
		t.Errorf("span = %v, want 24h", to.Sub(from))
	}
}
