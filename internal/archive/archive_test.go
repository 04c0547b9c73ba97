package archive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var fixedNow = time.Date(2025, 6, 10, 14, 30, 45, 0, time.UTC)

func TestFilename(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		category string
		want     string
	}{
		{"korean title", "팀 회의 메모", "NOTES", "팀_회의_메모_20250610_143045.txt"},
		{"special chars dropped", "Q3: plan (draft)!", "NOTES", "Q3_plan_draft_20250610_143045.txt"},
		{"no title uses category prefix", "", "MEETINGS", "meetings_20250610_143045.txt"},
		{"no title no category", "", "", "20250610_143045.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filename(tt.title, tt.category, fixedNow); got != tt.want {
				t.Errorf("Filename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilename_Deterministic(t *testing.T) {
	a := Filename("회의", "NOTES", fixedNow)
	b := Filename("회의", "NOTES", fixedNow)
	if a != b {
		t.Errorf("same inputs produced %q and %q", a, b)
	}
}

func TestSaveCategoryFile(t *testing.T) {
	var gotBody struct {
		Folder  []string `json:"folder"`
		Name    string   `json:"name"`
		Content string   `json:"content"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/files" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(SavedFile{FileID: "f1", FileName: gotBody.Name, WebViewLink: "https://files/f1"})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", "AGENT-CORE")
	c.now = func() time.Time { return fixedNow }

	saved, err := c.SaveCategoryFile(context.Background(), "NOTES", "memo body", "아이디어")
	if err != nil {
		t.Fatalf("SaveCategoryFile: %v", err)
	}
	if saved.FileID != "f1" {
		t.Errorf("FileID = %q", saved.FileID)
	}
	if len(gotBody.Folder) != 2 || gotBody.Folder[0] != "AGENT-CORE" || gotBody.Folder[1] != "NOTES" {
		t.Errorf("Folder = %v", gotBody.Folder)
	}
	if gotBody.Name != "아이디어_20250610_143045.txt" {
		t.Errorf("Name = %q", gotBody.Name)
	}
	if gotBody.Content != "memo body" {
		t.Errorf("Content = %q", gotBody.Content)
	}
}

func TestSaveCategoryFile_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "storage full", http.StatusInsufficientStorage)
	}))
	defer srv.Close()

	c := New(srv.URL, "", "AGENT-CORE")
	if _, err := c.SaveCategoryFile(context.Background(), "NOTES", "x", ""); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestSaveCategoryFile_NotConfigured(t *testing.T) {
	c := New("", "", "AGENT-CORE")
	_, err := c.SaveCategoryFile(context.Background(), "NOTES", "x", "")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}
