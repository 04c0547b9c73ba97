package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yupi/agentcore/internal/config"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
			Auth:   r.Header.Get("Authorization"),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		token:      "test-token",
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func TestSayCommand_SavedRecord(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /commands": `{"command":{"category":"SCHEDULE","title":"팀 회의"},"handled":true,"record":{"id":"rec-1","collection":"schedules","createdAt":"2025-06-10T05:00:00Z","title":"팀 회의"}}`,
	})

	client := ts.client()

	resp, err := client.post(ctx, "/commands", map[string]string{
		"text":   "내일 오후 2시에 팀 회의",
		"source": "cli",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result struct {
		Handled bool `json:"handled"`
		Record  *struct {
			ID         string `json:"id"`
			Collection string `json:"collection"`
		} `json:"record"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if !result.Handled {
		t.Error("expected handled=true")
	}
	if result.Record == nil || result.Record.Collection != "schedules" {
		t.Errorf("record = %+v, want collection schedules", result.Record)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}

	r := ts.requests[0]
	if r.Method != "POST" || r.Path != "/commands" {
		t.Errorf("request = %s %s, want POST /commands", r.Method, r.Path)
	}
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q, want Bearer test-token", r.Auth)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["source"] != "cli" {
		t.Errorf("body.source = %v, want cli", body["source"])
	}
	if body["text"] != "내일 오후 2시에 팀 회의" {
		t.Errorf("body.text = %v", body["text"])
	}
}

func TestSayCommand_Unhandled(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /commands": `{"command":{"category":"UNKNOWN","title":""},"handled":false}`,
	})

	client := ts.client()
	resp, err := client.post(ctx, "/commands", map[string]string{"text": "음"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result struct {
		Handled bool `json:"handled"`
		Command struct {
			Category string `json:"category"`
		} `json:"command"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if result.Handled {
		t.Error("expected handled=false")
	}
	if result.Command.Category != "UNKNOWN" {
		t.Errorf("category = %q, want UNKNOWN", result.Command.Category)
	}
}

func TestSayCommand_MissingArgs(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"say"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing args")
	}
}

func TestActivityCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /activity": `[{"id":"n-1","collection":"notes","createdAt":"2025-06-10T05:00:00Z","title":"아이디어"},{"id":"t-1","collection":"tasks","createdAt":"2025-06-09T05:00:00Z","title":"보고서"}]`,
	})

	client := ts.client()
	resp, err := client.get(ctx, "/activity?limit=20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var records []struct {
		ID         string `json:"id"`
		Collection string `json:"collection"`
	}
	if err := decodeJSON(resp, &records); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Collection != "notes" {
		t.Errorf("first collection = %q, want notes", records[0].Collection)
	}

	if !strings.Contains(ts.requests[0].Path, "limit=20") {
		t.Errorf("path = %q, want limit=20 query", ts.requests[0].Path)
	}
}

func TestBriefingCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /briefing": `{"briefing":"## 🎙️ YUPI Daily Briefing\n\n좋은 아침입니다!"}`,
	})

	client := ts.client()
	resp, err := client.get(ctx, "/briefing?date=2025-06-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result map[string]string
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if !strings.Contains(result["briefing"], "YUPI Daily Briefing") {
		t.Errorf("briefing = %q, want header", result["briefing"])
	}
	if !strings.Contains(ts.requests[0].Path, "date=2025-06-10") {
		t.Errorf("path = %q, want date query", ts.requests[0].Path)
	}
}

func TestScheduleCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /schedule": `[{"id":"ev-1","title":"팀 회의","start":"2025-06-10T14:00:00+09:00","end":"2025-06-10T15:00:00+09:00"}]`,
	})

	client := ts.client()
	resp, err := client.get(ctx, "/schedule")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var events []eventLine
	if err := decodeJSON(resp, &events); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Title != "팀 회의" {
		t.Errorf("title = %q, want 팀 회의", events[0].Title)
	}
}

func TestClockOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-06-10T14:00:00+09:00", "14:00"},
		{"2025-06-10T09:30:00Z", "09:30"},
		{"not-a-time", "not-a-time"},
	}
	for _, tt := range tests {
		if got := clockOf(tt.in); got != tt.want {
			t.Errorf("clockOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestImportCommand_ReadsTextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meeting-notes.md")
	if err := os.WriteFile(path, []byte("# 회의록\n\n논의 내용"), 0o644); err != nil {
		t.Fatal(err)
	}

	ts := newTestServer(t, map[string]string{
		"POST /records/notes": `{"id":"rec-9","collection":"notes","createdAt":"2025-06-10T05:00:00Z","title":"meeting-notes"}`,
	})

	old := newAPIClient
	defer func() { newAPIClient = old }()
	newAPIClient = func() (*apiClient, error) {
		return ts.client(), nil
	}

	defer rootCmd.SetArgs(nil)
	rootCmd.SetArgs([]string{"import", path})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(ts.requests[0].Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["title"] != "meeting-notes" {
		t.Errorf("title = %v, want meeting-notes", body["title"])
	}
	if !strings.Contains(body["content"].(string), "논의 내용") {
		t.Errorf("content = %v, want file text", body["content"])
	}
	if body["source"] != "import" {
		t.Errorf("source = %v, want import", body["source"])
	}
}

func TestImportCommand_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, []byte("   \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	defer rootCmd.SetArgs(nil)
	rootCmd.SetArgs([]string{"import", path})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for empty file")
	}
	if !strings.Contains(err.Error(), "no text content") {
		t.Errorf("error = %q, want it to mention 'no text content'", err.Error())
	}
}

func TestStatusCommand_Stopped(t *testing.T) {
	ts := newTestServer(t, map[string]string{})
	ts.server.Close()

	client := ts.client()
	_, err := client.get(ctx, "/health")
	if err == nil {
		t.Fatal("expected error for stopped server")
	}
	if !strings.Contains(err.Error(), "not reachable") {
		t.Errorf("error = %q, want it to mention 'not reachable'", err.Error())
	}
}

func TestNoColorFlag(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "test message")
	if strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}
	if result != "test message" {
		t.Errorf("result = %q, want %q", result, "test message")
	}

	noColor = false
	result = colorize(colorGreen, "test message")
	if !strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}

func TestDecodeJSON_ErrorResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":{"message":"unauthorized","type":"auth_error"}}`))
	}))
	defer ts.Close()

	client := &apiClient{
		baseURL:    ts.URL,
		token:      "bad-token",
		httpClient: ts.Client(),
	}

	resp, err := client.get(ctx, "/activity")
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}

	var result any
	err = decodeJSON(resp, &result)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %q, want it to contain '401'", err.Error())
	}
}

func TestConfigShowAll(t *testing.T) {
	cfg := config.Config{}
	cfg.Server.Port = 4871
	cfg.Ollama.ExtractModel = "qwen3:4b"

	keys := config.ShowAll(cfg)
	if len(keys) == 0 {
		t.Fatal("expected non-empty keys from ShowAll")
	}

	found := false
	for _, k := range keys {
		if k.Key == "server.port" && k.Value == "4871" {
			found = true
		}
	}
	if !found {
		t.Error("expected to find server.port=4871 in ShowAll output")
	}
}
