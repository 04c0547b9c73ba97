// Package api exposes the daemon over HTTP (bearer-authenticated JSON)
// and as an MCP server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yupi/agentcore/internal/command"
	"github.com/yupi/agentcore/internal/record"
	"github.com/yupi/agentcore/internal/router"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Extractor classifies free text into a command.
type Extractor interface {
	Extract(ctx context.Context, text string, referenceDate time.Time) (command.ExtractedCommand, error)
}

// Dispatcher routes a command to its side effects.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd command.ExtractedCommand, source string, referenceDate time.Time) (router.Result, error)
}

// Activity serves the merged feed and briefings.
type Activity interface {
	RecentActivity(ctx context.Context, limit int) []record.Stored
	Briefing(ctx context.Context, day time.Time) (string, error)
}

// Saver persists records directly, bypassing classification.
type Saver interface {
	Save(ctx context.Context, p record.Payload, source string) (record.Stored, error)
}

// AppDeps holds dependencies for the daemon API.
type AppDeps struct {
	Extractor Extractor
	Router    Dispatcher
	Activity  Activity
	Store     Saver
	Token     string
	Loc       *time.Location // timezone for interpreting date params
}

// NewAppHandler returns the daemon's HTTP handler. Everything except
// /health requires the bearer token.
func NewAppHandler(deps AppDeps) http.Handler {
	if deps.Loc == nil {
		deps.Loc = time.UTC
	}

	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/commands", handleCommand(deps))
		r.Post("/records/{collection}", handleSaveRecord(deps))
		r.Get("/activity", handleActivity(deps))
		r.Get("/briefing", handleBriefing(deps))
		r.Get("/schedule", handleSchedule(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type commandRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// commandResponse reports what the daemon did with the text. Handled is
// false for categories with no automated action (MEETING, UNKNOWN).
type commandResponse struct {
	Command  command.ExtractedCommand `json:"command"`
	Handled  bool                     `json:"handled"`
	Record   *record.Stored           `json:"record,omitempty"`
	Events   []eventResponse          `json:"events,omitempty"`
	Briefing string                   `json:"briefing,omitempty"`
}

type eventResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func handleCommand(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req commandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Text == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "text is required")
			return
		}
		if req.Source == "" {
			req.Source = "api"
		}

		now := time.Now()
		cmd, err := deps.Extractor.Extract(r.Context(), req.Text, now)
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "classification failed: %v", err)
			return
		}

		resp := commandResponse{Command: cmd}
		result, err := deps.Router.Dispatch(r.Context(), cmd, req.Source, now)
		switch {
		case errors.Is(err, router.ErrUnhandled):
			// Surfaced, not an error: the caller decides what to do next.
		case err != nil:
			writeDispatchError(w, err)
			return
		default:
			resp.Handled = true
			fillResult(&resp, result)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func fillResult(resp *commandResponse, result router.Result) {
	switch result.Kind {
	case router.KindSaved:
		rec := result.Record
		resp.Record = &rec
	case router.KindEvents:
		resp.Events = make([]eventResponse, 0, len(result.Events))
		for _, ev := range result.Events {
			resp.Events = append(resp.Events, eventResponse{
				ID:    ev.ID,
				Title: ev.Title,
				Start: ev.Start.Format(time.RFC3339),
				End:   ev.End.Format(time.RFC3339),
			})
		}
	case router.KindBriefing:
		resp.Briefing = result.Briefing
	}
}

func writeDispatchError(w http.ResponseWriter, err error) {
	var verr *record.ValidationError
	if errors.As(err, &verr) {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%s", verr.Error())
		return
	}
	httpError(w, http.StatusInternalServerError, "api_error", "command failed: %v", err)
}

type recordRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	DueDate     string   `json:"dueDate"`
	ActionItems []string `json:"actionItems"`
	Source      string   `json:"source"`
}

func handleSaveRecord(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		collection, err := record.ParseCollection(chi.URLParam(r, "collection"))
		if err != nil {
			httpError(w, http.StatusNotFound, "not_found", "%v", err)
			return
		}

		var req recordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Source == "" {
			req.Source = "api"
		}

		payload, err := buildPayload(collection, req)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		stored, err := deps.Store.Save(r.Context(), payload, req.Source)
		if err != nil {
			writeDispatchError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(stored)
	}
}

func buildPayload(c record.Collection, req recordRequest) (record.Payload, error) {
	switch c {
	case record.Schedules:
		return record.Schedule{
			Title:       req.Title,
			Description: req.Description,
			Date:        req.Date,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
		}, nil
	case record.Tasks:
		return record.Task{Title: req.Title, Description: req.Description, DueDate: req.DueDate}, nil
	case record.Notes:
		return record.Note{Title: req.Title, Content: req.Content}, nil
	case record.Meetings:
		return record.Meeting{Title: req.Title, Summary: req.Content, ActionItems: req.ActionItems}, nil
	default:
		return nil, fmt.Errorf("unknown collection %q", c)
	}
}

func handleActivity(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 100)

		records := deps.Activity.RecentActivity(r.Context(), limit)
		if records == nil {
			records = []record.Stored{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	}
}

func handleBriefing(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := parseDayParam(r, deps.Loc)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		text, err := deps.Activity.Briefing(r.Context(), day)
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "briefing failed: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"briefing": text})
	}
}

func handleSchedule(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd := command.ExtractedCommand{
			Category: command.CategoryScheduleQuery,
			Title:    "schedule",
			Date:     r.URL.Query().Get("date"),
		}

		result, err := deps.Router.Dispatch(r.Context(), cmd, "api", time.Now())
		if err != nil {
			writeDispatchError(w, err)
			return
		}

		resp := commandResponse{}
		fillResult(&resp, result)
		if resp.Events == nil {
			resp.Events = []eventResponse{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp.Events)
	}
}

func parseDayParam(r *http.Request, loc *time.Location) (time.Time, error) {
	s := r.URL.Query().Get("date")
	if s == "" {
		return time.Now(), nil
	}
	parsed, err := record.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD")
	}
	// Re-anchor in the configured timezone; noon keeps the civil day
	// stable across offsets.
	y, m, d := parsed.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, loc), nil
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
