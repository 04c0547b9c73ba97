// Package router turns an extracted command into its side effects:
// calendar writes, record persistence, queries, and briefings.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yupi/agentcore/internal/calendar"
	"github.com/yupi/agentcore/internal/command"
	"github.com/yupi/agentcore/internal/jobs"
	"github.com/yupi/agentcore/internal/record"
)

// ErrUnhandled is returned for categories that have no automated action
// (MEETING, UNKNOWN).
var ErrUnhandled = errors.New("no handler for command category")

// Saver persists records.
type Saver interface {
	Save(ctx context.Context, p record.Payload, source string) (record.Stored, error)
}

// Calendar is the external calendar service.
type Calendar interface {
	CreateEvent(ctx context.Context, ev calendar.Event) (calendar.Event, error)
	CreateTask(ctx context.Context, task calendar.Task) (calendar.Task, error)
	ListEvents(ctx context.Context, from, to time.Time) ([]calendar.Event, error)
}

// Briefer composes the daily briefing text.
type Briefer interface {
	Briefing(ctx context.Context, day time.Time) (string, error)
}

// Kind tells the caller which Result fields are populated.
type Kind string

const (
	KindSaved    Kind = "saved"
	KindEvents   Kind = "events"
	KindBriefing Kind = "briefing"
)

// Result is the outcome of dispatching one command.
type Result struct {
	Kind     Kind
	Record   record.Stored
	Events   []calendar.Event
	Briefing string
}

// Router dispatches extracted commands by category.
type Router struct {
	store    Saver
	calendar Calendar
	briefer  Briefer
	queue    jobs.Queue
	loc      *time.Location
	logger   *slog.Logger
}

// New creates a Router. loc is the timezone used to interpret dates and
// clock times.
func New(store Saver, cal Calendar, briefer Briefer, queue jobs.Queue, loc *time.Location, logger *slog.Logger) *Router {
	return &Router{
		store:    store,
		calendar: cal,
		briefer:  briefer,
		queue:    queue,
		loc:      loc,
		logger:   logger,
	}
}

// Dispatch routes cmd to its category handler. referenceDate anchors
// queries and briefings when the command carries no date; source is
// recorded on any persisted record.
func (r *Router) Dispatch(ctx context.Context, cmd command.ExtractedCommand, source string, referenceDate time.Time) (Result, error) {
	switch cmd.Category {
	case command.CategorySchedule:
		return r.handleSchedule(ctx, cmd, source)
	case command.CategoryTask:
		return r.handleTask(ctx, cmd, source)
	case command.CategoryNote:
		return r.handleNote(ctx, cmd, source)
	case command.CategoryScheduleQuery:
		return r.handleScheduleQuery(ctx, cmd, referenceDate)
	case command.CategoryBriefing:
		return r.handleBriefing(ctx, cmd, referenceDate)
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnhandled, cmd.Category)
	}
}

func (r *Router) handleSchedule(ctx context.Context, cmd command.ExtractedCommand, source string) (Result, error) {
	sched := record.Schedule{
		Title:       cmd.Title,
		Description: cmd.Description,
		Date:        cmd.Date,
		StartTime:   cmd.StartTime,
		EndTime:     cmd.EndTime,
	}
	if sched.EndTime == "" && sched.StartTime != "" {
		end, err := defaultEndTime(sched.StartTime)
		if err != nil {
			return Result{}, &record.ValidationError{Field: "startTime", Reason: "must be HH:MM"}
		}
		sched.EndTime = end
	}
	if err := sched.Validate(); err != nil {
		return Result{}, err
	}

	start, end, err := sched.Span(r.loc)
	if err != nil {
		return Result{}, err
	}

	if _, err := r.calendar.CreateEvent(ctx, calendar.Event{
		Title:       sched.Title,
		Description: sched.Description,
		Start:       start,
		End:         end,
	}); err != nil {
		if !errors.Is(err, calendar.ErrNotConfigured) {
			return Result{}, err
		}
		r.logger.Warn("calendar not configured, saving schedule locally only")
	}

	// If the save fails past this point the calendar event stays; there is
	// no rollback across the two systems.
	stored, err := r.store.Save(ctx, sched, source)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: KindSaved, Record: stored}, nil
}

func (r *Router) handleTask(ctx context.Context, cmd command.ExtractedCommand, source string) (Result, error) {
	task := record.Task{
		Title:       cmd.Title,
		Description: cmd.Description,
		DueDate:     cmd.Date,
	}
	if err := task.Validate(); err != nil {
		return Result{}, err
	}

	if _, err := r.calendar.CreateTask(ctx, calendar.Task{
		Title: task.Title,
		Notes: task.Description,
		Due:   task.DueDate,
	}); err != nil {
		if !errors.Is(err, calendar.ErrNotConfigured) {
			return Result{}, err
		}
		r.logger.Warn("calendar not configured, saving task locally only")
	}

	stored, err := r.store.Save(ctx, task, source)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: KindSaved, Record: stored}, nil
}

func (r *Router) handleNote(ctx context.Context, cmd command.ExtractedCommand, source string) (Result, error) {
	note := record.Note{
		Title:   cmd.Title,
		Content: cmd.Description,
	}

	stored, err := r.store.Save(ctx, note, source)
	if err != nil {
		return Result{}, err
	}

	// Archival is best-effort; a queue failure never unwinds the save.
	if r.queue != nil {
		if err := jobs.EnqueueArchive(r.queue, record.Notes, stored.Doc); err != nil {
			r.logger.Warn("queueing note archival failed", "record_id", stored.ID, "error", err)
		}
	}

	return Result{Kind: KindSaved, Record: stored}, nil
}

func (r *Router) handleScheduleQuery(ctx context.Context, cmd command.ExtractedCommand, referenceDate time.Time) (Result, error) {
	day := referenceDate.In(r.loc)
	if cmd.Date != "" {
		parsed, err := record.ParseDate(cmd.Date)
		if err != nil {
			return Result{}, &record.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
		}
		// Re-anchor the parsed date in the configured timezone; noon keeps
		// the day stable across offsets.
		y, m, d := parsed.Date()
		day = time.Date(y, m, d, 12, 0, 0, 0, r.loc)
	}

	from, to := calendar.DayBounds(day, r.loc)
	events, err := r.calendar.ListEvents(ctx, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("listing events: %w", err)
	}
	return Result{Kind: KindEvents, Events: events}, nil
}

func (r *Router) handleBriefing(ctx context.Context, cmd command.ExtractedCommand, referenceDate time.Time) (Result, error) {
	day := referenceDate
	if cmd.Date != "" {
		parsed, err := record.ParseDate(cmd.Date)
		if err != nil {
			return Result{}, &record.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
		}
		// Re-anchor the parsed date in the configured timezone; noon keeps
		// the day stable across offsets.
		y, m, d := parsed.Date()
		day = time.Date(y, m, d, 12, 0, 0, 0, r.loc)
	}

	text, err := r.briefer.Briefing(ctx, day)
	if err != nil {
		return Result{}, fmt.Errorf("composing briefing: %w", err)
	}
	return Result{Kind: KindBriefing, Briefing: text}, nil
}

// defaultEndTime returns the clock time one hour after start.
func defaultEndTime(start string) (string, error) {
	t, err := record.ParseClock(start)
	if err != nil {
		return "", err
	}
	return t.Add(time.Hour).Format("15:04"), nil
}
