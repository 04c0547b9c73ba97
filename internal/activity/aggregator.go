// Package activity merges the recent-record feed across collections and
// composes the inputs for the daily briefing.
package activity

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yupi/agentcore/internal/calendar"
	"github.com/yupi/agentcore/internal/ollama"
	"github.com/yupi/agentcore/internal/record"
)

// Querier reads recent records from the store.
type Querier interface {
	QueryRecent(ctx context.Context, c record.Collection, limit int) ([]record.Stored, error)
}

// EventLister reads calendar events.
type EventLister interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]calendar.Event, error)
}

// Chatter generates text with the local chat model.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []ollama.Message, jsonSchema *ollama.Schema) (string, error)
}

// Aggregator fans reads out across collections and services.
type Aggregator struct {
	store    Querier
	calendar EventLister
	chat     Chatter
	model    string
	loc      *time.Location
	logger   *slog.Logger
}

// New creates an Aggregator. chat may be nil when briefing generation is
// not needed.
func New(store Querier, cal EventLister, chat Chatter, model string, loc *time.Location, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		store:    store,
		calendar: cal,
		chat:     chat,
		model:    model,
		loc:      loc,
		logger:   logger,
	}
}

// RecentActivity returns the newest records across all collections, merged
// by creation time descending and truncated to limit. A failing collection
// is logged and skipped; the others still contribute.
func (a *Aggregator) RecentActivity(ctx context.Context, limit int) []record.Stored {
	collections := record.Collections()
	results := make([][]record.Stored, len(collections))

	g, ctx := errgroup.WithContext(ctx)
	for i, c := range collections {
		g.Go(func() error {
			records, err := a.store.QueryRecent(ctx, c, limit)
			if err != nil {
				a.logger.Warn("collection read failed, skipping", "collection", c, "error", err)
				return nil
			}
			results[i] = records
			return nil
		})
	}
	g.Wait()

	var merged []record.Stored
	for _, records := range results {
		merged = append(merged, records...)
	}

	// Stable: ties keep the canonical collection order.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

const briefingSourceLimit = 5

// Inputs is the summarized material a briefing is generated from.
type Inputs struct {
	Date      string
	Schedules string
	Tasks     string
	Notes     string
}

// BriefingInputs gathers the day's calendar events and the most recent
// tasks and notes, formatted as summary lines. Each source degrades to its
// empty-state line independently.
func (a *Aggregator) BriefingInputs(ctx context.Context, day time.Time) Inputs {
	in := Inputs{Date: day.In(a.loc).Format("2006-01-02")}

	from, to := calendar.DayBounds(day, a.loc)
	events, err := a.calendar.ListEvents(ctx, from, to)
	if err != nil {
		a.logger.Warn("calendar read failed for briefing", "error", err)
	}
	in.Schedules = formatEvents(events, a.loc)

	tasks, err := a.store.QueryRecent(ctx, record.Tasks, briefingSourceLimit)
	if err != nil {
		a.logger.Warn("task read failed for briefing", "error", err)
	}
	in.Tasks = formatTasks(tasks)

	notes, err := a.store.QueryRecent(ctx, record.Notes, briefingSourceLimit)
	if err != nil {
		a.logger.Warn("note read failed for briefing", "error", err)
	}
	in.Notes = formatNotes(notes)

	return in
}

func formatEvents(events []calendar.Event, loc *time.Location) string {
	if len(events) == 0 {
		return "오늘 예정된 일정이 없습니다."
	}
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, fmt.Sprintf("- %s (%s - %s)",
			ev.Title, ev.Start.In(loc).Format("15:04"), ev.End.In(loc).Format("15:04")))
	}
	return strings.Join(lines, "\n")
}

func formatTasks(tasks []record.Stored) string {
	if len(tasks) == 0 {
		return "등록된 할 일이 없습니다."
	}
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		line := "- " + t.Title
		if t.DueDate != "" {
			line += " (마감: " + t.DueDate + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatNotes(notes []record.Stored) string {
	if len(notes) == 0 {
		return "최근 메모가 없습니다."
	}
	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, "- "+n.Title)
	}
	return strings.Join(lines, "\n")
}
