package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yupi/agentcore/internal/ollama"
)

const briefingTimeout = 60 * time.Second

const briefingSystemPrompt = `You are a personal assistant that writes a daily briefing in Korean.

Format requirements:
1. Header: "🎙️ YUPI Daily Briefing" followed by the date and a friendly greeting.
2. Timeline: a chronological list of today's events with emojis (📅, 🤝, 💻). Suggest focus time for gaps.
3. Checklist: the open to-do items, most urgent first.
4. Notes: a one-line recap of recent memos.
5. Tone: professional yet friendly and motivating. Markdown output only.`

// Briefing generates the daily briefing text for the given day from the
// aggregated inputs.
func (a *Aggregator) Briefing(ctx context.Context, day time.Time) (string, error) {
	if a.chat == nil {
		return "", errors.New("briefing model not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, briefingTimeout)
	defer cancel()

	in := a.BriefingInputs(ctx, day)

	user := fmt.Sprintf("Date: %s\n\nSchedule:\n%s\n\nTo-do list:\n%s\n\nRecent notes:\n%s",
		in.Date, in.Schedules, in.Tasks, in.Notes)

	text, err := a.chat.Chat(ctx, a.model, []ollama.Message{
		{Role: "system", Content: briefingSystemPrompt},
		{Role: "user", Content: user},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("generating briefing: %w", err)
	}
	return text, nil
}
