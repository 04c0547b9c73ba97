package command

import (
	"fmt"
	"time"

	"github.com/yupi/agentcore/internal/ollama"
)

const systemPromptTemplate = `You are a command extraction engine for a personal assistant. Analyze the user's input and output ONLY a single valid JSON object conforming to the provided schema. Do not include any other text, prose, or markdown.

Categories:
- "SCHEDULE": creating a calendar event or appointment
- "SCHEDULE_QUERY": asking to see or list existing events
- "NOTE": recording a memo or idea
- "TASK": creating a to-do item
- "BRIEFING": asking for a daily summary or briefing
- "MEETING": meeting summaries, recordings, or action items
- "UNKNOWN": anything that fits no other category

Rules:
- Extract the title: the main subject of the input, without date or time words.
- Resolve relative dates ("today", "tomorrow", weekday names) against the current date and output YYYY-MM-DD. Leave date empty when no date is mentioned, except for SCHEDULE_QUERY and BRIEFING, which default to the current date.
- Output times in 24-hour HH:MM. When only a start time is given, set endTime to one hour after startTime.
- Put any remaining details into description.

Examples (current date 2025-06-10):
- "내일 오후 2시에 팀 회의" -> {"category":"SCHEDULE","title":"팀 회의","date":"2025-06-11","startTime":"14:00","endTime":"15:00"}
- "프로젝트 아이디어: AI 기반 자동화" -> {"category":"NOTE","title":"프로젝트 아이디어","description":"AI 기반 자동화"}
- "금요일까지 보고서 작성" -> {"category":"TASK","title":"보고서 작성","date":"2025-06-13"}
- "오늘 일정 알려줘" -> {"category":"SCHEDULE_QUERY","title":"오늘 일정","date":"2025-06-10"}
- "브리핑 해줘" -> {"category":"BRIEFING","title":"데일리 브리핑","date":"2025-06-10"}`

// BuildPrompt constructs the chat messages for command extraction. The
// reference date anchors relative date resolution.
func BuildPrompt(text string, referenceDate time.Time) []ollama.Message {
	system := fmt.Sprintf("%s\n\nCurrent date: %s (%s)",
		systemPromptTemplate,
		referenceDate.Format("2006-01-02"),
		referenceDate.Weekday(),
	)

	return []ollama.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: text},
	}
}
