package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/yupi/agentcore/internal/record"
	"github.com/yupi/agentcore/internal/router"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Extractor Extractor
	Router    Dispatcher
	Activity  Activity
	Loc       *time.Location // timezone for interpreting date arguments
}

// NewMCPServer creates an MCP server exposing the assistant's capture,
// activity, and briefing tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"agentcore",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("agentcore — personal assistant core: capture schedules, tasks, and notes from natural language, and read back activity and briefings."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("capture",
			mcp.WithDescription("Interpret a natural-language command (Korean or English) and execute it: create a schedule, task, or note, or answer a schedule query."),
			mcp.WithString("text", mcp.Description("The command text"), mcp.Required()),
		),
		mcpCapture(deps),
	)

	s.AddTool(
		mcp.NewTool("recent_activity",
			mcp.WithDescription("Return the most recent records across all collections, newest first."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of records (default 20)")),
		),
		mcpRecentActivity(deps),
	)

	s.AddTool(
		mcp.NewTool("daily_briefing",
			mcp.WithDescription("Generate the daily briefing for a date."),
			mcp.WithString("date", mcp.Description("Date in YYYY-MM-DD format (default today)")),
		),
		mcpDailyBriefing(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"activity://recent",
			"Recent Activity",
			mcp.WithResourceDescription("Last 20 records across all collections"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceActivity(deps),
	)

	return s
}

func mcpCapture(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcpError("text is required"), nil
		}

		now := time.Now()
		cmd, err := deps.Extractor.Extract(ctx, text, now)
		if err != nil {
			return mcpError(fmt.Sprintf("classification failed: %v", err)), nil
		}

		result, err := deps.Router.Dispatch(ctx, cmd, "mcp", now)
		if errors.Is(err, router.ErrUnhandled) {
			return mcpText(fmt.Sprintf("Understood as %s, but no automated action exists for it.", cmd.Category)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("command failed: %v", err)), nil
		}

		switch result.Kind {
		case router.KindSaved:
			return mcpText(fmt.Sprintf("Saved %s record %s: %s", result.Record.Collection, result.Record.ID, result.Record.Title)), nil
		case router.KindEvents:
			b, err := json.Marshal(result.Events)
			if err != nil {
				return mcpError(fmt.Sprintf("failed to marshal events: %v", err)), nil
			}
			return mcpText(string(b)), nil
		case router.KindBriefing:
			return mcpText(result.Briefing), nil
		default:
			return mcpText("done"), nil
		}
	}
}

func mcpRecentActivity(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 20)
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}

		records := deps.Activity.RecentActivity(ctx, limit)
		if len(records) == 0 {
			return mcpText("[]"), nil
		}

		b, err := json.Marshal(records)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal records: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpDailyBriefing(deps MCPDeps) server.ToolHandlerFunc {
	loc := deps.Loc
	if loc == nil {
		loc = time.UTC
	}
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		day := time.Now()
		if s := req.GetString("date", ""); s != "" {
			parsed, err := record.ParseDate(s)
			if err != nil {
				return mcpError("date must be YYYY-MM-DD"), nil
			}
			// Re-anchor in the configured timezone; noon keeps the civil
			// day stable across offsets.
			y, m, d := parsed.Date()
			day = time.Date(y, m, d, 12, 0, 0, 0, loc)
		}

		text, err := deps.Activity.Briefing(ctx, day)
		if err != nil {
			return mcpError(fmt.Sprintf("briefing failed: %v", err)), nil
		}
		return mcpText(text), nil
	}
}

func mcpResourceActivity(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		records := deps.Activity.RecentActivity(ctx, 20)

		b, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal records: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
