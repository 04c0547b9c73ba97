package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yupi/agentcore/internal/archive"
	"github.com/yupi/agentcore/internal/config"
	"github.com/yupi/agentcore/internal/record"
)

// --- say ---

var sayCmd = &cobra.Command{
	Use:   "say <text>",
	Short: "Interpret a natural-language command and execute it",
	Long: `Interpret a natural-language command and execute it.

Examples:
  agentcore say "내일 오후 2시에 팀 회의"
  agentcore say "금요일까지 보고서 작성"
  agentcore say "프로젝트 아이디어: AI 기반 자동화"
  agentcore say "오늘 일정 알려줘"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/commands", map[string]string{
			"text":   text,
			"source": "cli",
		})
		if err != nil {
			return err
		}

		var result struct {
			Command struct {
				Category string `json:"category"`
				Title    string `json:"title"`
			} `json:"command"`
			Handled  bool           `json:"handled"`
			Record   *record.Stored `json:"record"`
			Events   []eventLine    `json:"events"`
			Briefing string         `json:"briefing"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printStep("Understood as %s", result.Command.Category)

		switch {
		case !result.Handled:
			printWarning("No automated action for %s — nothing was saved", result.Command.Category)
		case result.Record != nil:
			printSuccess("Saved to %s: %s", result.Record.Collection, result.Record.Title)
		case result.Briefing != "":
			fmt.Fprintln(os.Stdout, result.Briefing)
		default:
			printEvents(result.Events)
		}
		return nil
	},
}

type eventLine struct {
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func printEvents(events []eventLine) {
	if len(events) == 0 {
		fmt.Fprintln(os.Stdout, "예정된 일정이 없습니다.")
		return
	}
	for _, ev := range events {
		start, end := clockOf(ev.Start), clockOf(ev.End)
		fmt.Fprintf(os.Stdout, "%s - %s  %s\n", start, end, ev.Title)
	}
}

func clockOf(rfc3339 string) string {
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return rfc3339
	}
	return t.Format("15:04")
}

// --- activity ---

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show the most recent records across all collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/activity?limit=%d", limit))
		if err != nil {
			return err
		}

		var records []record.Stored
		if err := decodeJSON(resp, &records); err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Fprintln(os.Stdout, "no recent activity")
			return nil
		}
		for _, r := range records {
			fmt.Fprintf(os.Stdout, "%s  %-10s %s\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Collection, r.Title)
		}
		return nil
	},
}

// --- briefing ---

var briefingCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Generate the daily briefing",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := "/briefing"
		if date != "" {
			path += "?date=" + date
		}

		printStep("Generating briefing...")
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, result["briefing"])
		return nil
	},
}

// --- schedule ---

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "List calendar events for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := "/schedule"
		if date != "" {
			path += "?date=" + date
		}

		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var events []eventLine
		if err := decodeJSON(resp, &events); err != nil {
			return err
		}

		printEvents(events)
		return nil
	},
}

// --- import ---

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a document as a note",
	Long: `Import a document as a note. PDF files have their text extracted;
any other file is read as plain text.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		var content string
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			text, err := archive.ExtractPDFText(path)
			if err != nil {
				return fmt.Errorf("extracting pdf text: %w", err)
			}
			content = text
		} else {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}
			content = string(data)
		}

		if strings.TrimSpace(content) == "" {
			return fmt.Errorf("no text content found in %s", path)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/records/notes", map[string]string{
			"title":   title,
			"content": content,
			"source":  "import",
		})
		if err != nil {
			return err
		}

		var stored record.Stored
		if err := decodeJSON(resp, &stored); err != nil {
			return err
		}

		printSuccess("Imported %s as note %s", path, stored.ID)
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, info := range config.ShowAll(cfg) {
			fmt.Fprintf(os.Stdout, "%-35s %s\n", info.Key, info.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			printError("%v", err)
			fmt.Fprintf(os.Stderr, "valid keys:\n")
			for _, k := range config.ValidKeys() {
				fmt.Fprintf(os.Stderr, "  %s\n", k)
			}
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	activityCmd.Flags().Int("limit", 20, "maximum number of records")
	briefingCmd.Flags().String("date", "", "date in YYYY-MM-DD format (default today)")
	scheduleCmd.Flags().String("date", "", "date in YYYY-MM-DD format (default today)")
	importCmd.Flags().String("title", "", "title for the imported note")

	configCmd.AddCommand(configShowCmd, configSetCmd)
}
