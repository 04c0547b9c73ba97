package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "AGENTCORE_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "ollama.base_url", typ: kString, env: "AGENTCORE_OLLAMA_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Ollama.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Ollama.BaseURL },
	},
	{
		key: "ollama.extract_model", typ: kString, env: "AGENTCORE_OLLAMA_EXTRACT_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Ollama.ExtractModel = v.(string) },
		extract: func(cfg Config) any { return cfg.Ollama.ExtractModel },
	},
	{
		key: "ollama.briefing_model", typ: kString, env: "AGENTCORE_OLLAMA_BRIEFING_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Ollama.BriefingModel = v.(string) },
		extract: func(cfg Config) any { return cfg.Ollama.BriefingModel },
	},
	{
		key: "ollama.embed_model", typ: kString, env: "AGENTCORE_OLLAMA_EMBED_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Ollama.EmbedModel = v.(string) },
		extract: func(cfg Config) any { return cfg.Ollama.EmbedModel },
	},
	{
		key: "storage.data_dir", typ: kString, env: "AGENTCORE_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "storage.fallback_cap", typ: kInt, env: "AGENTCORE_STORAGE_FALLBACK_CAP",
		apply:   func(cfg *Config, v any) { cfg.Storage.FallbackCap = v.(int) },
		extract: func(cfg Config) any { return cfg.Storage.FallbackCap },
	},
	{
		key: "storage.dedup_window_seconds", typ: kInt, env: "AGENTCORE_STORAGE_DEDUP_WINDOW_SECONDS",
		apply:   func(cfg *Config, v any) { cfg.Storage.DedupWindowSeconds = v.(int) },
		extract: func(cfg Config) any { return cfg.Storage.DedupWindowSeconds },
	},
	{
		key: "calendar.base_url", typ: kString, env: "AGENTCORE_CALENDAR_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Calendar.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Calendar.BaseURL },
	},
	{
		key: "calendar.token", typ: kString, env: "AGENTCORE_CALENDAR_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Calendar.Token = v.(string) },
		extract: func(cfg Config) any { return cfg.Calendar.Token },
	},
	{
		key: "calendar.timezone", typ: kString, env: "AGENTCORE_CALENDAR_TIMEZONE",
		apply:   func(cfg *Config, v any) { cfg.Calendar.Timezone = v.(string) },
		extract: func(cfg Config) any { return cfg.Calendar.Timezone },
	},
	{
		key: "archive.base_url", typ: kString, env: "AGENTCORE_ARCHIVE_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Archive.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Archive.BaseURL },
	},
	{
		key: "archive.token", typ: kString, env: "AGENTCORE_ARCHIVE_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Archive.Token = v.(string) },
		extract: func(cfg Config) any { return cfg.Archive.Token },
	},
	{
		key: "archive.folder", typ: kString, env: "AGENTCORE_ARCHIVE_FOLDER",
		apply:   func(cfg *Config, v any) { cfg.Archive.Folder = v.(string) },
		extract: func(cfg Config) any { return cfg.Archive.Folder },
	},
	{
		key: "log.level", typ: kString, env: "AGENTCORE_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
