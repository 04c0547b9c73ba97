package config

import "time"

type Config struct {
	Server   ServerConfig
	Ollama   OllamaConfig
	Storage  StorageConfig
	Calendar CalendarConfig
	Archive  ArchiveConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port int
}

type OllamaConfig struct {
	BaseURL       string
	ExtractModel  string
	BriefingModel string
	EmbedModel    string
}

type StorageConfig struct {
	DataDir string
	// FallbackCap bounds the local fallback log per collection; oldest
	// entries beyond the cap are evicted on write.
	FallbackCap int
	// DedupWindowSeconds is the interval during which an identical fallback
	// write is suppressed as a duplicate submission.
	DedupWindowSeconds int
}

type CalendarConfig struct {
	BaseURL  string
	Token    string
	Timezone string
}

type ArchiveConfig struct {
	BaseURL string
	Token   string
	Folder  string
}

type LogConfig struct {
	Level string
}

// DedupWindow returns the fallback dedup window as a duration.
func (s StorageConfig) DedupWindow() time.Duration {
	return time.Duration(s.DedupWindowSeconds) * time.Second
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Ollama: OllamaConfig{
			BaseURL:       "http://localhost:11434",
			ExtractModel:  "phi3.5",
			BriefingModel: "mistral-nemo",
			EmbedModel:    "nomic-embed-text",
		},
		Storage: StorageConfig{
			DataDir:            defaultDataDir(),
			FallbackCap:        50,
			DedupWindowSeconds: 5,
		},
		Calendar: CalendarConfig{
			Timezone: "Asia/Seoul",
		},
		Archive: ArchiveConfig{
			Folder: "AGENT-CORE",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend and environment
// variables.
//
// On macOS the backend is UserDefaults (domain: com.agentcore.app).
// On Linux the backend is a JSON file at $XDG_CONFIG_HOME/agentcore/config.json.
//
// Environment variables (AGENTCORE_*) override backend values on all
// platforms. Calendar and archive base URLs may stay empty: the router then
// treats the corresponding external service as unconfigured.
func Load() (Config, error) {
	return loadWith(newPlatformBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}
