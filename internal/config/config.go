package config

import (
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "NEWS_SENTIMENT_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	inferenceKeyEnv   = "INFERENCE_API_KEY"
	llmAPIKeyEnv      = "LLM_API_KEY"
	llmModelEnv       = "LLM_MODEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
)

// Primary backend selectors for ClassifierConfig.Primary.
const (
	PrimaryHTTP = "http"
	PrimaryLLM  = "llm"
	PrimaryNone = "none"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Normalizer    NormalizerConfig   `yaml:"normalizer"`
	Classifier    ClassifierConfig   `yaml:"classifier"`
	Composer      ComposerConfig     `yaml:"composer"`
	Inference     InferenceConfig    `yaml:"inference"`
	LLM           LLMConfig          `yaml:"llm"`
	Sources       []SourceConfig     `yaml:"sources"`
	Speech        SpeechConfig       `yaml:"speech"`
	Notifications NotificationConfig `yaml:"notifications"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Watchlist     []string           `yaml:"watchlist"`
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// NormalizerConfig tunes article cleaning and deduplication.
type NormalizerConfig struct {
	Denylist       []string `yaml:"denylist"`
	MinBodyLength  int      `yaml:"minBodyLength"`
	IDPrefixLength int      `yaml:"idPrefixLength"`
}

// ClassifierConfig selects the primary sentiment backend and its limits.
type ClassifierConfig struct {
	Primary            string        `yaml:"primary"`
	Timeout            time.Duration `yaml:"timeout"`
	Workers            int           `yaml:"workers"`
	RPS                float64       `yaml:"rps"`
	Burst              int           `yaml:"burst"`
	FallbackConfidence float64       `yaml:"fallbackConfidence"`
	MaxTopics          int           `yaml:"maxTopics"`
}

// ComposerConfig bounds the narrative.
type ComposerConfig struct {
	MaxLength int `yaml:"maxLength"`
}

// InferenceConfig describes the HTTP sentiment model service.
type InferenceConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"apiKey"`
}

// LLMConfig defines how to contact an OpenAI-compatible chat endpoint.
type LLMConfig struct {
	BaseURL string `yaml:"baseUrl"`
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
}

// SourceConfig describes a single news source with its scanner strategy.
type SourceConfig struct {
	Name    string            `yaml:"name"`
	Scanner string            `yaml:"scanner"`
	Options map[string]string `yaml:"options"`
}

// SpeechConfig drives narrative text-to-speech.
type SpeechConfig struct {
	Endpoints []string `yaml:"endpoints"`
	Language  string   `yaml:"language"`
	OutputDir string   `yaml:"outputDir"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	APIURL   string `yaml:"apiUrl"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN
// disables persistence.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines how often the watchlist is analyzed.
type SchedulerConfig struct {
	Interval time.Duration  `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := Parse(raw); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(inferenceKeyEnv); v != "" {
		c.Inference.APIKey = v
	}

	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}

	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Normalizer.Denylist != nil {
		base.Normalizer.Denylist = override.Normalizer.Denylist
	}
	if override.Normalizer.MinBodyLength > 0 {
		base.Normalizer.MinBodyLength = override.Normalizer.MinBodyLength
	}
	if override.Normalizer.IDPrefixLength > 0 {
		base.Normalizer.IDPrefixLength = override.Normalizer.IDPrefixLength
	}

	if p := strings.ToLower(strings.TrimSpace(override.Classifier.Primary)); p != "" {
		base.Classifier.Primary = p
	}
	if override.Classifier.Timeout > 0 {
		base.Classifier.Timeout = override.Classifier.Timeout
	}
	if override.Classifier.Workers > 0 {
		base.Classifier.Workers = override.Classifier.Workers
	}
	if override.Classifier.RPS > 0 {
		base.Classifier.RPS = override.Classifier.RPS
	}
	if override.Classifier.Burst > 0 {
		base.Classifier.Burst = override.Classifier.Burst
	}
	if override.Classifier.FallbackConfidence > 0 {
		base.Classifier.FallbackConfidence = override.Classifier.FallbackConfidence
	}
	if override.Classifier.MaxTopics > 0 {
		base.Classifier.MaxTopics = override.Classifier.MaxTopics
	}

	if override.Composer.MaxLength > 0 {
		base.Composer.MaxLength = override.Composer.MaxLength
	}

	if override.Inference.URL != "" {
		base.Inference.URL = override.Inference.URL
	}
	if override.Inference.APIKey != "" {
		base.Inference.APIKey = override.Inference.APIKey
	}

	if override.LLM.BaseURL != "" {
		base.LLM.BaseURL = override.LLM.BaseURL
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	if len(override.Speech.Endpoints) > 0 {
		base.Speech.Endpoints = override.Speech.Endpoints
	}
	if override.Speech.Language != "" {
		base.Speech.Language = override.Speech.Language
	}
	if override.Speech.OutputDir != "" {
		base.Speech.OutputDir = override.Speech.OutputDir
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Telegram.APIURL != "" {
		base.Notifications.Telegram.APIURL = override.Notifications.Telegram.APIURL
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if len(override.Watchlist) > 0 {
		base.Watchlist = override.Watchlist
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Classifier: ClassifierConfig{
			Primary:            PrimaryHTTP,
			Timeout:            10 * time.Second,
			Workers:            4,
			RPS:                5,
			Burst:              2,
			FallbackConfidence: 0.5,
			MaxTopics:          5,
		},
		Composer:  ComposerConfig{MaxLength: 5000},
		Inference: InferenceConfig{URL: "http://localhost:8000"},
		LLM: LLMConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Sources: []SourceConfig{
			{
				Name:    "google-news",
				Scanner: "feed",
				Options: map[string]string{
					"url": "https://news.google.com/rss/search?q={query}&hl=en-US&gl=US&ceid=US:en",
				},
			},
		},
		Speech: SpeechConfig{
			Endpoints: []string{"https://translate.google.com/translate_tts"},
			Language:  "hi",
			OutputDir: "audio",
		},
		Scheduler: SchedulerConfig{Interval: 24 * time.Hour, Timezone: defaultTimezone, location: tz},
	}
}
