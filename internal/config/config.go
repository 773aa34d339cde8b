package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"DailyDigest/internal/domain"
)

const (
	configPathEnv     = "DAILY_DIGEST_CONFIG"
	llmBaseURLEnv     = "DIGEST_LLM_BASE_URL"
	llmAPIKeyEnv      = "DIGEST_LLM_API_KEY"
	llmModelEnv       = "DIGEST_LLM_MODEL"
	logLevelEnv       = "DIGEST_LOG_LEVEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	LLM           LLMConfig          `yaml:"llm"`
	Feeds         FeedsConfig        `yaml:"feeds"`
	Digest        DigestConfig       `yaml:"digest"`
	Report        ReportConfig       `yaml:"report"`
	Cache         CacheConfig        `yaml:"cache"`
	Notifications NotificationConfig `yaml:"notifications"`
	Metrics       MetricsConfig      `yaml:"metrics"`

	// Path is the file the configuration was read from, if any.
	Path string `yaml:"-"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// APIConfig is one chat-completion backend.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// LLMConfig lists backends in failover order plus request extras.
type LLMConfig struct {
	APIs           []APIConfig       `yaml:"apis"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
	ExtraBody      map[string]any    `yaml:"extra_body"`
	ExtraHeaders   map[string]string `yaml:"extra_headers"`
}

// Timeout converts TimeoutSeconds, defaulting to two minutes.
func (l LLMConfig) Timeout() time.Duration {
	if l.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// FeedsConfig describes where feeds come from and how they are fetched.
type FeedsConfig struct {
	Sources         []domain.FeedSource `yaml:"sources"`
	File            string              `yaml:"file"`
	TimeoutSeconds  int                 `yaml:"timeout_seconds"`
	Concurrency     int                 `yaml:"concurrency"`
	PerHostInterval time.Duration       `yaml:"per_host_interval"`
	Parser          string              `yaml:"parser"`
	UserAgent       string              `yaml:"user_agent"`
}

// Timeout converts TimeoutSeconds, defaulting to 15 seconds.
func (f FeedsConfig) Timeout() time.Duration {
	if f.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// DigestConfig holds run defaults that CLI flags may override.
type DigestConfig struct {
	Hours         int    `yaml:"hours"`
	TopN          int    `yaml:"top_n"`
	Lang          string `yaml:"lang"`
	Output        string `yaml:"output"`
	BatchSize     int    `yaml:"batch_size"`
	MaxConcurrent int    `yaml:"max_concurrent"`
	Highlights    int    `yaml:"highlights"`
}

// ReportConfig selects the output format.
type ReportConfig struct {
	Format string `yaml:"format"`
}

// CacheConfig controls the optional feed cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Path    string        `yaml:"path"`
	TTL     time.Duration `yaml:"ttl"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
	APIURL   string `yaml:"api_url"`
}

// Enabled reports whether both credentials are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// MetricsConfig points at an optional Prometheus textfile.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

var (
	// ErrNoFeeds means neither inline sources nor a feeds file were configured.
	ErrNoFeeds = errors.New("no feed sources configured")
	// ErrNoBackends means the llm.apis list is empty.
	ErrNoBackends = errors.New("no LLM backends configured")
)

// Load reads .env, the YAML (or JSON) config and the feeds file, then applies
// environment overrides. An empty path triggers the default search order.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return cfg, err
	}

	if resolved != "" {
		raw, err := os.ReadFile(resolved)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", resolved, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", resolved, err)
		}
		cfg.Path = resolved
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if cfg.Feeds.File != "" && len(cfg.Feeds.Sources) == 0 {
		sources, err := LoadFeeds(cfg.resolveRelative(cfg.Feeds.File))
		if err != nil {
			return cfg, err
		}
		cfg.Feeds.Sources = sources
	}

	return cfg, nil
}

// LoadFeeds reads a JSON or YAML array of {name, xmlUrl, htmlUrl}.
func LoadFeeds(path string) ([]domain.FeedSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feeds %s: %w", path, err)
	}

	var sources []domain.FeedSource
	if err := yaml.Unmarshal(raw, &sources); err != nil {
		return nil, fmt.Errorf("parse feeds %s: %w", path, err)
	}

	valid := sources[:0]
	for _, s := range sources {
		if strings.TrimSpace(s.XMLURL) == "" {
			continue
		}
		if s.Name == "" {
			s.Name = s.XMLURL
		}
		valid = append(valid, s)
	}
	return valid, nil
}

// Validate reports structural problems that make a run impossible.
func (c Config) Validate() error {
	var errs []error
	if len(c.Feeds.Sources) == 0 {
		errs = append(errs, ErrNoFeeds)
	}
	if len(c.LLM.APIs) == 0 {
		errs = append(errs, ErrNoBackends)
	}
	for i, api := range c.LLM.APIs {
		if api.BaseURL == "" || api.Model == "" {
			errs = append(errs, fmt.Errorf("llm.apis[%d]: base_url and model are required", i))
		}
	}
	switch c.Digest.Lang {
	case "zh", "en":
	default:
		errs = append(errs, fmt.Errorf("digest.lang must be zh or en, got %q", c.Digest.Lang))
	}
	switch c.Report.Format {
	case "markdown", "html":
	default:
		errs = append(errs, fmt.Errorf("report.format must be markdown or html, got %q", c.Report.Format))
	}
	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	key := os.Getenv(llmAPIKeyEnv)
	if base := os.Getenv(llmBaseURLEnv); base != "" {
		c.LLM.APIs = append(c.LLM.APIs, APIConfig{
			BaseURL: base,
			APIKey:  key,
			Model:   os.Getenv(llmModelEnv),
		})
		return
	}
	if key == "" {
		return
	}
	for i := range c.LLM.APIs {
		if c.LLM.APIs[i].APIKey == "" {
			c.LLM.APIs[i].APIKey = key
		}
	}
}

func (c *Config) applyDefaults() {
	def := Default()

	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
	if c.Feeds.Concurrency <= 0 {
		c.Feeds.Concurrency = def.Feeds.Concurrency
	}
	if c.Feeds.Parser == "" {
		c.Feeds.Parser = def.Feeds.Parser
	}
	if c.Feeds.UserAgent == "" {
		c.Feeds.UserAgent = def.Feeds.UserAgent
	}
	if c.Digest.Hours <= 0 {
		c.Digest.Hours = def.Digest.Hours
	}
	if c.Digest.TopN <= 0 {
		c.Digest.TopN = def.Digest.TopN
	}
	if c.Digest.Lang == "" {
		c.Digest.Lang = def.Digest.Lang
	}
	if c.Digest.BatchSize <= 0 {
		c.Digest.BatchSize = def.Digest.BatchSize
	}
	if c.Digest.MaxConcurrent <= 0 {
		c.Digest.MaxConcurrent = def.Digest.MaxConcurrent
	}
	if c.Digest.Highlights <= 0 {
		c.Digest.Highlights = def.Digest.Highlights
	}
	if c.Report.Format == "" {
		c.Report.Format = def.Report.Format
	}
	if c.Cache.Path == "" {
		c.Cache.Path = def.Cache.Path
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = def.Cache.TTL
	}
}

func (c Config) resolveRelative(path string) string {
	if filepath.IsAbs(path) || c.Path == "" {
		return path
	}
	return filepath.Join(filepath.Dir(c.Path), path)
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if env := os.Getenv(configPathEnv); env != "" {
		return env, nil
	}

	candidates := []string{"config.yaml", "config.yml", "config.json"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "daily-digest", "config.yaml"))
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		LLM:     LLMConfig{TimeoutSeconds: 120},
		Feeds: FeedsConfig{
			TimeoutSeconds: 15,
			Concurrency:    10,
			Parser:         "pattern",
			UserAgent:      "DailyDigest/1.0 (RSS Reader)",
		},
		Digest: DigestConfig{
			Hours:         48,
			TopN:          15,
			Lang:          "zh",
			BatchSize:     10,
			MaxConcurrent: 2,
			Highlights:    10,
		},
		Report: ReportConfig{Format: "markdown"},
		Cache: CacheConfig{
			Path: filepath.Join("data", "cache", "feeds.db"),
			TTL:  30 * time.Minute,
		},
	}
}
