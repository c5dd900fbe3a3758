package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "Asia/Kolkata"
	fallbackTimezone   = "UTC"
	configPathEnv      = "QUIZFEED_CONFIG"
	mysqlHostEnv       = "MYSQL_HOST"
	mysqlPortEnv       = "MYSQL_PORT"
	mysqlUserEnv       = "MYSQL_USER"
	mysqlPasswordEnv   = "MYSQL_PASSWORD"
	mysqlDatabaseEnv   = "MYSQL_DATABASE"
	redisAddressEnv    = "REDIS_ADDRESS"
	redisPasswordEnv   = "REDIS_PASSWORD"
	redisDBEnv         = "REDIS_DB"
	telegramTokenEnv   = "BOT_TOKEN"
	telegramChannelEnv = "CHANNEL_USERNAME"
	appLinkEnv         = "APP_LINK"
	fcmTopicEnv        = "FCM_NOTIFICATION_TOPIC"
	fcmAccountEnv      = "FIREBASE_SERVICE_ACCOUNT"
	fcmAccountPathEnv  = "FIREBASE_SERVICE_ACCOUNT_PATH"
	googleAPIKeyEnv    = "GOOGLE_TRANSLATE_API_KEY"
	chatGPTAPIKeyEnv   = "CHATGPT_API_KEY"
	chatGPTModelEnv    = "CHATGPT_MODEL"
	logLevelEnv        = "LOG_LEVEL"
	logFormatEnv       = "LOG_FORMAT"
	metricsAddressEnv  = "METRICS_ADDRESS"
)

// Translation backends.
const (
	BackendGoogle  = "google"
	BackendChatGPT = "chatgpt"
	BackendNone    = "none"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Source      SourceConfig      `yaml:"source"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Translation TranslationConfig `yaml:"translation"`
	Content     ContentConfig     `yaml:"content"`
	MySQL       MySQLConfig       `yaml:"mysql"`
	Redis       RedisConfig       `yaml:"redis"`
	Telegram    TelegramConfig    `yaml:"telegram"`
	FCM         FCMConfig         `yaml:"fcm"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// LoggingConfig selects the slog level and output format ("text" or "json").
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SchedulerConfig defines when the pipeline should run in daemon mode.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SourceConfig describes the per-day source and the scanner strategy that parses it.
type SourceConfig struct {
	Name        string            `yaml:"name"`
	Scanner     string            `yaml:"scanner"`
	URLTemplate string            `yaml:"urlTemplate"`
	Timeout     time.Duration     `yaml:"timeout"`
	Options     map[string]string `yaml:"options"`
}

// PipelineConfig tunes orchestration.
type PipelineConfig struct {
	Workers           int           `yaml:"workers"`
	IdentifierTimeout time.Duration `yaml:"identifierTimeout"`
}

// TranslationConfig selects a backend and its retry policy.
type TranslationConfig struct {
	Backend        string        `yaml:"backend"`
	TargetLanguage string        `yaml:"targetLanguage"`
	MaxAttempts    int           `yaml:"maxAttempts"`
	RetryDelay     time.Duration `yaml:"retryDelay"`
	Pacing         time.Duration `yaml:"pacing"`
	Google         GoogleConfig  `yaml:"google"`
	ChatGPT        ChatGPTConfig `yaml:"chatgpt"`
}

// GoogleConfig holds the Cloud Translation API key.
type GoogleConfig struct {
	APIKey   string `yaml:"apiKey"`
	Endpoint string `yaml:"endpoint"`
}

// ChatGPTConfig defines how to contact an OpenAI-compatible API.
type ChatGPTConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// ContentConfig controls how articles are titled and classified in the content store.
type ContentConfig struct {
	CategoryID  int64        `yaml:"categoryId"`
	Status      int          `yaml:"status"`
	ContentType string       `yaml:"contentType"`
	TitleSuffix string       `yaml:"titleSuffix"`
	Labels      LabelsConfig `yaml:"labels"`
}

// LabelsConfig overrides the captions used in rendered output and notifications.
// Empty values keep the built-in defaults.
type LabelsConfig struct {
	Heading     string `yaml:"heading"`
	Total       string `yaml:"total"`
	Question    string `yaml:"question"`
	Answer      string `yaml:"answer"`
	Explanation string `yaml:"explanation"`
	Footer      string `yaml:"footer"`
}

// MySQLConfig describes the content store connection.
type MySQLConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	Database string        `yaml:"database"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Address returns host:port.
func (m MySQLConfig) Address() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// RedisConfig describes the deduplication store connection.
type RedisConfig struct {
	Address   string `yaml:"address"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"keyPrefix"`
}

// TelegramConfig wires all data required to broadcast messages.
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"botToken"`
	Channel  string `yaml:"channel"`
	Endpoint string `yaml:"endpoint"`
}

// FCMConfig wires Firebase Cloud Messaging.
type FCMConfig struct {
	Enabled            bool   `yaml:"enabled"`
	Topic              string `yaml:"topic"`
	ServiceAccount     string `yaml:"serviceAccount"`
	ServiceAccountPath string `yaml:"serviceAccountPath"`
	AppLink            string `yaml:"appLink"`
	ImageBaseURL       string `yaml:"imageBaseUrl"`
}

// MetricsConfig sets the listen address for /metrics in schedule mode.
type MetricsConfig struct {
	Address string `yaml:"address"`
}

// Load reads .env (if present), the YAML file at path (or $QUIZFEED_CONFIG),
// and finally applies environment overrides.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg, raw)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	if err := cfg.bindTimezone(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports every missing or inconsistent setting.
func (c Config) Validate() []error {
	var errs []error

	if c.MySQL.Host == "" {
		errs = append(errs, fmt.Errorf("%s is required", mysqlHostEnv))
	}
	if c.MySQL.User == "" {
		errs = append(errs, fmt.Errorf("%s is required", mysqlUserEnv))
	}
	if c.MySQL.Database == "" {
		errs = append(errs, fmt.Errorf("%s is required", mysqlDatabaseEnv))
	}
	if c.Redis.Address == "" {
		errs = append(errs, fmt.Errorf("%s is required", redisAddressEnv))
	}
	if !strings.Contains(c.Source.URLTemplate, "{date}") {
		errs = append(errs, errors.New("source.urlTemplate must contain {date}"))
	}
	if c.Source.Scanner == "" {
		errs = append(errs, errors.New("source.scanner is required"))
	}
	if c.Pipeline.Workers < 1 {
		errs = append(errs, errors.New("pipeline.workers must be at least 1"))
	}
	if c.Translation.MaxAttempts < 1 {
		errs = append(errs, errors.New("translation.maxAttempts must be at least 1"))
	}

	switch c.Translation.Backend {
	case BackendGoogle:
		if c.Translation.Google.APIKey == "" {
			errs = append(errs, fmt.Errorf("%s is required for the google backend", googleAPIKeyEnv))
		}
	case BackendChatGPT:
		if c.Translation.ChatGPT.APIKey == "" {
			errs = append(errs, fmt.Errorf("%s is required for the chatgpt backend", chatGPTAPIKeyEnv))
		}
	case BackendNone:
	default:
		errs = append(errs, fmt.Errorf("unknown translation backend %q", c.Translation.Backend))
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			errs = append(errs, fmt.Errorf("%s is required when telegram is enabled", telegramTokenEnv))
		}
		if c.Telegram.Channel == "" {
			errs = append(errs, fmt.Errorf("%s is required when telegram is enabled", telegramChannelEnv))
		}
	}
	if c.FCM.Enabled && c.FCM.Topic == "" {
		errs = append(errs, fmt.Errorf("%s is required when fcm is enabled", fcmTopicEnv))
	}

	return errs
}

func (c *Config) applyEnvOverrides() error {
	setString(&c.MySQL.Host, mysqlHostEnv)
	setString(&c.MySQL.User, mysqlUserEnv)
	setString(&c.MySQL.Password, mysqlPasswordEnv)
	setString(&c.MySQL.Database, mysqlDatabaseEnv)
	setString(&c.Redis.Address, redisAddressEnv)
	setString(&c.Redis.Password, redisPasswordEnv)
	setString(&c.Telegram.BotToken, telegramTokenEnv)
	setString(&c.Telegram.Channel, telegramChannelEnv)
	setString(&c.FCM.AppLink, appLinkEnv)
	setString(&c.FCM.Topic, fcmTopicEnv)
	setString(&c.FCM.ServiceAccount, fcmAccountEnv)
	setString(&c.FCM.ServiceAccountPath, fcmAccountPathEnv)
	setString(&c.Translation.Google.APIKey, googleAPIKeyEnv)
	setString(&c.Translation.ChatGPT.APIKey, chatGPTAPIKeyEnv)
	setString(&c.Translation.ChatGPT.Model, chatGPTModelEnv)
	setString(&c.Logging.Level, logLevelEnv)
	setString(&c.Logging.Format, logFormatEnv)
	setString(&c.Metrics.Address, metricsAddressEnv)

	if err := setInt(&c.MySQL.Port, mysqlPortEnv); err != nil {
		return err
	}
	return setInt(&c.Redis.DB, redisDBEnv)
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", env, err)
	}
	*dst = n
	return nil
}

func (c *Config) bindTimezone() error {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = fallbackTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("scheduler timezone %s: %w", tz, err)
	}
	c.Scheduler.Timezone = tz
	c.Scheduler.location = loc
	return nil
}

// mergeConfig overlays non-zero file values onto the defaults. Booleans are only
// taken from the file when the key is actually present in raw.
func mergeConfig(base, override Config, raw []byte) Config {
	mergeString(&base.Logging.Level, override.Logging.Level)
	mergeString(&base.Logging.Format, override.Logging.Format)

	mergeString(&base.Scheduler.CronExpression, override.Scheduler.CronExpression)
	mergeString(&base.Scheduler.Timezone, override.Scheduler.Timezone)

	mergeString(&base.Source.Name, override.Source.Name)
	mergeString(&base.Source.Scanner, override.Source.Scanner)
	mergeString(&base.Source.URLTemplate, override.Source.URLTemplate)
	if override.Source.Timeout > 0 {
		base.Source.Timeout = override.Source.Timeout
	}
	if len(override.Source.Options) > 0 {
		base.Source.Options = override.Source.Options
	}

	if override.Pipeline.Workers != 0 {
		base.Pipeline.Workers = override.Pipeline.Workers
	}
	if override.Pipeline.IdentifierTimeout > 0 {
		base.Pipeline.IdentifierTimeout = override.Pipeline.IdentifierTimeout
	}

	mergeString(&base.Translation.Backend, override.Translation.Backend)
	mergeString(&base.Translation.TargetLanguage, override.Translation.TargetLanguage)
	if override.Translation.MaxAttempts != 0 {
		base.Translation.MaxAttempts = override.Translation.MaxAttempts
	}
	if override.Translation.RetryDelay > 0 {
		base.Translation.RetryDelay = override.Translation.RetryDelay
	}
	if override.Translation.Pacing > 0 {
		base.Translation.Pacing = override.Translation.Pacing
	}
	mergeString(&base.Translation.Google.APIKey, override.Translation.Google.APIKey)
	mergeString(&base.Translation.Google.Endpoint, override.Translation.Google.Endpoint)
	mergeString(&base.Translation.ChatGPT.Endpoint, override.Translation.ChatGPT.Endpoint)
	mergeString(&base.Translation.ChatGPT.Model, override.Translation.ChatGPT.Model)
	mergeString(&base.Translation.ChatGPT.APIKey, override.Translation.ChatGPT.APIKey)
	mergeString(&base.Translation.ChatGPT.SystemPrompt, override.Translation.ChatGPT.SystemPrompt)

	if override.Content.CategoryID != 0 {
		base.Content.CategoryID = override.Content.CategoryID
	}
	if override.Content.Status != 0 {
		base.Content.Status = override.Content.Status
	}
	mergeString(&base.Content.ContentType, override.Content.ContentType)
	mergeString(&base.Content.TitleSuffix, override.Content.TitleSuffix)
	base.Content.Labels = override.Content.Labels

	mergeString(&base.MySQL.Host, override.MySQL.Host)
	if override.MySQL.Port != 0 {
		base.MySQL.Port = override.MySQL.Port
	}
	mergeString(&base.MySQL.User, override.MySQL.User)
	mergeString(&base.MySQL.Password, override.MySQL.Password)
	mergeString(&base.MySQL.Database, override.MySQL.Database)
	if override.MySQL.Timeout > 0 {
		base.MySQL.Timeout = override.MySQL.Timeout
	}

	mergeString(&base.Redis.Address, override.Redis.Address)
	mergeString(&base.Redis.Password, override.Redis.Password)
	if override.Redis.DB != 0 {
		base.Redis.DB = override.Redis.DB
	}
	mergeString(&base.Redis.KeyPrefix, override.Redis.KeyPrefix)

	mergeString(&base.Telegram.BotToken, override.Telegram.BotToken)
	mergeString(&base.Telegram.Channel, override.Telegram.Channel)
	mergeString(&base.Telegram.Endpoint, override.Telegram.Endpoint)

	mergeString(&base.FCM.Topic, override.FCM.Topic)
	mergeString(&base.FCM.ServiceAccount, override.FCM.ServiceAccount)
	mergeString(&base.FCM.ServiceAccountPath, override.FCM.ServiceAccountPath)
	mergeString(&base.FCM.AppLink, override.FCM.AppLink)
	mergeString(&base.FCM.ImageBaseURL, override.FCM.ImageBaseURL)

	mergeString(&base.Metrics.Address, override.Metrics.Address)

	var present struct {
		Telegram map[string]any `yaml:"telegram"`
		FCM      map[string]any `yaml:"fcm"`
	}
	if err := yaml.Unmarshal(raw, &present); err == nil {
		if _, ok := present.Telegram["enabled"]; ok {
			base.Telegram.Enabled = override.Telegram.Enabled
		}
		if _, ok := present.FCM["enabled"]; ok {
			base.FCM.Enabled = override.FCM.Enabled
		}
	}

	return base
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func defaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Scheduler: SchedulerConfig{CronExpression: "0 7 * * *", Timezone: defaultTimezone},
		Source: SourceConfig{
			Name:        "indiabix-current-affairs",
			Scanner:     "indiabix",
			URLTemplate: "https://www.indiabix.com/current-affairs/{date}/",
			Timeout:     20 * time.Second,
		},
		Pipeline: PipelineConfig{Workers: 1, IdentifierTimeout: 30 * time.Minute},
		Translation: TranslationConfig{
			Backend:        BackendGoogle,
			TargetLanguage: "gu",
			MaxAttempts:    3,
			RetryDelay:     5 * time.Second,
			Pacing:         time.Second,
			ChatGPT: ChatGPTConfig{
				Endpoint:     "https://api.openai.com/v1/chat/completions",
				Model:        "gpt-4o-mini",
				SystemPrompt: "You are a translation engine. Translate the user's text into the language with ISO code %s. Reply with the translation only.",
			},
		},
		Content: ContentConfig{
			CategoryID:  1,
			Status:      1,
			ContentType: "Post",
			TitleSuffix: "Gujarati Current Affairs",
		},
		MySQL:    MySQLConfig{Port: 3306, Timeout: 10 * time.Second},
		Redis:    RedisConfig{Address: "localhost:6379", KeyPrefix: "quizfeed:processed"},
		Telegram: TelegramConfig{Enabled: true, Endpoint: "https://api.telegram.org"},
		FCM:      FCMConfig{Enabled: true, Topic: "android_news_app_topic"},
		Metrics:  MetricsConfig{Address: ":9102"},
	}
}
