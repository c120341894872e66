package config

import (
	"time"

	"golang-disclosure-watcher/pkg/config"
)

// Executor holds executor-specific configuration.
type Executor struct {
	MaxConcurrentTasks              int           `mapstructure:"max_concurrent_tasks"`
	RedisStreamTaskExecutionTimeout time.Duration `mapstructure:"redis_stream_task_execution_timeout"`
	RedisStreamBackfillTimeout      time.Duration `mapstructure:"redis_stream_backfill_timeout"`

	// MaxConcurrentModelCalls bounds every stage that fans out over
	// documents, subscribers, or releases for model calls. One shared
	// constant, not per-call magic numbers.
	MaxConcurrentModelCalls int `mapstructure:"max_concurrent_model_calls"`

	ClassifierBatchSize  int `mapstructure:"classifier_batch_size"`
	AnalysisMaxDocuments int `mapstructure:"analysis_max_documents"`
	AnalysisMaxPages     int `mapstructure:"analysis_max_pages"`
	BackfillBatchSize    int `mapstructure:"backfill_batch_size"`
}

// Sources holds the disclosure feed endpoints.
type Sources struct {
	TDnetBaseURL      string        `mapstructure:"tdnet_base_url"`
	RSSURLTemplate    string        `mapstructure:"rss_url_template"`
	IRPageURLTemplate string        `mapstructure:"ir_page_url_template"`
	ListingCacheTTL   time.Duration `mapstructure:"listing_cache_ttl"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the executor service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	Blob     config.Blob     `mapstructure:"blob"`
	Executor Executor        `mapstructure:"executor"`
	Sources  Sources         `mapstructure:"sources"`
	Gemini   Gemini          `mapstructure:"gemini"`
	Telegram Telegram        `mapstructure:"telegram"`
}

// Load loads the executor configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
