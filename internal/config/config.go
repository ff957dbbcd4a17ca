package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	DBDSN         string           `json:"db_dsn"`
	MigrationsDir string           `json:"migrations_dir"`
	LogConfig     logger.LogConfig `json:"log_config"`
	FileStore     FileStoreConfig  `json:"file_store"`
	AI            AIConfig         `json:"ai"`
	Compare       CompareConfig    `json:"compare"`
	Process       ProcessConfig    `json:"process"`
	Jobs          JobsConfig       `json:"jobs"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type AIConfig struct {
	Provider       string      `json:"provider"`
	Data           interface{} `json:"data"`
	EmbedModel     string      `json:"embed_model"`
	SummaryModel   string      `json:"summary_model"`
	TimeoutSeconds int         `json:"timeout_seconds"`
	MaxInputChars  int         `json:"max_input_chars"`
	CacheSize      int         `json:"cache_size"`
	CacheTTLMin    int         `json:"cache_ttl_minutes"`
}

type CompareConfig struct {
	Threshold      float64 `json:"threshold"`
	MaxConcurrency int     `json:"max_concurrency"`
	RatePerSec     float64 `json:"rate_per_sec"`
	SnippetMax     int     `json:"snippet_max"`
}

type ProcessConfig struct {
	Workers      int `json:"workers"`
	QueueSize    int `json:"queue_size"`
	EmbedWorkers int `json:"embed_workers"`
}

type JobsConfig struct {
	BackfillSpec    string `json:"backfill_spec"`
	BackfillBatch   int    `json:"backfill_batch"`
	CleanupSpec     string `json:"cleanup_spec"`
	StaleJobMinutes int    `json:"stale_job_minutes"`
	RetentionDays   int    `json:"retention_days"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("db_dsn is required")
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "migrations"
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.AI.SummaryModel == "" {
		return nil, fmt.Errorf("ai.summary_model is required")
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	if cfg.AI.MaxInputChars == 0 {
		cfg.AI.MaxInputChars = 16000
	}
	if cfg.AI.CacheSize == 0 {
		cfg.AI.CacheSize = 2048
	}
	if cfg.AI.CacheTTLMin == 0 {
		cfg.AI.CacheTTLMin = 120
	}
	if cfg.Compare.Threshold == 0 {
		cfg.Compare.Threshold = 0.80
	}
	if cfg.Compare.Threshold < 0 || cfg.Compare.Threshold > 1 {
		return nil, fmt.Errorf("compare.threshold must be within [0, 1]")
	}
	if cfg.Compare.MaxConcurrency == 0 {
		cfg.Compare.MaxConcurrency = 4
	}
	if cfg.Compare.RatePerSec == 0 {
		cfg.Compare.RatePerSec = 2
	}
	if cfg.Compare.SnippetMax == 0 {
		cfg.Compare.SnippetMax = 200
	}
	if cfg.Process.Workers == 0 {
		cfg.Process.Workers = 4
	}
	if cfg.Process.QueueSize == 0 {
		cfg.Process.QueueSize = 64
	}
	if cfg.Process.EmbedWorkers == 0 {
		cfg.Process.EmbedWorkers = 4
	}
	if cfg.Jobs.BackfillSpec == "" {
		cfg.Jobs.BackfillSpec = "*/10 * * * *"
	}
	if cfg.Jobs.BackfillBatch == 0 {
		cfg.Jobs.BackfillBatch = 20
	}
	if cfg.Jobs.CleanupSpec == "" {
		cfg.Jobs.CleanupSpec = "0 * * * *"
	}
	if cfg.Jobs.StaleJobMinutes == 0 {
		cfg.Jobs.StaleJobMinutes = 60
	}
	if cfg.Jobs.RetentionDays == 0 {
		cfg.Jobs.RetentionDays = 30
	}
	return &cfg, nil
}
