package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"` // bearer key guarding the ops endpoints
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type QueueConfig struct {
	DefaultPriority int           `yaml:"default_priority"`
	MaxAttempts     int           `yaml:"max_attempts"`
	AvgJobDuration  time.Duration `yaml:"avg_job_duration"` // fixed ETA estimate per queued job
	PollInterval    time.Duration `yaml:"poll_interval"`    // facade polling fallback
	StaleAfter      time.Duration `yaml:"stale_after"`      // processing lease before requeue
}

type ProcessorConfig struct {
	Mode      string        `yaml:"mode"`       // local | remote
	RemoteURL string        `yaml:"remote_url"` // trigger target when mode=remote
	Workers   int           `yaml:"workers"`
	Tick      time.Duration `yaml:"tick"` // scheduler safety-net interval
}

type AIConfig struct {
	OpenAIKey    string `yaml:"openai_key"`
	GeminiKey    string `yaml:"gemini_key"`
	DefaultModel string `yaml:"default_model"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Queue     QueueConfig     `yaml:"queue"`
	Processor ProcessorConfig `yaml:"processor"`
	AI        AIConfig        `yaml:"ai"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Processor.Mode == "remote" && cfg.Processor.RemoteURL == "" {
		return nil, errors.New("processor.remote_url is required when processor.mode=remote")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// ApplyDefaults fills unset fields; exported so tests can build configs
// without a YAML file.
func (cfg *Config) ApplyDefaults() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Queue.DefaultPriority <= 0 {
		cfg.Queue.DefaultPriority = 5
	}
	if cfg.Queue.MaxAttempts <= 0 {
		cfg.Queue.MaxAttempts = 3
	}
	if cfg.Queue.AvgJobDuration <= 0 {
		cfg.Queue.AvgJobDuration = 30 * time.Second
	}
	if cfg.Queue.PollInterval <= 0 {
		cfg.Queue.PollInterval = 5 * time.Second
	}
	if cfg.Queue.StaleAfter <= 0 {
		cfg.Queue.StaleAfter = 10 * time.Minute
	}
	if cfg.Processor.Mode == "" {
		cfg.Processor.Mode = "local"
	}
	if cfg.Processor.Workers <= 0 {
		cfg.Processor.Workers = 4
	}
	if cfg.Processor.Tick <= 0 {
		cfg.Processor.Tick = time.Minute
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
}
