package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

type AgentConfig struct {
	LearningRate   float64 `json:"learning_rate"`
	DiscountFactor float64 `json:"discount_factor"`
	Epsilon        float64 `json:"epsilon"`
	MemoryFile     string  `json:"memory_file"`
	Retention      struct {
		MaxFeedbackHistory int `json:"max_feedback_history"`
	} `json:"retention"`
	Queue struct {
		Enabled    bool   `json:"enabled"`
		InboxKey   string `json:"inbox_key"`
		ResultsKey string `json:"results_key"`
	} `json:"queue"`
}

type SummarizerConfig struct {
	ContextFile         string  `json:"context_file"`
	LearningFile        string  `json:"learning_file"`
	MaxContextMessages  int     `json:"max_context_messages"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

type FlowConfig struct {
	ContextDir    string `json:"context_dir"`
	TaskQueueFile string `json:"task_queue_file"`
}

type Config struct {
	Server struct {
		Host      string `json:"host"`
		Port      int    `json:"port"`
		Subpath   string `json:"subpath"`
		JWTSecret string `json:"jwtSecret"`
	} `json:"server"`
	Postgres struct {
		DSN string `json:"dsn"`
	} `json:"postgres"`
	SQLite struct {
		Path string `json:"path"`
	} `json:"sqlite"`
	Redis struct {
		Addr     string `json:"addr"`
		Password string `json:"password"`
		DB       int    `json:"db"`
	} `json:"redis"`
	Agent      AgentConfig      `json:"agent"`
	Summarizer SummarizerConfig `json:"summarizer"`
	Flow       FlowConfig       `json:"flow"`
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads config.json from disk (singleton)
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		raw, err := os.ReadFile(path)
		if err != nil {
			cfgErr = fmt.Errorf("failed to read config file: %w", err)
			return
		}
		var c Config
		if err := json.Unmarshal(raw, &c); err != nil {
			cfgErr = fmt.Errorf("invalid config format: %w", err)
			return
		}
		// Minimal validation
		if c.Server.JWTSecret == "" {
			cfgErr = errors.New("jwtSecret must be set in config")
			return
		}
		applyDefaults(&c)
		cfg = &c
	})
	return cfg, cfgErr
}

func applyDefaults(c *Config) {
	if c.Agent.LearningRate == 0 {
		c.Agent.LearningRate = 0.1
	}
	if c.Agent.DiscountFactor == 0 {
		c.Agent.DiscountFactor = 0.95
	}
	if c.Agent.Epsilon == 0 {
		c.Agent.Epsilon = 0.1
	}
	if c.Agent.MemoryFile == "" {
		c.Agent.MemoryFile = "agent_memory.json"
	}
	if c.Agent.Queue.InboxKey == "" {
		c.Agent.Queue.InboxKey = "inbox:queue"
	}
	if c.Agent.Queue.ResultsKey == "" {
		c.Agent.Queue.ResultsKey = "inbox:results"
	}
	if c.Summarizer.ContextFile == "" {
		c.Summarizer.ContextFile = "message_context.json"
	}
	if c.Summarizer.LearningFile == "" {
		c.Summarizer.LearningFile = "summarizer_learning.json"
	}
	if c.Summarizer.MaxContextMessages == 0 {
		c.Summarizer.MaxContextMessages = 3
	}
	if c.Summarizer.ConfidenceThreshold == 0 {
		c.Summarizer.ConfidenceThreshold = 0.6
	}
	if c.Flow.ContextDir == "" {
		c.Flow.ContextDir = "user_contexts"
	}
	if c.Flow.TaskQueueFile == "" {
		c.Flow.TaskQueueFile = "task_queue.json"
	}
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}
