package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"trivia-quiz-client/internal/domain"
)

type Config struct {
	Trivia struct {
		BaseURL string `yaml:"base_url" validate:"required,url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"trivia"`
	Quiz struct {
		QuestionCount int    `yaml:"question_count" validate:"gte=0"`
		Difficulty    string `yaml:"difficulty" validate:"omitempty,oneof=any easy medium hard"`
		Category      int    `yaml:"category" validate:"gte=0"`
	} `yaml:"quiz"`
	Server struct {
		Port       string `yaml:"port" validate:"omitempty,numeric"`
		SessionTTL string `yaml:"session_ttl"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" validate:"gte=0"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Categories struct {
		TTL string `yaml:"ttl"`
	} `yaml:"categories"`
	Log struct {
		Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
		Format string `yaml:"format" validate:"omitempty,oneof=json pretty"`
	} `yaml:"log"`
}

// Defaults returns the configuration used for anything the YAML file leaves unset.
func Defaults() Config {
	cfg := Config{}
	cfg.Trivia.BaseURL = "https://opentdb.com"
	cfg.Trivia.Timeout = "10s"
	cfg.Quiz.QuestionCount = domain.DefaultQuestionCount
	cfg.Quiz.Difficulty = string(domain.DifficultyEasy)
	cfg.Server.Port = "8080"
	cfg.Server.SessionTTL = "30m"
	cfg.Redis.TTL = "30m"
	cfg.Categories.TTL = "1h"
	cfg.Log.Level = "info"
	cfg.Log.Format = "pretty"
	return cfg
}

// Load reads YAML config from path, fills unset keys from Defaults and validates
// the result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := mergo.Merge(&cfg, Defaults()); err != nil {
		return cfg, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Settings converts the quiz section into initial quiz settings. Category 0 means any.
func (c Config) Settings() domain.QuizSettings {
	difficulty, _ := domain.ParseDifficulty(c.Quiz.Difficulty)
	settings := domain.QuizSettings{
		QuestionCount: domain.ClampQuestionCount(c.Quiz.QuestionCount),
		Difficulty:    difficulty,
	}
	if c.Quiz.Category > 0 {
		category := c.Quiz.Category
		settings.CategoryID = &category
	}
	return settings
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
