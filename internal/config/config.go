package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Bank struct {
		// Sources are ranked: earlier entries win coverage ties.
		Sources []string `yaml:"sources"`
		TTL     string   `yaml:"ttl"`
	} `yaml:"bank"`
	Answers struct {
		ByQuestionUID string `yaml:"by_question_uid"`
		Master        string `yaml:"master"`
		ByExamUID     string `yaml:"by_exam_uid"`
		Unsupported   string `yaml:"unsupported"`
	} `yaml:"answers"`
	Progress struct {
		File     string `yaml:"file"`
		User     string `yaml:"user"`
		MaxBytes int    `yaml:"max_bytes"`
	} `yaml:"progress"`
	Pipeline struct {
		BaseURL  string `yaml:"base_url"`
		DataDir  string `yaml:"data_dir"`
		Lookup   string `yaml:"lookup"`
		YearFrom int    `yaml:"year_from"`
		YearTo   int    `yaml:"year_to"`
	} `yaml:"pipeline"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
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
