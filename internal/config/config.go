package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Data      DataConfig      `yaml:"data"`
	Collector CollectorConfig `yaml:"collector"`
	History   HistoryConfig   `yaml:"history"`
	Audit     AuditConfig     `yaml:"audit"`
	Notify    NotifyConfig    `yaml:"notify"`
}

type DataConfig struct {
	Pattern string `yaml:"pattern"`
}

type CollectorConfig struct {
	Command string `yaml:"command"`
	Dir     string `yaml:"dir"`
}

type HistoryConfig struct {
	Repo string `yaml:"repo"`
}

type AuditConfig struct {
	DSN string `yaml:"dsn"`
}

type NotifyConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}

	_, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Data.Pattern == "" {
		return errors.New("data.pattern is required")
	}
	if c.Collector.Command == "" {
		return errors.New("collector.command is required")
	}
	if c.History.Repo == "" {
		return errors.New("history.repo is required")
	}
	if len(c.Notify.Brokers) > 0 && c.Notify.Topic == "" {
		return errors.New("notify.topic is required when notify.brokers is set")
	}
	return nil
}
