// Package config provides configuration service structure and utilities.
package config

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Environment variables recognised by Load.
const (
	EnvURL      = "JENKINS_URL"
	EnvUser     = "JENKINS_USER"
	EnvToken    = "JENKINS_TOKEN"
	EnvTimeout  = "JENKINS_TIMEOUT"
	EnvLogLevel = "JENKINS_LOG_LEVEL"
)

// Defaults used when neither the config file nor the environment set a value.
const (
	DefaultURL      = "http://localhost:8080"
	DefaultTimeout  = 30 * time.Second
	DefaultLogLevel = "warn"
)

type (
	// Config represent service config.
	Config struct {
		Jenkins *JenkinsCfg `yaml:"jenkins"`
		Logger  *LoggerCfg  `yaml:"logger"`
	}

	// JenkinsCfg jenkins server section.
	JenkinsCfg struct {
		URL     string        `yaml:"url,omitempty"`
		User    string        `yaml:"user,omitempty"`
		Token   string        `yaml:"token,omitempty"`
		Timeout time.Duration `yaml:"timeout,omitempty"`
	}

	// LoggerCfg logger config section.
	LoggerCfg struct {
		Level string `yaml:"level,omitempty"`
	}
)

func defaultConfig() *Config {
	return &Config{
		Jenkins: &JenkinsCfg{URL: DefaultURL, Timeout: DefaultTimeout},
		Logger:  &LoggerCfg{Level: DefaultLogLevel},
	}
}

// Load builds the config from defaults, an optional yaml file, an optional .env file
// in the working directory and finally the process environment.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("read file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse file: %w", err)
	}

	// sections omitted from the file are decoded as nil
	def := defaultConfig()
	if cfg.Jenkins == nil {
		cfg.Jenkins = def.Jenkins
	}

	if cfg.Logger == nil {
		cfg.Logger = def.Logger
	}

	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvURL); v != "" {
		cfg.Jenkins.URL = v
	}

	if v := os.Getenv(EnvUser); v != "" {
		cfg.Jenkins.User = v
	}

	if v := os.Getenv(EnvToken); v != "" {
		cfg.Jenkins.Token = v
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		timeout, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}

		cfg.Jenkins.Timeout = timeout
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logger.Level = v
	}

	if cfg.Jenkins.URL == "" {
		cfg.Jenkins.URL = DefaultURL
	}

	if cfg.Jenkins.Timeout <= 0 {
		cfg.Jenkins.Timeout = DefaultTimeout
	}

	return nil
}

// parseTimeout accepts a Go duration ("45s") or a bare number of seconds ("45").
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("must be positive: %q", v)
		}

		return time.Duration(secs) * time.Second, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("must be positive: %q", v)
	}

	return d, nil
}
