package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lromao/salesforce-automation-workbench/internal/switching"
)

// SessionConfig represents a pre-configured org session in the config file.
type SessionConfig struct {
	Name        string `yaml:"name"`
	InstanceURL string `yaml:"instance_url"`
	AccessToken string `yaml:"access_token"`
	APIVersion  string `yaml:"api_version"`
}

// DeployConfig holds the deploy tunables. All values are rate-limit
// accommodations with working defaults; zero means "use the default".
type DeployConfig struct {
	BatchSize         int `yaml:"batch_size"`
	BatchDelayMS      int `yaml:"batch_delay_ms"`
	TriggerDelayMS    int `yaml:"trigger_delay_ms"`
	PollIntervalMS    int `yaml:"poll_interval_ms"`
	TriggerTimeoutSec int `yaml:"trigger_timeout_sec"`
	MaxRetries        int `yaml:"max_retries"`
	RetryBackoffMS    int `yaml:"retry_backoff_ms"`
}

// Switching converts the file representation into a switching.Config,
// applying defaults for unset values.
func (d DeployConfig) Switching() switching.Config {
	cfg := switching.DefaultConfig()
	if d.BatchSize > 0 {
		cfg.BatchSize = d.BatchSize
	}
	if d.BatchDelayMS > 0 {
		cfg.BatchDelay = time.Duration(d.BatchDelayMS) * time.Millisecond
	}
	if d.TriggerDelayMS > 0 {
		cfg.TriggerDelay = time.Duration(d.TriggerDelayMS) * time.Millisecond
	}
	if d.PollIntervalMS > 0 {
		cfg.PollInterval = time.Duration(d.PollIntervalMS) * time.Millisecond
	}
	if d.TriggerTimeoutSec > 0 {
		cfg.TriggerTimeout = time.Duration(d.TriggerTimeoutSec) * time.Second
	}
	if d.MaxRetries > 0 {
		cfg.MaxRetries = d.MaxRetries
	}
	if d.RetryBackoffMS > 0 {
		cfg.RetryBackoff = time.Duration(d.RetryBackoffMS) * time.Millisecond
	}
	return cfg
}

// Config holds all configuration (CLI flags + config file).
type Config struct {
	Listen   string          `yaml:"listen"`
	Deploy   DeployConfig    `yaml:"deploy"`
	Sessions []SessionConfig `yaml:"sessions"`

	// internal: path to config file (from CLI flag)
	configFile string
}

// Parse reads CLI flags, then overlays config file values.
// CLI flags take precedence over config file values.
func Parse() *Config {
	c := &Config{}
	flag.StringVar(&c.configFile, "config", "", "Path to config file (YAML)")
	flag.StringVar(&c.Listen, "listen", "", "HTTP listen address")
	flag.Parse()

	// Load config file if specified
	if c.configFile != "" {
		if err := c.loadFile(c.configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config file: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply defaults for anything still unset
	if c.Listen == "" {
		c.Listen = ":8080"
	}

	return c
}

// loadFile reads a YAML config file. Values from the file are only applied
// if the corresponding CLI flag was not explicitly set.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	// Only apply file values if CLI flag wasn't set
	if c.Listen == "" && file.Listen != "" {
		c.Listen = file.Listen
	}

	// Deploy tunables and sessions always come from the config file
	c.Deploy = file.Deploy
	c.Sessions = file.Sessions

	return nil
}
