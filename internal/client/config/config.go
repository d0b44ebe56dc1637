// Package config handles configuration for the lookboard CLI.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/lookboard/internal/flagx"
	"github.com/dmitrijs2005/lookboard/internal/timex"
)

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerURL: base URL of the lookboard HTTP API.
//   - RequestTimeout: bound on each API call.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
}

// JsonConfig is the on-disk shape of Config.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig applies defaults, then the JSON file given with -c/-config,
// then the -a and -w flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseJson(cfg *Config) error {
	path := flagx.ConfigPath()
	if path == "" {
		return nil
	}
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{ServerURL: cfg.ServerURL, RequestTimeout: timex.Duration{Duration: cfg.RequestTimeout}}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ServerURL = c.ServerURL
	cfg.RequestTimeout = c.RequestTimeout.Duration
	return nil
}

// parseFlags reads:
//
//	-a string    server URL
//	-w duration  request timeout
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server URL")
	fs.DurationVar(&cfg.RequestTimeout, "w", cfg.RequestTimeout, "request timeout")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
