// Package config resolves bankdash runtime settings.
//
// Sources are applied in order, later ones winning:
//
//  1. built-in defaults
//  2. YAML file (~/.bankdash/config.yaml, or the path in BANKDASH_CONFIG / -config)
//  3. environment (BANKDASH_API_URL, BANKDASH_STATE_DIR, BANKDASH_LOG_FILE)
//  4. command-line flags (-api, -state-dir, -log-file, -timeout)
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

// DefaultAPIURL is where a locally started API listens by default.
const DefaultAPIURL = "http://127.0.0.1:8000"

// Config holds runtime settings for the bankdash client.
type Config struct {
	APIURL         string
	StateDir       string
	LogFile        string
	RequestTimeout time.Duration
}

// fileConfig is the on-disk YAML shape.
type fileConfig struct {
	APIURL         string `yaml:"api_url"`
	StateDir       string `yaml:"state_dir"`
	LogFile        string `yaml:"log_file"`
	RequestTimeout string `yaml:"request_timeout"`
}

// DefaultStateDir returns ~/.bankdash.
func DefaultStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".bankdash"), nil
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = DefaultAPIURL
	c.RequestTimeout = 30 * time.Second
	if dir, err := DefaultStateDir(); err == nil {
		c.StateDir = dir
	} else {
		c.StateDir = ".bankdash"
	}
	c.LogFile = ""
}

// Load builds a Config from all sources. args are the command-line arguments
// after the program name and any subcommand. The remaining positional
// arguments are returned.
func Load(args []string, getenv func(string) string) (*Config, []string, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := &Config{}
	cfg.LoadDefaults()

	fs := flag.NewFlagSet("bankdash", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "", "path to YAML config file")
	apiURL := fs.String("api", "", "base URL of the banking API")
	stateDir := fs.String("state-dir", "", "directory holding the session token")
	logFile := fs.String("log-file", "", "write debug logs to this file")
	timeout := fs.Duration("timeout", 0, "per-request timeout")
	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("config.Load: %w", err)
	}

	path := *configPath
	explicit := path != ""
	if path == "" {
		path = getenv("BANKDASH_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		dir := cfg.StateDir
		if v := getenv("BANKDASH_STATE_DIR"); v != "" {
			dir = v
		}
		if *stateDir != "" {
			dir = *stateDir
		}
		path = filepath.Join(dir, "config.yaml")
	}
	if err := cfg.loadFile(path, explicit); err != nil {
		return nil, nil, err
	}

	cfg.loadEnv(getenv)

	if *apiURL != "" {
		cfg.APIURL = *apiURL
	}
	if *stateDir != "" {
		cfg.StateDir = *stateDir
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *timeout > 0 {
		cfg.RequestTimeout = *timeout
	}
	return cfg, fs.Args(), nil
}

// loadFile overlays values from a YAML file. A missing file is only an error
// when the path was given explicitly.
func (c *Config) loadFile(path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config.loadFile: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config.loadFile: parse %s: %w", path, err)
	}
	if fc.APIURL != "" {
		c.APIURL = fc.APIURL
	}
	if fc.StateDir != "" {
		c.StateDir = fc.StateDir
	}
	if fc.LogFile != "" {
		c.LogFile = fc.LogFile
	}
	if fc.RequestTimeout != "" {
		d, err := time.ParseDuration(fc.RequestTimeout)
		if err != nil {
			return fmt.Errorf("config.loadFile: request_timeout: %w", err)
		}
		c.RequestTimeout = d
	}
	return nil
}

func (c *Config) loadEnv(getenv func(string) string) {
	if v := getenv("BANKDASH_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := getenv("BANKDASH_STATE_DIR"); v != "" {
		c.StateDir = v
	}
	if v := getenv("BANKDASH_LOG_FILE"); v != "" {
		c.LogFile = v
	}
}
