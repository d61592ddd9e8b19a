package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a jn.yaml file. A missing file is not
// an error: it yields DefaultConfig().
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader decodes Config from r, applying strict field
// checking so typos in jn.yaml surface as errors rather than being ignored.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil {
		if err == io.EOF {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Discovery.TimeoutMillis == 0 {
		cfg.Discovery.TimeoutMillis = 5000
	}

	return cfg, nil
}

// FindConfigFile searches common locations for jn.yaml: the current
// directory, $XDG_CONFIG_HOME/jn, ~/.config/jn, and ~/.jn.yaml.
func FindConfigFile() (string, error) {
	if fileExists("jn.yaml") {
		return "jn.yaml", nil
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		configPath := filepath.Join(xdgConfig, "jn", "jn.yaml")
		if fileExists(configPath) {
			return configPath, nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".config", "jn", "jn.yaml")
		if fileExists(configPath) {
			return configPath, nil
		}
		configPath = filepath.Join(homeDir, ".jn.yaml")
		if fileExists(configPath) {
			return configPath, nil
		}
	}

	return "", fmt.Errorf("no jn.yaml found")
}

// LoadConfigFromDefaultLocations tries FindConfigFile, falling back to
// DefaultConfig when nothing is found.
func LoadConfigFromDefaultLocations() (*Config, error) {
	configPath, err := FindConfigFile()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(configPath)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
