package config

// Config is jn's ambient configuration: installation root, discovery
// timeout, cache behavior, and log level. The tiered plugin/profile
// directories themselves are fixed, not configurable here; this configures
// the runtime around them.
type Config struct {
	Version string `yaml:"version"`

	// InstallRoot overrides the bundled-tier root (plugins, profiles, cache).
	// Defaults to the JN_INSTALL_ROOT environment variable, then a
	// platform-appropriate fallback.
	InstallRoot string `yaml:"install_root,omitempty"`

	// ProjectRoot pins the project tier for nested invocations, overriding
	// automatic project-root detection (internal/projectroot).
	ProjectRoot string `yaml:"project_root,omitempty"`

	Discovery DiscoveryConfig `yaml:"discovery,omitempty"`
	Cache     CacheConfig     `yaml:"cache,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// DiscoveryConfig tunes plugin discovery.
type DiscoveryConfig struct {
	// TimeoutMillis bounds a single native plugin's --jn-meta probe.
	TimeoutMillis int `yaml:"timeout_ms,omitempty"`
}

// CacheConfig tunes the on-disk plugin cache.
type CacheConfig struct {
	Disabled bool `yaml:"disabled,omitempty"`
}

// LoggingConfig tunes internal/obslog.
type LoggingConfig struct {
	ConsoleLevel string `yaml:"console_level,omitempty"`
	FileLevel    string `yaml:"file_level,omitempty"`
	NoColor      bool   `yaml:"no_color,omitempty"`
}

// DefaultConfig returns jn's built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Discovery: DiscoveryConfig{
			TimeoutMillis: 5000,
		},
	}
}
