// Package config loads startrc configuration with layered precedence:
// flags > environment variables > config file > defaults.
package config

import (
	"fmt"
	"regexp"

	"github.com/leapstack-labs/startrc/pkg/core"
)

// Config holds the full CLI configuration.
type Config struct {
	// RootDir is the fragment directory a session runs against.
	RootDir string `koanf:"root_dir"`

	// CompileEnabled turns on staleness-driven recompilation.
	CompileEnabled bool `koanf:"compile_enabled"`

	// LogVisibility is one of always, errorsOnly, never.
	LogVisibility string `koanf:"log_visibility"`

	// DefaultPattern overrides the two-leading-digits convention.
	DefaultPattern *regexp.Regexp `koanf:"default_pattern"`

	// PlatformPatterns overrides individual platform pass patterns,
	// keyed by fact name (windows, meadow, carbon, cocoa, linux, bsd, nw).
	PlatformPatterns map[string]*regexp.Regexp `koanf:"platform_patterns"`

	// StatePath is the session-history database. Empty disables
	// persistence.
	StatePath string `koanf:"state_path"`

	// ListenAddr is the address the serve command binds to.
	ListenAddr string `koanf:"listen_addr"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultRootDir    = "fragments"
	DefaultStatePath  = ".startrc/history.db"
	DefaultListenAddr = ":8735"
)

// platformKeys are the recognized platform_patterns keys.
var platformKeys = map[string]bool{
	"windows": true, "meadow": true, "carbon": true, "cocoa": true,
	"linux": true, "bsd": true, "nw": true,
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if c.RootDir == "" {
		return fmt.Errorf("root_dir is required")
	}
	if !core.Visibility(c.LogVisibility).Valid() {
		return fmt.Errorf("unknown log_visibility %q (want always, errorsOnly, or never)", c.LogVisibility)
	}
	for key := range c.PlatformPatterns {
		if !platformKeys[key] {
			return fmt.Errorf("unknown platform_patterns key %q", key)
		}
	}
	return nil
}

// Visibility returns the typed log visibility policy.
func (c *Config) Visibility() core.Visibility {
	return core.Visibility(c.LogVisibility)
}

// ToPlatformPatterns merges configured overrides onto the default platform
// pass table.
func (c *Config) ToPlatformPatterns() core.PlatformPatterns {
	pats := core.DefaultPlatformPatterns()
	for key, re := range c.PlatformPatterns {
		switch key {
		case "windows":
			pats.Windows = re
		case "meadow":
			pats.Meadow = re
		case "carbon":
			pats.Carbon = re
		case "cocoa":
			pats.Cocoa = re
		case "linux":
			pats.Linux = re
		case "bsd":
			pats.BSD = re
		case "nw":
			pats.NoWin = re
		}
	}
	return pats
}
