// Package rsyncdconfig loads the daemon's TOML configuration file:
// global listener settings plus a table of modules (spec.md §6
// "Configuration (daemon)"). Grounded on the teacher's rsyncd.Module
// toml-tagged struct and internal/maincmd.go's FromFile/FromDefaultFiles
// calling convention, using the same github.com/BurntSushi/toml library
// the teacher depends on.
package rsyncdconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/syncwire/rsync/rsyncd"
)

// Listener describes one daemon listen address (spec.md §4.8
// run_daemon_accept).
type Listener struct {
	Address string `toml:"address"`
	Port    int    `toml:"port"`
}

// Config is the parsed daemon configuration file.
type Config struct {
	Listeners []Listener      `toml:"listener"`
	PidFile   string          `toml:"pid_file"`
	LogFile   string          `toml:"log_file"`
	MotdFile  string          `toml:"motd_file"`
	Modules   []rsyncd.Module `toml:"module"`
}

// defaultConfigPaths mirrors upstream rsync's daemon config search order:
// an explicit /etc path first, then a per-user fallback.
func defaultConfigPaths() []string {
	paths := []string{"/etc/rsyncd.toml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "rsyncd.toml"))
	}
	return paths
}

// FromFile parses the TOML configuration at path.
func FromFile(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("rsyncdconfig: parsing %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromDefaultFiles tries each of the default config file locations in
// turn, returning the first one found and its path.
func FromDefaultFiles() (*Config, string, error) {
	for _, path := range defaultConfigPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := FromFile(path)
		return cfg, path, err
	}
	return nil, "", fmt.Errorf("rsyncdconfig: no configuration file found in %v", defaultConfigPaths())
}

func validate(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Modules))
	for _, mod := range cfg.Modules {
		if mod.Name == "" {
			return fmt.Errorf("rsyncdconfig: module has no name")
		}
		if seen[mod.Name] {
			return fmt.Errorf("rsyncdconfig: duplicate module name %q", mod.Name)
		}
		seen[mod.Name] = true
		if mod.Path == "" || !filepath.IsAbs(mod.Path) {
			return fmt.Errorf("rsyncdconfig: module %q: path must be an absolute path", mod.Name)
		}
		if len(mod.AuthUsers) > 0 && mod.SecretsFile == "" {
			return fmt.Errorf("rsyncdconfig: module %q: auth_users set without secrets_file", mod.Name)
		}
	}
	return nil
}
