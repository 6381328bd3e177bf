// Package config provides configuration management for carrybak using Viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/carrybak/carrybak/internal/paths"
)

// Config represents the top-level configuration structure.
type Config struct {
	Version int `mapstructure:"version" yaml:"version"`

	// Keep is the default retention count for backup runs per profile.
	Keep int `mapstructure:"keep" yaml:"keep"`

	// MinFreeGB is the minimum free space (GiB, integer floor) a destination
	// must offer before any transfer starts.
	MinFreeGB int `mapstructure:"min_free_gb" yaml:"min_free_gb"`

	// MountRoots overrides the directories scanned for destinations.
	// Empty means the per-user defaults (/run/media/<user>, /media/<user>).
	MountRoots []string `mapstructure:"mount_roots" yaml:"mount_roots"`

	// AssumeYes suppresses restore confirmation prompts entirely, for
	// unattended hosts. The unguarded warning is still printed.
	AssumeYes bool `mapstructure:"assume_yes" yaml:"assume_yes"`

	// Tools configures external command names and their exit-code sets.
	Tools ToolsConfig `mapstructure:"tools" yaml:"tools"`

	// Log bounds the size of per-run log files.
	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// ToolsConfig names the external tools and the exit codes that are treated
// as benign. Upstream tools may renumber their codes, so the sets are
// configuration rather than constants.
type ToolsConfig struct {
	Rsync string `mapstructure:"rsync" yaml:"rsync"`
	Tar   string `mapstructure:"tar" yaml:"tar"`
	Pigz  string `mapstructure:"pigz" yaml:"pigz"`
	Sudo  string `mapstructure:"sudo" yaml:"sudo"`

	// RsyncSoftCodes are rsync exit codes treated as partial, benign
	// transfers (files vanished or changed mid-copy).
	RsyncSoftCodes []int `mapstructure:"rsync_soft_codes" yaml:"rsync_soft_codes"`

	// TarWarnCodes are tar exit codes treated as completed-with-warnings.
	TarWarnCodes []int `mapstructure:"tar_warn_codes" yaml:"tar_warn_codes"`
}

// LogConfig bounds per-run log files so long-lived destinations do not fill
// up with log data.
type LogConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes" yaml:"max_bytes"`
	MaxLines int   `mapstructure:"max_lines" yaml:"max_lines"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix("CARRYBAK")
	viper.AutomaticEnv()

	viper.SetDefault("version", 1)
	viper.SetDefault("keep", 5)
	viper.SetDefault("min_free_gb", 20)
	viper.SetDefault("assume_yes", false)
	viper.SetDefault("tools.rsync", "rsync")
	viper.SetDefault("tools.tar", "tar")
	viper.SetDefault("tools.pigz", "pigz")
	viper.SetDefault("tools.sudo", "sudo")
	viper.SetDefault("tools.rsync_soft_codes", []int{23, 24})
	viper.SetDefault("tools.tar_warn_codes", []int{1})
	viper.SetDefault("log.max_bytes", int64(5*1024*1024))
	viper.SetDefault("log.max_lines", 5000)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found
// (when path is empty).
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// If user specified a path, this is an error
			if path != "" {
				return nil, fmt.Errorf("config file not found at %s: %w", path, err)
			}
			// Otherwise (implicit load), it's fine to use defaults
		} else {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
