// config.go — Launcher configuration file loading.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/hamishmack/daedalus/internal/supervisor"
)

// launcherConfig is the YAML configuration for one launcher instance.
// Timeouts are integers in milliseconds.
type launcherConfig struct {
	NodePath    string   `mapstructure:"node_path"`
	NodeArgs    []string `mapstructure:"node_args"`
	LogFilePath string   `mapstructure:"log_file_path"`
	TLSPath     string   `mapstructure:"tls_path"`
	Network     string   `mapstructure:"network"`

	StartupTimeoutMs  int `mapstructure:"startup_timeout"`
	ShutdownTimeoutMs int `mapstructure:"shutdown_timeout"`
	KillTimeoutMs     int `mapstructure:"kill_timeout"`
	UpdateTimeoutMs   int `mapstructure:"update_timeout"`
	FaultTimeoutMs    int `mapstructure:"fault_timeout"`
	StartupMaxRetries int `mapstructure:"startup_max_retries"`

	StatePath   string `mapstructure:"state_path"`
	MetricsAddr string `mapstructure:"metrics_addr"`

	LauncherLog struct {
		Path       string `mapstructure:"path"`
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
		Debug      bool   `mapstructure:"debug"`
	} `mapstructure:"launcher_log"`
}

func loadConfig(path string) (*launcherConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("startup_timeout", 60000)
	v.SetDefault("shutdown_timeout", 60000)
	v.SetDefault("kill_timeout", 15000)
	v.SetDefault("update_timeout", 60000)
	v.SetDefault("startup_max_retries", 5)
	v.SetDefault("state_path", "launcher-state.db")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg launcherConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *launcherConfig) supervisorConfig() supervisor.Config {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	return supervisor.Config{
		NodePath:          c.NodePath,
		NodeArgs:          c.NodeArgs,
		LogFilePath:       c.LogFilePath,
		TLSPath:           c.TLSPath,
		NetworkName:       c.Network,
		StartupTimeout:    ms(c.StartupTimeoutMs),
		ShutdownTimeout:   ms(c.ShutdownTimeoutMs),
		KillTimeout:       ms(c.KillTimeoutMs),
		UpdateTimeout:     ms(c.UpdateTimeoutMs),
		FaultTimeout:      ms(c.FaultTimeoutMs),
		StartupMaxRetries: c.StartupMaxRetries,
	}
}
