// config.go — Node launch configuration.
package supervisor

import (
	"fmt"
	"time"
)

// Config describes how to launch and supervise one node process. It is
// immutable after the first successful Start.
type Config struct {
	// NodePath is the node executable.
	NodePath string
	// NodeArgs is the ordered argument vector.
	NodeArgs []string
	// LogFilePath receives the node's stdout and stderr, append-only.
	LogFilePath string
	// TLSPath is the directory under which the node materializes
	// client/ca.crt, client/client.key and client/client.pem.
	TLSPath string
	// NetworkName qualifies the persisted-pid key so launchers for
	// different networks do not reap each other's nodes.
	NetworkName string

	StartupTimeout  time.Duration
	ShutdownTimeout time.Duration
	KillTimeout     time.Duration
	UpdateTimeout   time.Duration
	// FaultTimeout bounds fault-injection acknowledgement waits. Zero
	// falls back to StartupTimeout.
	FaultTimeout time.Duration

	// StartupMaxRetries caps unforced starts between successful runs.
	StartupMaxRetries int
}

// Validate rejects configs the supervisor cannot act on.
func (c *Config) Validate() error {
	if c.NodePath == "" {
		return fmt.Errorf("config: node path required")
	}
	if c.LogFilePath == "" {
		return fmt.Errorf("config: log file path required")
	}
	if c.TLSPath == "" {
		return fmt.Errorf("config: tls path required")
	}
	for name, d := range map[string]time.Duration{
		"startup_timeout":  c.StartupTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
		"kill_timeout":     c.KillTimeout,
		"update_timeout":   c.UpdateTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("config: %s must not be negative", name)
		}
	}
	if c.StartupMaxRetries < 0 {
		return fmt.Errorf("config: startup_max_retries must not be negative")
	}
	return nil
}

func (c *Config) faultTimeout() time.Duration {
	if c.FaultTimeout > 0 {
		return c.FaultTimeout
	}
	return c.StartupTimeout
}

// pidKey is the persistence key for the last observed node pid,
// qualified by network so deployments stay isolated.
func (c *Config) pidKey() string {
	if c.NetworkName == "" {
		return "previous_cardano_pid"
	}
	return "previous_cardano_pid." + c.NetworkName
}
