package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load("", "")

	assert.Equal(t, "info", cfg.LogLevel)

	assert.Equal(t, "caw", cfg.Supervisor.WorkerProcess)
	assert.Equal(t, 3100, cfg.Supervisor.Port)
	assert.Equal(t, "/health", cfg.Supervisor.HealthPath)
	assert.Equal(t, 60, cfg.Supervisor.StartAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Supervisor.StartInterval)
	assert.Equal(t, 20, cfg.Supervisor.RestartAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Supervisor.SettleDelay)

	assert.Equal(t, 3101, cfg.Control.Port)
	assert.Equal(t, "127.0.0.1", cfg.Control.Hostname)
	assert.Equal(t, AuthNone, cfg.Control.AuthMode)

	assert.True(t, cfg.Journal.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	cfg := Load("", "control.port:9000,log_level:debug")

	assert.Equal(t, 9000, cfg.Control.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestSupervisorEndpoint(t *testing.T) {
	c := SupervisorConfig{Port: 3100, HealthPath: "/health"}
	assert.Equal(t, "http://localhost:3100/health", c.Endpoint())
}
