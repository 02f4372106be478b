// Package config provides shared configuration functionality using Viper
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthNone  AuthMode = "none"
	AuthToken AuthMode = "token"
)

// SupervisorConfig controls how the caw worker is spawned and probed.
type SupervisorConfig struct {
	WorkerProcess   string        `mapstructure:"worker_process"`
	Port            int           `mapstructure:"port"`
	HealthPath      string        `mapstructure:"health_path"`
	ProbeTimeout    time.Duration `mapstructure:"probe_timeout"`
	StartAttempts   int           `mapstructure:"start_attempts"`
	StartInterval   time.Duration `mapstructure:"start_interval"`
	RestartAttempts int           `mapstructure:"restart_attempts"`
	RestartInterval time.Duration `mapstructure:"restart_interval"`
	SettleDelay     time.Duration `mapstructure:"settle_delay"`
	// DBPath overrides the resolved workflows database path when set.
	DBPath string `mapstructure:"db_path"`
}

// Endpoint returns the worker health endpoint derived from port and path.
func (c SupervisorConfig) Endpoint() string {
	return fmt.Sprintf("http://localhost:%d%s", c.Port, c.HealthPath)
}

type ControlConfig struct {
	Port        int      `mapstructure:"port"`
	Hostname    string   `mapstructure:"hostname"`
	AuthMode    AuthMode `mapstructure:"auth_mode"`
	TokenSecret string   `mapstructure:"token_secret"`
}

type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Config holds common configuration values shared across the desktop shell
type Config struct {
	// Basic configuration
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`

	Supervisor SupervisorConfig `mapstructure:"supervisor"`
	Control    ControlConfig    `mapstructure:"control"`
	Journal    JournalConfig    `mapstructure:"journal"`
}

func setSupervisorDefaults(v *viper.Viper) {
	v.SetDefault("supervisor.worker_process", "caw")
	v.SetDefault("supervisor.port", 3100)
	v.SetDefault("supervisor.health_path", "/health")
	v.SetDefault("supervisor.probe_timeout", 2*time.Second)
	v.SetDefault("supervisor.start_attempts", 60)
	v.SetDefault("supervisor.start_interval", 500*time.Millisecond)
	v.SetDefault("supervisor.restart_attempts", 20)
	v.SetDefault("supervisor.restart_interval", 500*time.Millisecond)
	v.SetDefault("supervisor.settle_delay", 500*time.Millisecond)
	v.SetDefault("supervisor.db_path", "")
}

func setControlDefaults(v *viper.Viper) {
	v.SetDefault("control.port", 3101)
	v.SetDefault("control.hostname", "127.0.0.1")
	v.SetDefault("control.auth_mode", AuthNone)
	v.SetDefault("control.token_secret", "")
}

func setJournalDefaults(v *viper.Viper) {
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", "")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")

	setSupervisorDefaults(v)
	setControlDefaults(v)
	setJournalDefaults(v)
}

func ConfigureViper() {
	// We can pull config from env variables with a `CAW_` prefix if we want
	viper.SetEnvPrefix("CAW")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
}

func init() {
	ConfigureViper()
}

// Load loads shared configuration using Viper with defaults
func Load(configPath string, overrideStr string) *Config {
	setDefaults(viper.GetViper())

	// If a custom config path is provided, use it
	if configPath != "" {
		viper.SetConfigFile(configPath)
	}

	err := viper.ReadInConfig()
	if err != nil {
		// Ignore file not found errors (config is optional)
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			slog.Error("Failed to read config file", "error", err, "config_file", viper.ConfigFileUsed())
			os.Exit(1)
		}
		slog.Info("No config file found, using defaults")
	} else {
		slog.Info("Loaded config file", "path", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		panic(fmt.Errorf("unable to unmarshal config: %w", err))
	}

	// Process override flag if provided (after loading config to ensure highest precedence)
	if overrideStr != "" {
		// Split into key-value pairs
		pairs := strings.Split(overrideStr, ",")
		for _, pair := range pairs {
			// Split into key and value
			parts := strings.SplitN(pair, ":", 2)
			if len(parts) != 2 {
				slog.Error("Invalid override format", "pair", pair, "expected", "key:value")
				os.Exit(1)
			}
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			viper.Set(key, value)
		}
		// Reload config struct to pick up overrides
		if err := viper.Unmarshal(&cfg); err != nil {
			slog.Error("Failed to apply overrides to config", "error", err)
			os.Exit(1)
		}
	}

	return &cfg
}

// BindFlags binds pflags to viper keys. bindFlags is a map of pflag names to viper keys.
func BindFlags(bindFlags map[string]string) {
	for flagName, viperKey := range bindFlags {
		if err := viper.BindPFlag(viperKey, pflag.Lookup(flagName)); err != nil {
			slog.Error("Failed to bind flag", "flag", flagName, "error", err)
			os.Exit(1)
		}
	}
}
