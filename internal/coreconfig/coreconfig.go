// Package coreconfig loads runtime-substrate tunables the way the
// teacher's internal/config.SimpleStrongConsistencyConfigManager loads
// its YAML configuration: viper-backed, safe defaults when no file is
// found, explicit search paths when no path is given. It intentionally
// configures only the substrate itself (live clock queue capacity, the
// bus's pending-request warning threshold, logging) and nothing the spec's Non-goals exclude (no DB
// DSNs, no venue credentials, no persistence).
package coreconfig

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the tunables owned by the core runtime substrate.
type Config struct {
	// LogLevel is one of "debug", "info", "warning", "error".
	LogLevel string `mapstructure:"log_level"`
	// LogColor enables ANSI color codes on the level field of each JSON
	// log line.
	LogColor bool `mapstructure:"log_color"`
	// LiveClockQueueCapacity bounds the LiveClock's background timer
	// dispatch queue (§5: "a bounded queue consumed by the main dispatch
	// loop").
	LiveClockQueueCapacity int `mapstructure:"live_clock_queue_capacity"`
	// BusPendingWarnThreshold is the size of MessageBus.pending at which a
	// warning is logged, guarding against unanswered requests piling up
	// with no built-in deadline (§5).
	BusPendingWarnThreshold int `mapstructure:"bus_pending_warn_threshold"`
}

func defaults() Config {
	return Config{
		LogLevel:                "info",
		LogColor:                false,
		LiveClockQueueCapacity:  4096,
		BusPendingWarnThreshold: 10_000,
	}
}

// Manager loads and holds the runtime-substrate configuration.
type Manager struct {
	configPath string
	logger     *zap.Logger
	mutex      sync.RWMutex
	config     Config
	viper      *viper.Viper
}

// New creates a config manager. configPath may be empty, in which case
// the manager searches "." and "./configs" for "nautilus-core.yaml".
func New(configPath string, logger *zap.Logger) *Manager {
	return &Manager{
		configPath: configPath,
		logger:     logger.Named("coreconfig"),
		config:     defaults(),
		viper:      viper.New(),
	}
}

// Load reads the configuration file, falling back to defaults when none
// is found. Never returns an error for a missing file; only for a
// malformed one.
func (m *Manager) Load() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.configPath != "" {
		if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
			m.logger.Warn("configuration file not found, using defaults", zap.String("path", m.configPath))
			m.config = defaults()
			return nil
		}
		m.viper.SetConfigFile(m.configPath)
	} else {
		m.viper.SetConfigName("nautilus-core")
		m.viper.SetConfigType("yaml")
		m.viper.AddConfigPath(".")
		m.viper.AddConfigPath("./configs")
	}

	for k, v := range map[string]interface{}{
		"log_level":                  defaults().LogLevel,
		"log_color":                  defaults().LogColor,
		"live_clock_queue_capacity":  defaults().LiveClockQueueCapacity,
		"bus_pending_warn_threshold": defaults().BusPendingWarnThreshold,
	} {
		m.viper.SetDefault(k, v)
	}

	if err := m.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			m.logger.Warn("configuration file not found, using defaults")
			m.config = defaults()
			return nil
		}
		return fmt.Errorf("coreconfig: failed to read configuration: %w", err)
	}

	var cfg Config
	if err := m.viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("coreconfig: failed to unmarshal configuration: %w", err)
	}
	m.config = cfg
	m.logger.Info("configuration loaded", zap.String("path", m.viper.ConfigFileUsed()))
	return nil
}

// Get returns a snapshot of the currently loaded configuration.
func (m *Manager) Get() Config {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.config
}
