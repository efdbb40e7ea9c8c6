// Copyright (c) 2025-2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config defines the global configuration structure
type Config struct {
	Serial     SerialConfig     `mapstructure:"serial"`
	Protocol   ProtocolConfig   `mapstructure:"protocol"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Emulator   EmulatorConfig   `mapstructure:"emulator"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// LogConfig defines logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // Log file path
}

// SerialConfig defines the host side of the pack UART
type SerialConfig struct {
	Device   string        `mapstructure:"device"` // e.g. /dev/ttyUSB0, or "local" for the built-in emulator
	BaudRate int           `mapstructure:"baud_rate"`
	DataBits int           `mapstructure:"data_bits"`
	Parity   string        `mapstructure:"parity"`
	StopBits int           `mapstructure:"stop_bits"`
	Timeout  time.Duration `mapstructure:"timeout"` // per blocking read
}

// ProtocolConfig defines handshake timing and frame logging
type ProtocolConfig struct {
	ResetAttempts int           `mapstructure:"reset_attempts"`
	ResetHold     time.Duration `mapstructure:"reset_hold"`
	ResetBackoff  time.Duration `mapstructure:"reset_backoff"`
	ResetSettle   time.Duration `mapstructure:"reset_settle"`
	RefreshPause  time.Duration `mapstructure:"refresh_pause"`
	LogTx         bool          `mapstructure:"log_tx"`
	LogRx         bool          `mapstructure:"log_rx"`
}

// SimulationConfig defines the charger simulation defaults
type SimulationConfig struct {
	Duration      time.Duration `mapstructure:"duration"`
	Profile       string        `mapstructure:"profile"` // Gentle, Normal, Aggressive, Custom
	Baud          int           `mapstructure:"baud"`    // simulated charger baud, selects keepalive interval
	CutoffCurrent int           `mapstructure:"cutoff_current"`
	MaxCurrent    int           `mapstructure:"max_current"`
}

// EmulatorConfig defines the virtual pack
type EmulatorConfig struct {
	Device           string            `mapstructure:"device"`
	RequireLineReset bool              `mapstructure:"require_line_reset"`
	Persistence      PersistenceConfig `mapstructure:"persistence"`
}

// PersistenceConfig defines register image storage
type PersistenceConfig struct {
	Type string `mapstructure:"type"` // "memory", "file", "mmap"
	Path string `mapstructure:"path"` // File path for "file/mmap" type
}

// MetricsConfig defines where protocol counters are written
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"` // node_exporter textfile, empty disables
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serial.baud_rate", 4800)
	v.SetDefault("serial.data_bits", 8)
	v.SetDefault("serial.parity", "N")
	v.SetDefault("serial.stop_bits", 2)
	v.SetDefault("serial.timeout", 1200*time.Millisecond)

	v.SetDefault("protocol.reset_attempts", 3)
	v.SetDefault("protocol.reset_hold", 300*time.Millisecond)
	v.SetDefault("protocol.reset_backoff", 50*time.Millisecond)
	v.SetDefault("protocol.reset_settle", 10*time.Millisecond)
	v.SetDefault("protocol.refresh_pause", 100*time.Millisecond)
	v.SetDefault("protocol.log_tx", true)
	v.SetDefault("protocol.log_rx", true)

	v.SetDefault("simulation.duration", 60*time.Second)
	v.SetDefault("simulation.profile", "Normal")
	v.SetDefault("simulation.baud", 4800)

	v.SetDefault("emulator.persistence.type", "memory")

	v.SetDefault("log.level", "info")
}

// BindFlags registers the command-line overrides on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "Configuration file path.")
	fs.StringP("port", "p", "", "Serial port device name ('local' for the built-in emulator).")
	fs.StringP("log-level", "v", "", "Log verbosity level (debug, info, warn, error).")
	fs.StringP("log-file", "L", "", "Log file name ('-' for logging to STDERR only).")
	fs.Bool("log-tx", true, "Log transmitted frames.")
	fs.Bool("log-rx", true, "Log received frames.")
	fs.String("metrics-textfile", "", "Write protocol counters to this textfile on exit.")
}

// LoadConfig loads configuration from file, then applies flags from fs.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	bindings := map[string]string{
		"serial.device":    "port",
		"log.level":        "log-level",
		"log.file":         "log-file",
		"protocol.log_tx":  "log-tx",
		"protocol.log_rx":  "log-rx",
		"metrics.textfile": "metrics-textfile",
	}
	if fs != nil {
		for key, name := range bindings {
			f := fs.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	configFile := ""
	if fs != nil {
		configFile, _ = fs.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/m18link/")
		v.AddConfigPath("$HOME/.m18link")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// Flags alone are a valid configuration.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	fixupSerial(&config.Serial)
	fixupProtocol(&config.Protocol)

	return &config, nil
}

func fixupSerial(s *SerialConfig) {
	s.Parity = strings.ToUpper(s.Parity)
	if s.BaudRate == 0 {
		s.BaudRate = 4800
	}
	if s.DataBits == 0 {
		s.DataBits = 8
	}
	if s.StopBits == 0 {
		s.StopBits = 2
	}
	if s.Timeout == 0 {
		s.Timeout = 1200 * time.Millisecond
	}
}

func fixupProtocol(p *ProtocolConfig) {
	if p.ResetAttempts <= 0 {
		p.ResetAttempts = 3
	}
}
