// Copyright 2025 Mike-CZ
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "gasmon.config"

const DefaultShutdownTimeout = "30s"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

// WithdrawalMode selects how provider confirmations are resolved
type WithdrawalMode string

const (
	// WithdrawalModeSingle requires every confirmation to carry the same amount
	WithdrawalModeSingle WithdrawalMode = "single"
	// WithdrawalModeTally buckets confirmations by amount and pays the
	// first bucket to reach the confirmations limit
	WithdrawalModeTally WithdrawalMode = "tally"
)

// Valid returns true if the WithdrawalMode is a known valid mode
func (m WithdrawalMode) Valid() bool {
	switch m {
	case WithdrawalModeSingle, WithdrawalModeTally, "":
		return true
	default:
		return false
	}
}

type Config struct {
	DatabasePath       string         `yaml:"databasePath"                                        split_words:"true"`
	ListenAddress      string         `yaml:"listenAddress"                                       split_words:"true"`
	AdminAddress       string         `yaml:"adminAddress"                                        split_words:"true"`
	WithdrawalMode     WithdrawalMode `yaml:"withdrawalMode"     envconfig:"GASMON_WITHDRAWAL_MODE"`
	ShutdownTimeout    string         `yaml:"shutdownTimeout"                                     split_words:"true"`
	EpochsLimit        uint64         `yaml:"epochsLimit"                                         split_words:"true"`
	ConfirmationsLimit uint64         `yaml:"confirmationsLimit"                                  split_words:"true"`
	AllowedDeviation   uint64         `yaml:"allowedDeviation"                                    split_words:"true"`
	InitialEpoch       uint64         `yaml:"initialEpoch"                                        split_words:"true"`
	Tracing            bool           `yaml:"tracing"`
	TracingStdout      bool           `yaml:"tracingStdout"                                       split_words:"true"`
}

var globalConfig = &Config{
	DatabasePath:       "",
	ListenAddress:      ":8080",
	WithdrawalMode:     WithdrawalModeSingle,
	ShutdownTimeout:    DefaultShutdownTimeout,
	EpochsLimit:        0,
	ConfirmationsLimit: 1,
	AllowedDeviation:   0,
	InitialEpoch:       1,
}

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.gasmon/gasmon.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".gasmon", "gasmon.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/gasmon/gasmon.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/gasmon/gasmon.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	err := envconfig.Process("gasmon", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}

	// Validate and default withdrawal mode
	if !globalConfig.WithdrawalMode.Valid() {
		return nil, fmt.Errorf(
			"invalid withdrawalMode: %q (must be 'single' or 'tally')",
			globalConfig.WithdrawalMode,
		)
	}
	if globalConfig.WithdrawalMode == "" {
		globalConfig.WithdrawalMode = WithdrawalModeSingle
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}
