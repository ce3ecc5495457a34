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

package gasmon

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Mike-CZ/ftm-gas-monetization/epoch"
	"github.com/Mike-CZ/ftm-gas-monetization/withdrawal"
)

type Config struct {
	promRegistry       prometheus.Registerer
	logger             *slog.Logger
	epochSource        epoch.Source
	dataDir            string
	listenAddress      string
	adminAddress       string
	withdrawalMode     withdrawal.Mode
	epochsLimit        uint64
	confirmationsLimit uint64
	allowedDeviation   uint64
	tracing            bool
	tracingStdout      bool
	shutdownTimeout    time.Duration
}

// ConfigOptionFunc is a type that represents functions that modify the
// service config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new service config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:             slog.New(slog.NewJSONHandler(io.Discard, nil)),
		listenAddress:      ":8080",
		withdrawalMode:     withdrawal.ModeSingleValue,
		confirmationsLimit: 1,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c *Config) validate() error {
	if c.adminAddress == "" {
		return errors.New("no admin address configured")
	}
	if !c.withdrawalMode.Valid() {
		return withdrawal.ErrUnknownMode
	}
	if c.confirmationsLimit == 0 {
		return withdrawal.ErrZeroConfirmationsLimit
	}
	return nil
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithDataDir specifies the persistent data directory to use. The default is to store everything in memory
func WithDataDir(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithListenAddress specifies the REST API listen address. This defaults to :8080
func WithListenAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.listenAddress = address
	}
}

// WithAdminAddress specifies the address seeded with the admin role at startup
func WithAdminAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.adminAddress = address
	}
}

// WithEpochSource specifies the epoch source. This defaults to a manually
// driven source starting at epoch 1
func WithEpochSource(source epoch.Source) ConfigOptionFunc {
	return func(c *Config) {
		c.epochSource = source
	}
}

// WithWithdrawalMode specifies the consensus resolution mode
func WithWithdrawalMode(mode withdrawal.Mode) ConfigOptionFunc {
	return func(c *Config) {
		c.withdrawalMode = mode
	}
}

// WithEpochsLimit specifies the minimum epoch delta between a project's
// funded epoch and its next withdrawal
func WithEpochsLimit(limit uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.epochsLimit = limit
	}
}

// WithConfirmationsLimit specifies the number of matching confirmations
// required to resolve a withdrawal. This defaults to 1
func WithConfirmationsLimit(limit uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.confirmationsLimit = limit
	}
}

// WithAllowedDeviation specifies the tolerated confirmation overshoot in
// tally mode
func WithAllowedDeviation(deviation uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.allowedDeviation = deviation
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer for metrics
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. This defaults to 30s
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
