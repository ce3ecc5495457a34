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

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	gasmon "github.com/Mike-CZ/ftm-gas-monetization"
	"github.com/Mike-CZ/ftm-gas-monetization/epoch"
	"github.com/Mike-CZ/ftm-gas-monetization/internal/config"
	"github.com/Mike-CZ/ftm-gas-monetization/withdrawal"
)

func serveRun(_ *cobra.Command, _ []string, cfg *config.Config) {
	logger := commonRun()

	shutdownTimeout, err := time.ParseDuration(cfg.ShutdownTimeout)
	if err != nil {
		slog.Error("invalid shutdown timeout: " + err.Error())
		os.Exit(1)
	}

	svc, err := gasmon.New(gasmon.NewConfig(
		gasmon.WithLogger(logger),
		gasmon.WithDataDir(cfg.DatabasePath),
		gasmon.WithListenAddress(cfg.ListenAddress),
		gasmon.WithAdminAddress(cfg.AdminAddress),
		gasmon.WithEpochSource(epoch.NewManual(cfg.InitialEpoch)),
		gasmon.WithWithdrawalMode(withdrawal.Mode(cfg.WithdrawalMode)),
		gasmon.WithEpochsLimit(cfg.EpochsLimit),
		gasmon.WithConfirmationsLimit(cfg.ConfirmationsLimit),
		gasmon.WithAllowedDeviation(cfg.AllowedDeviation),
		gasmon.WithPrometheusRegistry(prometheus.DefaultRegisterer),
		gasmon.WithTracing(cfg.Tracing),
		gasmon.WithTracingStdout(cfg.TracingStdout),
		gasmon.WithShutdownTimeout(shutdownTimeout),
	))
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	// Stop the service on SIGINT/SIGTERM
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signalChan
		slog.Info("received signal: " + sig.String())
		if err := svc.Stop(); err != nil {
			slog.Error(err.Error())
		}
	}()

	if err := svc.Run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gas monetization service",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			serveRun(cmd, args, cfg)
		},
	}
	return cmd
}
