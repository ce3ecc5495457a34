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

package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Mike-CZ/ftm-gas-monetization/audit"
	"github.com/Mike-CZ/ftm-gas-monetization/auth"
	"github.com/Mike-CZ/ftm-gas-monetization/epoch"
	"github.com/Mike-CZ/ftm-gas-monetization/funding"
	"github.com/Mike-CZ/ftm-gas-monetization/registry"
	"github.com/Mike-CZ/ftm-gas-monetization/treasury"
	"github.com/Mike-CZ/ftm-gas-monetization/withdrawal"
)

// CallerHeader carries the authenticated caller address. The deployment is
// fronted by an authenticating proxy that sets it; the API itself does no
// signature verification.
const CallerHeader = "X-Caller-Address"

type Config struct {
	ListenAddress string
	PromRegistry  prometheus.Registerer
}

// Server is the REST API exposing the registry, funding, and withdrawal
// operations.
type Server struct {
	config     Config
	logger     *slog.Logger
	registry   *registry.Registry
	funding    *funding.Tracker
	engine     *withdrawal.Engine
	authReg    *auth.Registry
	treasury   *treasury.Treasury
	journal    *audit.Journal
	epochs     epoch.Source
	httpServer *http.Server
	mu         sync.Mutex
}

func New(
	cfg Config,
	projectRegistry *registry.Registry,
	fundingTracker *funding.Tracker,
	engine *withdrawal.Engine,
	authRegistry *auth.Registry,
	funds *treasury.Treasury,
	journal *audit.Journal,
	epochs epoch.Source,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8080"
	}
	return &Server{
		config:   cfg,
		logger:   logger,
		registry: projectRegistry,
		funding:  fundingTracker,
		engine:   engine,
		authReg:  authRegistry,
		treasury: funds,
		journal:  journal,
		epochs:   epochs,
	}
}

// Start starts the HTTP server in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/v1/projects", s.handleAddProject)
	mux.HandleFunc("GET /api/v1/projects/{id}", s.handleGetProject)
	mux.HandleFunc(
		"POST /api/v1/projects/{id}/suspend",
		s.handleSuspendProject,
	)
	mux.HandleFunc(
		"POST /api/v1/projects/{id}/enable",
		s.handleEnableProject,
	)
	mux.HandleFunc(
		"POST /api/v1/projects/{id}/contracts",
		s.handleAddContract,
	)
	mux.HandleFunc(
		"DELETE /api/v1/projects/{id}/contracts/{address}",
		s.handleRemoveContract,
	)
	mux.HandleFunc(
		"PUT /api/v1/projects/{id}/metadata",
		s.handleUpdateMetadata,
	)
	mux.HandleFunc(
		"PUT /api/v1/projects/{id}/owner",
		s.handleUpdateOwner,
	)
	mux.HandleFunc(
		"PUT /api/v1/projects/{id}/recipient",
		s.handleUpdateRecipient,
	)
	mux.HandleFunc(
		"GET /api/v1/contracts/{address}",
		s.handleContractOwner,
	)
	mux.HandleFunc("GET /api/v1/funds", s.handleFundingState)
	mux.HandleFunc("POST /api/v1/funds", s.handleAddFunds)
	mux.HandleFunc("POST /api/v1/funds/withdraw", s.handleWithdrawFunds)
	mux.HandleFunc(
		"POST /api/v1/funds/withdraw-all",
		s.handleWithdrawAllFunds,
	)
	mux.HandleFunc(
		"POST /api/v1/projects/{id}/withdrawal",
		s.handleRequestWithdrawal,
	)
	mux.HandleFunc(
		"POST /api/v1/projects/{id}/withdrawal/confirm",
		s.handleConfirmWithdrawal,
	)
	mux.HandleFunc(
		"GET /api/v1/projects/{id}/withdrawal",
		s.handlePendingWithdrawal,
	)
	mux.HandleFunc("GET /api/v1/settings", s.handleGetSettings)
	mux.HandleFunc(
		"PUT /api/v1/settings/epochs-limit",
		s.handleUpdateEpochsLimit,
	)
	mux.HandleFunc(
		"PUT /api/v1/settings/confirmations-limit",
		s.handleUpdateConfirmationsLimit,
	)
	mux.HandleFunc(
		"PUT /api/v1/settings/deviation",
		s.handleUpdateDeviation,
	)
	mux.HandleFunc("POST /api/v1/roles/grant", s.handleGrantRole)
	mux.HandleFunc("POST /api/v1/roles/revoke", s.handleRevokeRole)
	mux.HandleFunc("GET /api/v1/audit", s.handleAuditRecords)
	mux.HandleFunc("GET /api/v1/epoch", s.handleGetEpoch)
	mux.HandleFunc("PUT /api/v1/epoch", s.handleSetEpoch)
	if s.config.PromRegistry != nil {
		if gatherer, ok := s.config.PromRegistry.(prometheus.Gatherer); ok {
			mux.Handle(
				"GET /metrics",
				promhttp.HandlerFor(
					gatherer,
					promhttp.HandlerOpts{},
				),
			)
		}
	}

	server := &http.Server{
		Addr:              s.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
	}
	s.httpServer = server
	s.mu.Unlock()

	if err := s.startServer(server); err != nil {
		s.mu.Lock()
		s.httpServer = nil
		s.mu.Unlock()
		return err
	}

	s.logger.Info(
		"API listener started on " + s.config.ListenAddress,
	)

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		srv := s.httpServer
		s.httpServer = nil
		s.mu.Unlock()
		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				5*time.Second,
			)
			defer cancel()
			//nolint:errcheck
			srv.Shutdown(shutdownCtx)
		}
	}()
	return nil
}

// startServer binds the listener synchronously so startup errors surface to
// the caller, then serves in the background.
func (s *Server) startServer(server *http.Server) error {
	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}
	go func() {
		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(
				"API server failed",
				"error", err,
			)
		}
	}()
	return nil
}
