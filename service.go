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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Mike-CZ/ftm-gas-monetization/api"
	"github.com/Mike-CZ/ftm-gas-monetization/audit"
	"github.com/Mike-CZ/ftm-gas-monetization/auth"
	"github.com/Mike-CZ/ftm-gas-monetization/epoch"
	"github.com/Mike-CZ/ftm-gas-monetization/event"
	"github.com/Mike-CZ/ftm-gas-monetization/funding"
	"github.com/Mike-CZ/ftm-gas-monetization/registry"
	"github.com/Mike-CZ/ftm-gas-monetization/storage"
	"github.com/Mike-CZ/ftm-gas-monetization/treasury"
	"github.com/Mike-CZ/ftm-gas-monetization/withdrawal"
)

// Service assembles the registry, funding tracker, and withdrawal engine
// over shared storage and exposes them through the REST API.
type Service struct {
	config        Config
	eventBus      *event.EventBus
	store         *storage.Store
	treasury      *treasury.Treasury
	authReg       *auth.Registry
	registry      *registry.Registry
	funding       *funding.Tracker
	engine        *withdrawal.Engine
	journal       *audit.Journal
	apiServer     *api.Server
	epochs        epoch.Source
	apiCancel     context.CancelFunc
	shutdownFuncs []func(context.Context) error
	ready         chan struct{}
	done          chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	epochs := cfg.epochSource
	if epochs == nil {
		epochs = epoch.NewManual(1)
	}
	return &Service{
		config:   cfg,
		eventBus: event.NewEventBus(cfg.promRegistry, cfg.logger),
		epochs:   epochs,
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

func (s *Service) Run() error {
	// Configure tracing
	if s.config.tracing {
		if err := s.setupTracing(); err != nil {
			return err
		}
	}
	// Open storage
	store, err := storage.New(s.config.dataDir, s.config.logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	s.store = store
	// Open audit journal and subscribe it to all domain events
	journal, err := audit.New(
		s.config.dataDir,
		s.eventBus,
		s.config.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to open audit journal: %w", err)
	}
	s.journal = journal
	s.journal.Watch(
		registry.ProjectAddedEventType,
		registry.ProjectSuspendedEventType,
		registry.ProjectEnabledEventType,
		registry.ContractAddedEventType,
		registry.ContractRemovedEventType,
		registry.MetadataURIUpdatedEventType,
		registry.RewardsRecipientUpdatedEventType,
		registry.OwnerUpdatedEventType,
		funding.FundsAddedEventType,
		funding.FundsWithdrawnEventType,
		withdrawal.RequestedEventType,
		withdrawal.CompletedEventType,
		withdrawal.CanceledEventType,
		withdrawal.AmountMismatchEventType,
		withdrawal.EpochsLimitUpdatedEventType,
		withdrawal.ConfirmationsLimitUpdatedEventType,
		withdrawal.DeviationUpdatedEventType,
		auth.RoleGrantedEventType,
		auth.RoleRevokedEventType,
	)
	// Assemble components
	s.treasury = treasury.New(
		s.store,
		s.config.logger,
		s.config.promRegistry,
	)
	s.authReg = auth.NewRegistry(s.store, s.eventBus, s.config.logger)
	s.registry = registry.New(
		s.store,
		s.authReg,
		s.epochs,
		s.eventBus,
		s.config.logger,
		s.config.promRegistry,
	)
	s.funding = funding.New(
		s.store,
		s.treasury,
		s.authReg,
		s.epochs,
		s.eventBus,
		s.config.logger,
		s.config.promRegistry,
	)
	engine, err := withdrawal.NewEngine(
		s.store,
		s.treasury,
		s.authReg,
		s.epochs,
		s.eventBus,
		s.config.withdrawalMode,
		s.config.logger,
		s.config.promRegistry,
	)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal engine: %w", err)
	}
	s.engine = engine
	// Seed admin role and consensus parameters
	if err := s.authReg.Seed(
		auth.RoleAdmin,
		s.config.adminAddress,
	); err != nil {
		return fmt.Errorf("failed to seed admin role: %w", err)
	}
	if err := s.engine.SeedSettings(
		s.config.epochsLimit,
		s.config.confirmationsLimit,
		s.config.allowedDeviation,
	); err != nil {
		return fmt.Errorf("failed to seed withdrawal settings: %w", err)
	}
	// Start REST API
	s.apiServer = api.New(
		api.Config{
			ListenAddress: s.config.listenAddress,
			PromRegistry:  s.config.promRegistry,
		},
		s.registry,
		s.funding,
		s.engine,
		s.authReg,
		s.treasury,
		s.journal,
		s.epochs,
		s.config.logger,
	)
	apiCtx, apiCancel := context.WithCancel(context.Background())
	s.apiCancel = apiCancel
	if err := s.apiServer.Start(apiCtx); err != nil {
		apiCancel()
		return fmt.Errorf("failed to start API: %w", err)
	}

	close(s.ready)

	// Wait for shutdown signal
	<-s.done
	return nil
}

// Ready returns a channel that is closed once Run has assembled the service
// and the API server is listening.
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// Registry returns the project registry. It is nil until Run has assembled
// the service.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// Engine returns the withdrawal engine. It is nil until Run has assembled
// the service.
func (s *Service) Engine() *withdrawal.Engine {
	return s.engine
}

func (s *Service) Stop() error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.shutdown()
	})
	return err
}

func (s *Service) shutdown() error {
	shutdownTimeout := 30 * time.Second
	if s.config.shutdownTimeout > 0 {
		shutdownTimeout = s.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	s.config.logger.Debug("starting graceful shutdown")

	// Stop accepting API requests first so no new mutations arrive
	if s.apiCancel != nil {
		s.apiCancel()
	}

	// Detach the audit journal from the bus before stopping it
	if s.journal != nil {
		if closeErr := s.journal.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("audit journal close: %w", closeErr),
			)
		}
	}

	// Call registered shutdown functions
	for _, fn := range s.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	s.shutdownFuncs = nil

	if s.eventBus != nil {
		s.eventBus.Stop()
	}

	if s.store != nil {
		if closeErr := s.store.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("storage close: %w", closeErr))
		}
	}

	s.config.logger.Debug("graceful shutdown complete")
	close(s.done)
	return err
}
