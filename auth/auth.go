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

package auth

import (
	"errors"
	"io"
	"log/slog"

	"github.com/Mike-CZ/ftm-gas-monetization/event"
	"github.com/Mike-CZ/ftm-gas-monetization/storage"
)

// Role is a named capability checked at the top of every mutating call
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleFunder          Role = "funder"
	RoleFundsManager    Role = "funds_manager"
	RoleProjectsManager Role = "projects_manager"
	RoleDataProvider    Role = "data_provider"
)

// Valid returns true when the role is one of the known role names
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFunder, RoleFundsManager,
		RoleProjectsManager, RoleDataProvider:
		return true
	default:
		return false
	}
}

// Authorizer answers "does caller hold role R". The engines hold this
// interface rather than the concrete registry, keeping entities themselves
// role-agnostic.
type Authorizer interface {
	HasRole(role Role, address string) (bool, error)
}

var (
	ErrNotAdmin    = errors.New("not admin")
	ErrUnknownRole = errors.New("unknown role")
)

// Registry is the store-backed Authorizer with admin-gated grant and revoke
// paths. The service seeds the deploying admin address at startup.
type Registry struct {
	store    *storage.Store
	eventBus *event.EventBus
	logger   *slog.Logger
}

func NewRegistry(
	store *storage.Store,
	eventBus *event.EventBus,
	logger *slog.Logger,
) *Registry {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Registry{
		store:    store,
		eventBus: eventBus,
		logger:   logger.With("component", "auth"),
	}
}

func (r *Registry) HasRole(role Role, address string) (bool, error) {
	return r.store.HasRole(nil, string(role), address)
}

// Seed grants a role without an authorization check. It is used once at
// service startup to install the initial admin.
func (r *Registry) Seed(role Role, address string) error {
	return r.store.GrantRole(nil, string(role), address)
}

// GrantRole assigns a role to an address. Admin only.
func (r *Registry) GrantRole(caller string, role Role, address string) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}
	if !role.Valid() {
		return ErrUnknownRole
	}
	if err := r.store.GrantRole(nil, string(role), address); err != nil {
		return err
	}
	r.logger.Info(
		"role granted",
		"role", role,
		"address", address,
	)
	r.eventBus.Publish(
		RoleGrantedEventType,
		event.NewEvent(
			RoleGrantedEventType,
			RoleGrantedEvent{Role: role, Address: address},
		),
	)
	return nil
}

// RevokeRole removes a role from an address. Admin only. Revoking a role
// that is not held is a no-op.
func (r *Registry) RevokeRole(caller string, role Role, address string) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}
	if !role.Valid() {
		return ErrUnknownRole
	}
	removed, err := r.store.RevokeRole(nil, string(role), address)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}
	r.logger.Info(
		"role revoked",
		"role", role,
		"address", address,
	)
	r.eventBus.Publish(
		RoleRevokedEventType,
		event.NewEvent(
			RoleRevokedEventType,
			RoleRevokedEvent{Role: role, Address: address},
		),
	)
	return nil
}

// AddressesWithRole returns every address currently holding the role
func (r *Registry) AddressesWithRole(role Role) ([]string, error) {
	return r.store.AddressesWithRole(nil, string(role))
}

func (r *Registry) requireAdmin(caller string) error {
	isAdmin, err := r.HasRole(RoleAdmin, caller)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrNotAdmin
	}
	return nil
}
