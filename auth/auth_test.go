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

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mike-CZ/ftm-gas-monetization/auth"
	"github.com/Mike-CZ/ftm-gas-monetization/event"
	"github.com/Mike-CZ/ftm-gas-monetization/storage"
)

const adminAddr = "0xAdmin"

func newTestAuth(t *testing.T) *auth.Registry {
	t.Helper()
	store, err := storage.New("", nil)
	require.NoError(t, err)
	eventBus := event.NewEventBus(nil, nil)
	t.Cleanup(func() {
		eventBus.Stop()
		//nolint:errcheck
		store.Close()
	})
	authReg := auth.NewRegistry(store, eventBus, nil)
	require.NoError(t, authReg.Seed(auth.RoleAdmin, adminAddr))
	return authReg
}

func TestRoleValid(t *testing.T) {
	tests := []struct {
		role  auth.Role
		valid bool
	}{
		{auth.RoleAdmin, true},
		{auth.RoleFunder, true},
		{auth.RoleFundsManager, true},
		{auth.RoleProjectsManager, true},
		{auth.RoleDataProvider, true},
		{"", false},
		{"superuser", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.role.Valid(), "role=%q", tt.role)
	}
}

func TestGrantRoleAdminOnly(t *testing.T) {
	authReg := newTestAuth(t)

	err := authReg.GrantRole("0xStranger", auth.RoleFunder, "0xFunder")
	assert.ErrorIs(t, err, auth.ErrNotAdmin)

	err = authReg.GrantRole(adminAddr, "superuser", "0xFunder")
	assert.ErrorIs(t, err, auth.ErrUnknownRole)

	require.NoError(
		t,
		authReg.GrantRole(adminAddr, auth.RoleFunder, "0xFunder"),
	)
	has, err := authReg.HasRole(auth.RoleFunder, "0xFunder")
	require.NoError(t, err)
	assert.True(t, has)

	// Role grants do not leak across roles
	has, err = authReg.HasRole(auth.RoleAdmin, "0xFunder")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRevokeRole(t *testing.T) {
	authReg := newTestAuth(t)
	require.NoError(
		t,
		authReg.GrantRole(adminAddr, auth.RoleFunder, "0xFunder"),
	)

	err := authReg.RevokeRole("0xStranger", auth.RoleFunder, "0xFunder")
	assert.ErrorIs(t, err, auth.ErrNotAdmin)

	require.NoError(
		t,
		authReg.RevokeRole(adminAddr, auth.RoleFunder, "0xFunder"),
	)
	has, err := authReg.HasRole(auth.RoleFunder, "0xFunder")
	require.NoError(t, err)
	assert.False(t, has)

	// Revoking a role that is not held is a no-op
	require.NoError(
		t,
		authReg.RevokeRole(adminAddr, auth.RoleFunder, "0xFunder"),
	)
}

func TestAddressesWithRole(t *testing.T) {
	authReg := newTestAuth(t)
	require.NoError(
		t,
		authReg.GrantRole(adminAddr, auth.RoleDataProvider, "0xP1"),
	)
	require.NoError(
		t,
		authReg.GrantRole(adminAddr, auth.RoleDataProvider, "0xP2"),
	)

	addresses, err := authReg.AddressesWithRole(auth.RoleDataProvider)
	require.NoError(t, err)
	assert.Equal(t, []string{"0xP1", "0xP2"}, addresses)
}

// Admins can delegate the admin role itself
func TestGrantAdminRole(t *testing.T) {
	authReg := newTestAuth(t)
	require.NoError(
		t,
		authReg.GrantRole(adminAddr, auth.RoleAdmin, "0xSecondAdmin"),
	)
	require.NoError(
		t,
		authReg.GrantRole("0xSecondAdmin", auth.RoleFunder, "0xFunder"),
	)
}
