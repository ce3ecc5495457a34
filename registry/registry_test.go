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

package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mike-CZ/ftm-gas-monetization/auth"
	"github.com/Mike-CZ/ftm-gas-monetization/epoch"
	"github.com/Mike-CZ/ftm-gas-monetization/event"
	"github.com/Mike-CZ/ftm-gas-monetization/registry"
	"github.com/Mike-CZ/ftm-gas-monetization/storage"
)

const (
	managerAddr   = "0xManager"
	ownerAddr     = "0xOwner"
	recipientAddr = "0xRecipient"
)

func newTestRegistry(
	t *testing.T,
) (*registry.Registry, *epoch.Manual) {
	t.Helper()
	store, err := storage.New("", nil)
	require.NoError(t, err)
	eventBus := event.NewEventBus(nil, nil)
	t.Cleanup(func() {
		eventBus.Stop()
		//nolint:errcheck
		store.Close()
	})
	epochs := epoch.NewManual(1)
	authReg := auth.NewRegistry(store, eventBus, nil)
	require.NoError(t, authReg.Seed(auth.RoleProjectsManager, managerAddr))
	return registry.New(store, authReg, epochs, eventBus, nil, nil), epochs
}

func addProject(
	t *testing.T,
	reg *registry.Registry,
	contracts ...string,
) uint64 {
	t.Helper()
	id, err := reg.AddProject(
		managerAddr,
		ownerAddr,
		recipientAddr,
		"ipfs://meta",
		contracts,
	)
	require.NoError(t, err)
	return id
}

func TestAddProject(t *testing.T) {
	reg, epochs := newTestRegistry(t)
	require.NoError(t, epochs.Set(3))

	id := addProject(t, reg, "0xC1", "0xC2")
	assert.Equal(t, uint64(1), id)

	project, err := reg.ProjectByID(id)
	require.NoError(t, err)
	assert.Equal(t, ownerAddr, project.Owner)
	assert.Equal(t, recipientAddr, project.RewardsRecipient)
	assert.Equal(t, "ipfs://meta", project.MetadataURI)
	assert.Equal(t, []string{"0xC1", "0xC2"}, project.Contracts)
	assert.Equal(t, uint64(3), project.ActiveFromEpoch)
	assert.Equal(t, uint64(0), project.ActiveToEpoch)

	second := addProject(t, reg, "0xC3")
	assert.Equal(t, uint64(2), second)
}

func TestAddProjectValidation(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.AddProject(
		"0xStranger", ownerAddr, recipientAddr, "ipfs://meta", nil,
	)
	assert.ErrorIs(t, err, registry.ErrNotProjectsManager)

	_, err = reg.AddProject(
		managerAddr, "", recipientAddr, "ipfs://meta", nil,
	)
	assert.ErrorIs(t, err, registry.ErrEmptyAddress)

	_, err = reg.AddProject(managerAddr, ownerAddr, recipientAddr, "", nil)
	assert.ErrorIs(t, err, registry.ErrEmptyMetadataURI)
}

// Registering a batch containing one conflicting address must not register
// any of the other addresses either.
func TestAddProjectContractConflictRollsBack(t *testing.T) {
	reg, _ := newTestRegistry(t)

	addProject(t, reg, "0xShared")

	_, err := reg.AddProject(
		managerAddr,
		"0xOtherOwner",
		"0xOtherRecipient",
		"ipfs://other",
		[]string{"0xFresh", "0xShared"},
	)
	assert.ErrorIs(t, err, registry.ErrContractRegistered)

	// The non-conflicting address stayed unregistered
	id, err := reg.ProjectIDOfContract("0xFresh")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	// The conflicting address still belongs to the first project
	id, err = reg.ProjectIDOfContract("0xShared")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	// No second project row exists
	_, err = reg.ProjectByID(2)
	assert.ErrorIs(t, err, registry.ErrProjectNotFound)
}

func TestSuspendAndEnableProject(t *testing.T) {
	reg, epochs := newTestRegistry(t)
	id := addProject(t, reg, "0xC1")

	err := reg.SuspendProject("0xStranger", id)
	assert.ErrorIs(t, err, registry.ErrNotProjectsManager)
	err = reg.EnableProject(managerAddr, id)
	assert.ErrorIs(t, err, registry.ErrProjectActive)

	require.NoError(t, epochs.Set(5))
	require.NoError(t, reg.SuspendProject(managerAddr, id))
	project, err := reg.ProjectByID(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), project.ActiveToEpoch)

	err = reg.SuspendProject(managerAddr, id)
	assert.ErrorIs(t, err, registry.ErrProjectSuspended)

	require.NoError(t, epochs.Set(8))
	require.NoError(t, reg.EnableProject(managerAddr, id))
	project, err = reg.ProjectByID(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), project.ActiveFromEpoch)
	assert.Equal(t, uint64(0), project.ActiveToEpoch)
}

func TestAddAndRemoveContract(t *testing.T) {
	reg, _ := newTestRegistry(t)
	first := addProject(t, reg, "0xC1")
	second := addProject(t, reg, "0xC2")

	err := reg.AddProjectContract(managerAddr, first, "0xC2")
	assert.ErrorIs(t, err, registry.ErrContractRegistered)
	err = reg.AddProjectContract(managerAddr, first, "")
	assert.ErrorIs(t, err, registry.ErrEmptyAddress)
	err = reg.AddProjectContract(managerAddr, 42, "0xC3")
	assert.ErrorIs(t, err, registry.ErrProjectNotFound)

	require.NoError(t, reg.AddProjectContract(managerAddr, first, "0xC3"))
	id, err := reg.ProjectIDOfContract("0xC3")
	require.NoError(t, err)
	assert.Equal(t, first, id)

	// Removal must target the owning project
	err = reg.RemoveProjectContract(managerAddr, second, "0xC3")
	assert.ErrorIs(t, err, registry.ErrContractNotOwned)
	err = reg.RemoveProjectContract(managerAddr, first, "0xUnknown")
	assert.ErrorIs(t, err, registry.ErrContractNotOwned)

	require.NoError(t, reg.RemoveProjectContract(managerAddr, first, "0xC3"))
	id, err = reg.ProjectIDOfContract("0xC3")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	// A removed address may be registered again, by any project
	require.NoError(t, reg.AddProjectContract(managerAddr, second, "0xC3"))
	id, err = reg.ProjectIDOfContract("0xC3")
	require.NoError(t, err)
	assert.Equal(t, second, id)
}

func TestUpdateMetadataURI(t *testing.T) {
	reg, _ := newTestRegistry(t)
	id := addProject(t, reg, "0xC1")

	err := reg.UpdateMetadataURI(managerAddr, id, "")
	assert.ErrorIs(t, err, registry.ErrEmptyMetadataURI)
	err = reg.UpdateMetadataURI(ownerAddr, id, "ipfs://new")
	assert.ErrorIs(t, err, registry.ErrNotProjectsManager)

	require.NoError(t, reg.UpdateMetadataURI(managerAddr, id, "ipfs://new"))
	project, err := reg.ProjectByID(id)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://new", project.MetadataURI)
}

func TestUpdateRewardsRecipientOwnerOnly(t *testing.T) {
	reg, _ := newTestRegistry(t)
	id := addProject(t, reg, "0xC1")

	err := reg.UpdateRewardsRecipient(managerAddr, id, "0xNew")
	assert.ErrorIs(t, err, registry.ErrNotProjectOwner)

	require.NoError(t, reg.UpdateRewardsRecipient(ownerAddr, id, "0xNew"))
	project, err := reg.ProjectByID(id)
	require.NoError(t, err)
	assert.Equal(t, "0xNew", project.RewardsRecipient)
}

func TestUpdateOwner(t *testing.T) {
	reg, _ := newTestRegistry(t)
	id := addProject(t, reg, "0xC1")

	err := reg.UpdateOwner(ownerAddr, id, "0xNewOwner")
	assert.ErrorIs(t, err, registry.ErrNotProjectsManager)

	require.NoError(t, reg.UpdateOwner(managerAddr, id, "0xNewOwner"))
	project, err := reg.ProjectByID(id)
	require.NoError(t, err)
	assert.Equal(t, "0xNewOwner", project.Owner)

	// The previous owner lost its authority
	err = reg.UpdateRewardsRecipient(ownerAddr, id, "0xElse")
	assert.ErrorIs(t, err, registry.ErrNotProjectOwner)
	require.NoError(t, reg.UpdateRewardsRecipient("0xNewOwner", id, "0xElse"))
}
