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

package withdrawal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mike-CZ/ftm-gas-monetization/auth"
	"github.com/Mike-CZ/ftm-gas-monetization/withdrawal"
)

func TestSeedSettings(t *testing.T) {
	env := newTestEnv(t, withdrawal.ModeSingleValue, 2, 3, 1)

	settings, err := env.engine.Settings()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), settings.EpochsLimit)
	assert.Equal(t, uint64(3), settings.ConfirmationsLimit)
	assert.Equal(t, uint64(1), settings.AllowedDeviation)

	err = env.engine.SeedSettings(1, 0, 0)
	assert.ErrorIs(t, err, withdrawal.ErrZeroConfirmationsLimit)
}

func TestUpdateSettingsAdminOnly(t *testing.T) {
	env := newTestEnv(t, withdrawal.ModeSingleValue, 0, 3, 0)

	err := env.engine.UpdateEpochsLimit("0xStranger", 5)
	assert.ErrorIs(t, err, auth.ErrNotAdmin)
	err = env.engine.UpdateConfirmationsLimit("0xStranger", 5)
	assert.ErrorIs(t, err, auth.ErrNotAdmin)
	err = env.engine.UpdateDeviation("0xStranger", 5)
	assert.ErrorIs(t, err, auth.ErrNotAdmin)
}

func TestUpdateSettings(t *testing.T) {
	env := newTestEnv(t, withdrawal.ModeSingleValue, 0, 3, 0)

	require.NoError(t, env.engine.UpdateEpochsLimit(adminAddr, 4))
	require.NoError(t, env.engine.UpdateConfirmationsLimit(adminAddr, 5))
	require.NoError(t, env.engine.UpdateDeviation(adminAddr, 2))

	settings, err := env.engine.Settings()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), settings.EpochsLimit)
	assert.Equal(t, uint64(5), settings.ConfirmationsLimit)
	assert.Equal(t, uint64(2), settings.AllowedDeviation)

	err = env.engine.UpdateConfirmationsLimit(adminAddr, 0)
	assert.ErrorIs(t, err, withdrawal.ErrZeroConfirmationsLimit)
}

// Raising the confirmations limit mid-request applies to votes already
// accumulated, since the threshold is read at each confirmation.
func TestUpdateConfirmationsLimitMidRequest(t *testing.T) {
	env := newTestEnv(t, withdrawal.ModeSingleValue, 0, 2, 0)
	projectID := env.addProject(t)
	env.fund(t, 1000)

	_, err := env.engine.RequestWithdrawal(ownerAddr, projectID)
	require.NoError(t, err)
	_, err = env.engine.SubmitConfirmation(providerAddrs[0], projectID, 100)
	require.NoError(t, err)

	require.NoError(t, env.engine.UpdateConfirmationsLimit(adminAddr, 3))

	resolution, err := env.engine.SubmitConfirmation(
		providerAddrs[1], projectID, 100,
	)
	require.NoError(t, err)
	assert.Equal(t, withdrawal.StatusPending, resolution.Status)

	resolution, err = env.engine.SubmitConfirmation(
		providerAddrs[2], projectID, 100,
	)
	require.NoError(t, err)
	assert.Equal(t, withdrawal.StatusCompleted, resolution.Status)
}
