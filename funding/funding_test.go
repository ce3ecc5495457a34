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

package funding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mike-CZ/ftm-gas-monetization/auth"
	"github.com/Mike-CZ/ftm-gas-monetization/epoch"
	"github.com/Mike-CZ/ftm-gas-monetization/event"
	"github.com/Mike-CZ/ftm-gas-monetization/funding"
	"github.com/Mike-CZ/ftm-gas-monetization/storage"
	"github.com/Mike-CZ/ftm-gas-monetization/treasury"
)

const (
	funderAddr  = "0xFunder"
	managerAddr = "0xFundsManager"
)

func newTestTracker(
	t *testing.T,
) (*funding.Tracker, *treasury.Treasury, *epoch.Manual) {
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
	funds := treasury.New(store, nil, nil)
	authReg := auth.NewRegistry(store, eventBus, nil)
	require.NoError(t, authReg.Seed(auth.RoleFunder, funderAddr))
	require.NoError(t, authReg.Seed(auth.RoleFundsManager, managerAddr))
	tracker := funding.New(
		store, funds, authReg, epochs, eventBus, nil, nil,
	)
	return tracker, funds, epochs
}

func TestAddFunds(t *testing.T) {
	tracker, funds, epochs := newTestTracker(t)
	require.NoError(t, epochs.Set(4))

	require.NoError(t, tracker.AddFunds(funderAddr, 1000))

	balance, err := funds.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), balance)

	lastFunded, err := tracker.LastFundedEpoch()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), lastFunded)

	// Deposits accumulate and stamp the latest epoch
	require.NoError(t, epochs.Set(6))
	require.NoError(t, tracker.AddFunds(funderAddr, 500))
	balance, err = funds.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(1500), balance)
	lastFunded, err = tracker.LastFundedEpoch()
	require.NoError(t, err)
	assert.Equal(t, uint64(6), lastFunded)
}

func TestAddFundsValidation(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	err := tracker.AddFunds("0xStranger", 1000)
	assert.ErrorIs(t, err, funding.ErrNotFunder)

	err = tracker.AddFunds(funderAddr, 0)
	assert.ErrorIs(t, err, funding.ErrNoFunds)

	lastFunded, err := tracker.LastFundedEpoch()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), lastFunded)
}

func TestWithdrawFunds(t *testing.T) {
	tracker, funds, _ := newTestTracker(t)
	require.NoError(t, tracker.AddFunds(funderAddr, 1000))

	err := tracker.WithdrawFunds("0xStranger", "0xTarget", 400)
	assert.ErrorIs(t, err, funding.ErrNotFundsManager)

	err = tracker.WithdrawFunds(managerAddr, "0xTarget", 4000)
	assert.ErrorIs(t, err, treasury.ErrInsufficientFunds)

	require.NoError(t, tracker.WithdrawFunds(managerAddr, "0xTarget", 400))
	balance, err := funds.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(600), balance)
}

func TestWithdrawAllFunds(t *testing.T) {
	tracker, funds, _ := newTestTracker(t)
	require.NoError(t, tracker.AddFunds(funderAddr, 1000))

	_, err := tracker.WithdrawAllFunds("0xStranger", "0xTarget")
	assert.ErrorIs(t, err, funding.ErrNotFundsManager)

	amount, err := tracker.WithdrawAllFunds(managerAddr, "0xTarget")
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), amount)

	balance, err := funds.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)

	// Draining an empty pool withdraws nothing
	amount, err = tracker.WithdrawAllFunds(managerAddr, "0xTarget")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), amount)
}
