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

package treasury

import (
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"github.com/Mike-CZ/ftm-gas-monetization/storage"
)

var ErrInsufficientFunds = errors.New("insufficient balance")

// Treasury is the atomic value-transfer primitive over the pooled balance.
// Both methods operate inside the caller's storage transaction, so a failed
// transfer aborts the enclosing call with no state mutation retained.
type Treasury struct {
	store   *storage.Store
	logger  *slog.Logger
	metrics struct {
		poolBalance prometheus.Gauge
	}
}

func New(
	store *storage.Store,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) *Treasury {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	t := &Treasury{
		store:  store,
		logger: logger.With("component", "treasury"),
	}
	promautoFactory := promauto.With(promRegistry)
	t.metrics.poolBalance = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "gasmon_pool_balance",
		Help: "current pooled funding balance",
	})
	if balance, err := t.Balance(); err == nil {
		t.metrics.poolBalance.Set(float64(balance))
	}
	return t
}

// Deposit credits the pool balance
func (t *Treasury) Deposit(tx *gorm.DB, amount uint64) error {
	state, err := t.store.FundingState(tx)
	if err != nil {
		return err
	}
	state.PoolBalance += amount
	if err := t.store.UpdateFundingState(tx, state); err != nil {
		return err
	}
	t.metrics.poolBalance.Set(float64(state.PoolBalance))
	return nil
}

// Transfer debits the pool balance in favor of the recipient. Fails with
// ErrInsufficientFunds when the pool cannot cover the amount.
func (t *Treasury) Transfer(
	tx *gorm.DB,
	recipient string,
	amount uint64,
) error {
	state, err := t.store.FundingState(tx)
	if err != nil {
		return err
	}
	if state.PoolBalance < amount {
		return ErrInsufficientFunds
	}
	state.PoolBalance -= amount
	if err := t.store.UpdateFundingState(tx, state); err != nil {
		return err
	}
	t.logger.Debug(
		"transferred funds",
		"recipient", recipient,
		"amount", amount,
	)
	t.metrics.poolBalance.Set(float64(state.PoolBalance))
	return nil
}

// Balance returns the current pooled balance
func (t *Treasury) Balance() (uint64, error) {
	state, err := t.store.FundingState(nil)
	if err != nil {
		return 0, err
	}
	return state.PoolBalance, nil
}
