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

package funding

import (
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"github.com/Mike-CZ/ftm-gas-monetization/auth"
	"github.com/Mike-CZ/ftm-gas-monetization/epoch"
	"github.com/Mike-CZ/ftm-gas-monetization/event"
	"github.com/Mike-CZ/ftm-gas-monetization/storage"
	"github.com/Mike-CZ/ftm-gas-monetization/treasury"
)

var (
	ErrNotFunder       = errors.New("not funder")
	ErrNotFundsManager = errors.New("not funds manager")
	ErrNoFunds         = errors.New("no funds sent")
)

// Tracker records pool inflows and the epoch of the last funding event, and
// exposes the funds manager's administrative withdrawal escape valve. The
// escape valve bypasses the consensus protocol and the throttle entirely.
type Tracker struct {
	store    *storage.Store
	treasury *treasury.Treasury
	auth     auth.Authorizer
	epochs   epoch.Source
	eventBus *event.EventBus
	logger   *slog.Logger
	metrics  struct {
		fundsAdded     prometheus.Counter
		fundsWithdrawn prometheus.Counter
	}
}

func New(
	store *storage.Store,
	funds *treasury.Treasury,
	authorizer auth.Authorizer,
	epochs epoch.Source,
	eventBus *event.EventBus,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) *Tracker {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	t := &Tracker{
		store:    store,
		treasury: funds,
		auth:     authorizer,
		epochs:   epochs,
		eventBus: eventBus,
		logger:   logger.With("component", "funding"),
	}
	promautoFactory := promauto.With(promRegistry)
	t.metrics.fundsAdded = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "gasmon_funds_added_total",
			Help: "total amount added to the funding pool",
		},
	)
	t.metrics.fundsWithdrawn = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "gasmon_funds_withdrawn_total",
			Help: "total amount withdrawn by the funds manager",
		},
	)
	return t
}

// AddFunds credits the pool and records the current epoch as the last
// funded epoch. Funder role only. Unsolicited inbound transfers are routed
// through this same path by the API layer.
func (t *Tracker) AddFunds(caller string, amount uint64) error {
	isFunder, err := t.auth.HasRole(auth.RoleFunder, caller)
	if err != nil {
		return err
	}
	if !isFunder {
		return ErrNotFunder
	}
	if amount == 0 {
		return ErrNoFunds
	}
	currentEpoch, err := t.epochs.Current()
	if err != nil {
		return err
	}
	err = t.store.Transaction(func(tx *gorm.DB) error {
		state, err := t.store.FundingState(tx)
		if err != nil {
			return err
		}
		state.LastFundedEpoch = currentEpoch
		if err := t.store.UpdateFundingState(tx, state); err != nil {
			return err
		}
		return t.treasury.Deposit(tx, amount)
	})
	if err != nil {
		return err
	}
	t.metrics.fundsAdded.Add(float64(amount))
	t.logger.Info(
		"funds added",
		"funder", caller,
		"amount", amount,
		"epoch", currentEpoch,
	)
	t.eventBus.Publish(
		FundsAddedEventType,
		event.NewEvent(FundsAddedEventType, FundsAddedEvent{
			Funder: caller,
			Amount: amount,
			Epoch:  currentEpoch,
		}),
	)
	return nil
}

// WithdrawFunds moves part of the pool to the recipient immediately.
// Funds-manager role only.
func (t *Tracker) WithdrawFunds(
	caller string,
	recipient string,
	amount uint64,
) error {
	if err := t.requireFundsManager(caller); err != nil {
		return err
	}
	err := t.store.Transaction(func(tx *gorm.DB) error {
		return t.treasury.Transfer(tx, recipient, amount)
	})
	if err != nil {
		return err
	}
	t.publishWithdrawn(recipient, amount)
	return nil
}

// WithdrawAllFunds drains the pool to the recipient immediately.
// Funds-manager role only. Returns the amount withdrawn.
func (t *Tracker) WithdrawAllFunds(
	caller string,
	recipient string,
) (uint64, error) {
	if err := t.requireFundsManager(caller); err != nil {
		return 0, err
	}
	var amount uint64
	err := t.store.Transaction(func(tx *gorm.DB) error {
		state, err := t.store.FundingState(tx)
		if err != nil {
			return err
		}
		amount = state.PoolBalance
		return t.treasury.Transfer(tx, recipient, amount)
	})
	if err != nil {
		return 0, err
	}
	t.publishWithdrawn(recipient, amount)
	return amount, nil
}

// LastFundedEpoch returns the epoch of the last funding event, 0 when the
// pool has never been funded.
func (t *Tracker) LastFundedEpoch() (uint64, error) {
	state, err := t.store.FundingState(nil)
	if err != nil {
		return 0, err
	}
	return state.LastFundedEpoch, nil
}

func (t *Tracker) requireFundsManager(caller string) error {
	isManager, err := t.auth.HasRole(auth.RoleFundsManager, caller)
	if err != nil {
		return err
	}
	if !isManager {
		return ErrNotFundsManager
	}
	return nil
}

func (t *Tracker) publishWithdrawn(recipient string, amount uint64) {
	t.metrics.fundsWithdrawn.Add(float64(amount))
	t.logger.Info(
		"funds withdrawn",
		"recipient", recipient,
		"amount", amount,
	)
	t.eventBus.Publish(
		FundsWithdrawnEventType,
		event.NewEvent(FundsWithdrawnEventType, FundsWithdrawnEvent{
			Recipient: recipient,
			Amount:    amount,
		}),
	)
}
