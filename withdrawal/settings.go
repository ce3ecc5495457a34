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

package withdrawal

import (
	"gorm.io/gorm"

	"github.com/Mike-CZ/ftm-gas-monetization/auth"
	"github.com/Mike-CZ/ftm-gas-monetization/event"
)

// Settings is the external view of the consensus parameters
type Settings struct {
	EpochsLimit        uint64
	ConfirmationsLimit uint64
	AllowedDeviation   uint64
}

// Settings returns the current consensus parameters
func (e *Engine) Settings() (*Settings, error) {
	settings, err := e.store.WithdrawalSettings(nil)
	if err != nil {
		return nil, err
	}
	return &Settings{
		EpochsLimit:        settings.EpochsLimit,
		ConfirmationsLimit: settings.ConfirmationsLimit,
		AllowedDeviation:   settings.AllowedDeviation,
	}, nil
}

// SeedSettings installs initial consensus parameters without an
// authorization check. It is used once at service startup.
func (e *Engine) SeedSettings(
	epochsLimit uint64,
	confirmationsLimit uint64,
	allowedDeviation uint64,
) error {
	if confirmationsLimit == 0 {
		return ErrZeroConfirmationsLimit
	}
	return e.store.Transaction(func(tx *gorm.DB) error {
		settings, err := e.store.WithdrawalSettings(tx)
		if err != nil {
			return err
		}
		settings.EpochsLimit = epochsLimit
		settings.ConfirmationsLimit = confirmationsLimit
		settings.AllowedDeviation = allowedDeviation
		return e.store.UpdateWithdrawalSettings(tx, settings)
	})
}

// UpdateEpochsLimit sets the minimum epoch delta between a project's
// successive withdrawals. Admin only.
func (e *Engine) UpdateEpochsLimit(caller string, limit uint64) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	err := e.store.Transaction(func(tx *gorm.DB) error {
		settings, err := e.store.WithdrawalSettings(tx)
		if err != nil {
			return err
		}
		settings.EpochsLimit = limit
		return e.store.UpdateWithdrawalSettings(tx, settings)
	})
	if err != nil {
		return err
	}
	e.logger.Info("epochs limit updated", "limit", limit)
	e.eventBus.Publish(
		EpochsLimitUpdatedEventType,
		event.NewEvent(
			EpochsLimitUpdatedEventType,
			EpochsLimitUpdatedEvent{Limit: limit},
		),
	)
	return nil
}

// UpdateConfirmationsLimit sets the number of matching votes needed to
// resolve a request. Admin only.
func (e *Engine) UpdateConfirmationsLimit(caller string, limit uint64) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if limit == 0 {
		return ErrZeroConfirmationsLimit
	}
	err := e.store.Transaction(func(tx *gorm.DB) error {
		settings, err := e.store.WithdrawalSettings(tx)
		if err != nil {
			return err
		}
		settings.ConfirmationsLimit = limit
		return e.store.UpdateWithdrawalSettings(tx, settings)
	})
	if err != nil {
		return err
	}
	e.logger.Info("confirmations limit updated", "limit", limit)
	e.eventBus.Publish(
		ConfirmationsLimitUpdatedEventType,
		event.NewEvent(
			ConfirmationsLimitUpdatedEventType,
			ConfirmationsLimitUpdatedEvent{Limit: limit},
		),
	)
	return nil
}

// UpdateDeviation sets the number of off-target votes tolerated before a
// request is abandoned. Admin only.
func (e *Engine) UpdateDeviation(caller string, limit uint64) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	err := e.store.Transaction(func(tx *gorm.DB) error {
		settings, err := e.store.WithdrawalSettings(tx)
		if err != nil {
			return err
		}
		settings.AllowedDeviation = limit
		return e.store.UpdateWithdrawalSettings(tx, settings)
	})
	if err != nil {
		return err
	}
	e.logger.Info("deviation updated", "limit", limit)
	e.eventBus.Publish(
		DeviationUpdatedEventType,
		event.NewEvent(
			DeviationUpdatedEventType,
			DeviationUpdatedEvent{Limit: limit},
		),
	)
	return nil
}

func (e *Engine) requireAdmin(caller string) error {
	isAdmin, err := e.auth.HasRole(auth.RoleAdmin, caller)
	if err != nil {
		return err
	}
	if !isAdmin {
		return auth.ErrNotAdmin
	}
	return nil
}
