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
	"github.com/Mike-CZ/ftm-gas-monetization/event"
)

const (
	RequestedEventType      event.EventType = "withdrawal.requested"
	CompletedEventType      event.EventType = "withdrawal.completed"
	CanceledEventType       event.EventType = "withdrawal.canceled"
	AmountMismatchEventType event.EventType = "withdrawal.amount_mismatch"

	EpochsLimitUpdatedEventType        event.EventType = "withdrawal.epochs_limit_updated"
	ConfirmationsLimitUpdatedEventType event.EventType = "withdrawal.confirmations_limit_updated"
	DeviationUpdatedEventType          event.EventType = "withdrawal.deviation_updated"
)

type RequestedEvent struct {
	ProjectID    uint64
	RequestEpoch uint64
}

type CompletedEvent struct {
	Recipient       string
	ProjectID       uint64
	RequestEpoch    uint64
	WithdrawalEpoch uint64
	Amount          uint64
}

type CanceledEvent struct {
	ProjectID     uint64
	RequestEpoch  uint64
	Confirmations uint64
}

// AmountMismatchEvent reports a single-value-mode conflict: Amount is the
// previously accepted value, DiffAmount the conflicting proposal.
type AmountMismatchEvent struct {
	ProjectID    uint64
	RequestEpoch uint64
	Amount       uint64
	DiffAmount   uint64
}

type EpochsLimitUpdatedEvent struct {
	Limit uint64
}

type ConfirmationsLimitUpdatedEvent struct {
	Limit uint64
}

type DeviationUpdatedEvent struct {
	Limit uint64
}
