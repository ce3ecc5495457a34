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

package models

// WithdrawalRequest is the single live pending request for a project. The
// unique index on ProjectID enforces the one-outstanding-request invariant.
// RequestEpoch is the epoch the request was opened on and survives a
// single-value-mode vote reset so the owner's throttle clock is unaffected.
type WithdrawalRequest struct {
	ID           uint   `gorm:"primarykey"`
	ProjectID    uint64 `gorm:"uniqueIndex"`
	RequestEpoch uint64
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_request"
}

// WithdrawalConfirmation is a single provider attestation within a request
// lifetime. The unique index on (RequestID, Provider) is the provider dedup
// set; rows grouped by Amount are the per-amount vote buckets. Rows are
// deleted, never flagged, whenever the request resolves or resets.
type WithdrawalConfirmation struct {
	Provider  string `gorm:"uniqueIndex:idx_confirmation_provider;size:64"`
	ID        uint   `gorm:"primarykey"`
	RequestID uint   `gorm:"uniqueIndex:idx_confirmation_provider;index"`
	Amount    uint64 `gorm:"index"`
}

func (WithdrawalConfirmation) TableName() string {
	return "withdrawal_confirmation"
}
