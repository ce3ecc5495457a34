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

// FundingStateID is the primary key of the singleton funding state row.
const FundingStateID = 1

// FundingState is a singleton row holding the pool balance and the epoch of
// the last funding event (0 = never funded).
type FundingState struct {
	ID              uint `gorm:"primarykey"`
	LastFundedEpoch uint64
	PoolBalance     uint64
}

func (FundingState) TableName() string {
	return "funding_state"
}

// Payout records a completed value transfer out of the pool, both consensus
// rewards and administrative withdrawals. Reward payouts carry the project
// and request epoch; administrative withdrawals leave them zero.
type Payout struct {
	RecipientAddress string `gorm:"index;size:64"`
	ID               uint   `gorm:"primarykey"`
	ProjectID        uint64 `gorm:"index"`
	Amount           uint64
	RequestEpoch     uint64
	PaidEpoch        uint64
}

func (Payout) TableName() string {
	return "payout"
}
