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

// WithdrawalSettingsID is the primary key of the singleton settings row.
const WithdrawalSettingsID = 1

// WithdrawalSettings is a singleton row holding the admin-tunable consensus
// parameters. EpochsLimit is the minimum epoch delta between a project's
// successive withdrawals, ConfirmationsLimit the number of matching provider
// votes needed to resolve a request, and AllowedDeviation the number of
// off-target votes tolerated before a request is abandoned.
type WithdrawalSettings struct {
	ID                 uint `gorm:"primarykey"`
	EpochsLimit        uint64
	ConfirmationsLimit uint64
	AllowedDeviation   uint64
}

func (WithdrawalSettings) TableName() string {
	return "withdrawal_settings"
}
