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

// Project is a registered reward-eligible unit. Epoch fields use 0 as the
// "never happened" sentinel: LastWithdrawalEpoch 0 means the project has
// never withdrawn, ActiveToEpoch 0 means the project is active indefinitely.
type Project struct {
	OwnerAddress        string `gorm:"index;size:64"`
	RewardsRecipient    string `gorm:"size:64"`
	MetadataURI         string
	ID                  uint64 `gorm:"primarykey"`
	LastWithdrawalEpoch uint64
	ActiveFromEpoch     uint64
	ActiveToEpoch       uint64
}

func (Project) TableName() string {
	return "project"
}

// Suspended returns true when the project has been suspended and not
// re-enabled since.
func (p *Project) Suspended() bool {
	return p.ActiveToEpoch != 0
}

// ProjectContract maps a watched contract address to the project that owns
// it. The unique index on Address enforces the at-most-one-project
// invariant at the storage layer as well as in the registry checks.
type ProjectContract struct {
	Address   string `gorm:"uniqueIndex;size:64"`
	ID        uint   `gorm:"primarykey"`
	ProjectID uint64 `gorm:"index"`
}

func (ProjectContract) TableName() string {
	return "project_contract"
}
