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

package storage

import (
	"gorm.io/gorm"

	"github.com/Mike-CZ/ftm-gas-monetization/storage/models"
)

// FundingState returns the singleton funding state row, which is seeded at
// store startup.
func (s *Store) FundingState(tx *gorm.DB) (*models.FundingState, error) {
	var state models.FundingState
	result := s.handle(tx).First(&state, "id = ?", models.FundingStateID)
	if result.Error != nil {
		return nil, result.Error
	}
	return &state, nil
}

func (s *Store) UpdateFundingState(
	tx *gorm.DB,
	state *models.FundingState,
) error {
	result := s.handle(tx).Save(state)
	return result.Error
}

func (s *Store) CreatePayout(tx *gorm.DB, payout *models.Payout) error {
	result := s.handle(tx).Create(payout)
	return result.Error
}

// PayoutsByProject returns a project's reward payouts, most recent first
func (s *Store) PayoutsByProject(
	tx *gorm.DB,
	projectID uint64,
) ([]models.Payout, error) {
	var payouts []models.Payout
	result := s.handle(tx).
		Where("project_id = ?", projectID).
		Order("id desc").
		Find(&payouts)
	if result.Error != nil {
		return nil, result.Error
	}
	return payouts, nil
}
