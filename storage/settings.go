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

// WithdrawalSettings returns the singleton settings row, which is seeded at
// store startup.
func (s *Store) WithdrawalSettings(
	tx *gorm.DB,
) (*models.WithdrawalSettings, error) {
	var settings models.WithdrawalSettings
	result := s.handle(tx).
		First(&settings, "id = ?", models.WithdrawalSettingsID)
	if result.Error != nil {
		return nil, result.Error
	}
	return &settings, nil
}

func (s *Store) UpdateWithdrawalSettings(
	tx *gorm.DB,
	settings *models.WithdrawalSettings,
) error {
	result := s.handle(tx).Save(settings)
	return result.Error
}
