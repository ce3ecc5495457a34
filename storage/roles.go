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

func (s *Store) HasRole(
	tx *gorm.DB,
	role string,
	address string,
) (bool, error) {
	var count int64
	result := s.handle(tx).
		Model(&models.RoleAssignment{}).
		Where("role = ? AND address = ?", role, address).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// GrantRole records a role assignment. Granting an already-held role is a
// no-op.
func (s *Store) GrantRole(tx *gorm.DB, role string, address string) error {
	assignment := models.RoleAssignment{Role: role, Address: address}
	result := s.handle(tx).
		Where(models.RoleAssignment{Role: role, Address: address}).
		FirstOrCreate(&assignment)
	return result.Error
}

// RevokeRole removes a role assignment, reporting whether it existed
func (s *Store) RevokeRole(
	tx *gorm.DB,
	role string,
	address string,
) (bool, error) {
	result := s.handle(tx).
		Where("role = ? AND address = ?", role, address).
		Delete(&models.RoleAssignment{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AddressesWithRole returns every address holding a role, in grant order
func (s *Store) AddressesWithRole(
	tx *gorm.DB,
	role string,
) ([]string, error) {
	var addresses []string
	result := s.handle(tx).
		Model(&models.RoleAssignment{}).
		Where("role = ?", role).
		Order("id").
		Pluck("address", &addresses)
	if result.Error != nil {
		return nil, result.Error
	}
	return addresses, nil
}
