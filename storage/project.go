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
	"errors"

	"gorm.io/gorm"

	"github.com/Mike-CZ/ftm-gas-monetization/storage/models"
)

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrContractNotFound = errors.New("contract not found")
)

// CreateProject inserts a new project and assigns it the next monotonically
// increasing id.
func (s *Store) CreateProject(tx *gorm.DB, project *models.Project) error {
	result := s.handle(tx).Create(project)
	return result.Error
}

func (s *Store) ProjectByID(
	tx *gorm.DB,
	id uint64,
) (*models.Project, error) {
	var project models.Project
	result := s.handle(tx).First(&project, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, result.Error
	}
	return &project, nil
}

func (s *Store) UpdateProject(tx *gorm.DB, project *models.Project) error {
	result := s.handle(tx).Save(project)
	return result.Error
}

// ContractByAddress looks up the ownership mapping for a contract address.
// Returns ErrContractNotFound when the address is unregistered.
func (s *Store) ContractByAddress(
	tx *gorm.DB,
	address string,
) (*models.ProjectContract, error) {
	var contract models.ProjectContract
	result := s.handle(tx).First(&contract, "address = ?", address)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, result.Error
	}
	return &contract, nil
}

// ProjectContracts returns the project's contract addresses in registration
// order.
func (s *Store) ProjectContracts(
	tx *gorm.DB,
	projectID uint64,
) ([]models.ProjectContract, error) {
	var contracts []models.ProjectContract
	result := s.handle(tx).
		Where("project_id = ?", projectID).
		Order("id").
		Find(&contracts)
	if result.Error != nil {
		return nil, result.Error
	}
	return contracts, nil
}

func (s *Store) CreateContract(
	tx *gorm.DB,
	contract *models.ProjectContract,
) error {
	result := s.handle(tx).Create(contract)
	return result.Error
}

// DeleteContract removes a single ownership mapping row
func (s *Store) DeleteContract(
	tx *gorm.DB,
	contract *models.ProjectContract,
) error {
	result := s.handle(tx).Delete(contract)
	return result.Error
}
