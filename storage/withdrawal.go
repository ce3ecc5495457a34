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

var ErrRequestNotFound = errors.New("withdrawal request not found")

// VoteBucket is the aggregate of confirmations agreeing on one proposed
// amount.
type VoteBucket struct {
	Amount uint64
	Votes  uint64
}

// RequestByProject returns the project's live pending request, or
// ErrRequestNotFound when the project is idle.
func (s *Store) RequestByProject(
	tx *gorm.DB,
	projectID uint64,
) (*models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest
	result := s.handle(tx).First(&request, "project_id = ?", projectID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, result.Error
	}
	return &request, nil
}

func (s *Store) CreateRequest(
	tx *gorm.DB,
	request *models.WithdrawalRequest,
) error {
	result := s.handle(tx).Create(request)
	return result.Error
}

// DeleteRequest removes the pending request together with all of its
// confirmation rows, so no residual vote data can influence a future
// request.
func (s *Store) DeleteRequest(
	tx *gorm.DB,
	request *models.WithdrawalRequest,
) error {
	if err := s.DeleteConfirmations(tx, request.ID); err != nil {
		return err
	}
	result := s.handle(tx).Delete(request)
	return result.Error
}

func (s *Store) CreateConfirmation(
	tx *gorm.DB,
	confirmation *models.WithdrawalConfirmation,
) error {
	result := s.handle(tx).Create(confirmation)
	return result.Error
}

// DeleteConfirmations clears every confirmation row for a request lifetime
func (s *Store) DeleteConfirmations(tx *gorm.DB, requestID uint) error {
	result := s.handle(tx).
		Where("request_id = ?", requestID).
		Delete(&models.WithdrawalConfirmation{})
	return result.Error
}

// HasConfirmed reports whether the provider already voted within this
// request's lifetime.
func (s *Store) HasConfirmed(
	tx *gorm.DB,
	requestID uint,
	provider string,
) (bool, error) {
	var count int64
	result := s.handle(tx).
		Model(&models.WithdrawalConfirmation{}).
		Where("request_id = ? AND provider = ?", requestID, provider).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// ConfirmationCount returns the total number of votes across all buckets
func (s *Store) ConfirmationCount(
	tx *gorm.DB,
	requestID uint,
) (uint64, error) {
	var count int64
	result := s.handle(tx).
		Model(&models.WithdrawalConfirmation{}).
		Where("request_id = ?", requestID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return uint64(count), nil
}

// Confirmations returns the request's confirmation rows in submission order
func (s *Store) Confirmations(
	tx *gorm.DB,
	requestID uint,
) ([]models.WithdrawalConfirmation, error) {
	var confirmations []models.WithdrawalConfirmation
	result := s.handle(tx).
		Where("request_id = ?", requestID).
		Order("id").
		Find(&confirmations)
	if result.Error != nil {
		return nil, result.Error
	}
	return confirmations, nil
}

// VoteBuckets returns per-amount vote counts for the request. Only amounts
// actually seen are returned, so a full clear stays proportional to the
// number of distinct proposals.
func (s *Store) VoteBuckets(
	tx *gorm.DB,
	requestID uint,
) ([]VoteBucket, error) {
	var buckets []VoteBucket
	result := s.handle(tx).
		Model(&models.WithdrawalConfirmation{}).
		Select("amount, count(*) as votes").
		Where("request_id = ?", requestID).
		Group("amount").
		Order("amount").
		Find(&buckets)
	if result.Error != nil {
		return nil, result.Error
	}
	return buckets, nil
}
