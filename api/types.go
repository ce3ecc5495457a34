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

package api

// ErrorResponse is the JSON error body
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

type AddProjectRequest struct {
	Owner            string   `json:"owner"`
	RewardsRecipient string   `json:"rewards_recipient"`
	MetadataURI      string   `json:"metadata_uri"`
	Contracts        []string `json:"contracts"`
}

type AddProjectResponse struct {
	ProjectID uint64 `json:"project_id"`
}

type ProjectResponse struct {
	Owner               string   `json:"owner"`
	RewardsRecipient    string   `json:"rewards_recipient"`
	MetadataURI         string   `json:"metadata_uri"`
	Contracts           []string `json:"contracts"`
	ProjectID           uint64   `json:"project_id"`
	LastWithdrawalEpoch uint64   `json:"last_withdrawal_epoch"`
	ActiveFromEpoch     uint64   `json:"active_from_epoch"`
	ActiveToEpoch       uint64   `json:"active_to_epoch"`
}

type ContractRequest struct {
	Address string `json:"address"`
}

type ContractOwnerResponse struct {
	Address   string `json:"address"`
	ProjectID uint64 `json:"project_id"`
}

type UpdateMetadataRequest struct {
	MetadataURI string `json:"metadata_uri"`
}

type UpdateOwnerRequest struct {
	Owner string `json:"owner"`
}

type UpdateRecipientRequest struct {
	RewardsRecipient string `json:"rewards_recipient"`
}

type AddFundsRequest struct {
	Amount uint64 `json:"amount"`
}

type WithdrawFundsRequest struct {
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
}

type WithdrawAllFundsRequest struct {
	Recipient string `json:"recipient"`
}

type WithdrawFundsResponse struct {
	Amount uint64 `json:"amount"`
}

type FundingStateResponse struct {
	PoolBalance     uint64 `json:"pool_balance"`
	LastFundedEpoch uint64 `json:"last_funded_epoch"`
}

type RequestWithdrawalResponse struct {
	RequestEpoch uint64 `json:"request_epoch"`
}

type ConfirmWithdrawalRequest struct {
	Amount uint64 `json:"amount"`
}

type ConfirmWithdrawalResponse struct {
	Status          string `json:"status"`
	Amount          uint64 `json:"amount,omitempty"`
	RequestEpoch    uint64 `json:"request_epoch"`
	WithdrawalEpoch uint64 `json:"withdrawal_epoch,omitempty"`
	Confirmations   uint64 `json:"confirmations"`
}

type VoteBucketResponse struct {
	Amount uint64 `json:"amount"`
	Votes  uint64 `json:"votes"`
}

type PendingWithdrawalResponse struct {
	Providers     []string             `json:"providers"`
	Buckets       []VoteBucketResponse `json:"buckets"`
	RequestEpoch  uint64               `json:"request_epoch"`
	Confirmations uint64               `json:"confirmations"`
}

type SettingsResponse struct {
	Mode               string `json:"mode"`
	EpochsLimit        uint64 `json:"epochs_limit"`
	ConfirmationsLimit uint64 `json:"confirmations_limit"`
	AllowedDeviation   uint64 `json:"allowed_deviation"`
}

type UpdateLimitRequest struct {
	Limit uint64 `json:"limit"`
}

type RoleRequest struct {
	Role    string `json:"role"`
	Address string `json:"address"`
}

type EpochResponse struct {
	Epoch uint64 `json:"epoch"`
}

type SetEpochRequest struct {
	Epoch uint64 `json:"epoch"`
}
