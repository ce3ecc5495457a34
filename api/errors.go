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

import (
	"errors"
	"net/http"

	"github.com/Mike-CZ/ftm-gas-monetization/auth"
	"github.com/Mike-CZ/ftm-gas-monetization/epoch"
	"github.com/Mike-CZ/ftm-gas-monetization/funding"
	"github.com/Mike-CZ/ftm-gas-monetization/registry"
	"github.com/Mike-CZ/ftm-gas-monetization/treasury"
	"github.com/Mike-CZ/ftm-gas-monetization/withdrawal"
)

// statusForError maps domain errors onto HTTP status codes. The
// committed-but-recoverable consensus outcomes (amount mismatch, deviation
// exceeded) map to Conflict so callers can distinguish them from transport
// failures.
func statusForError(err error) int {
	switch {
	case errors.Is(err, registry.ErrNotProjectsManager),
		errors.Is(err, registry.ErrNotProjectOwner),
		errors.Is(err, withdrawal.ErrNotProjectOwner),
		errors.Is(err, withdrawal.ErrNotDataProvider),
		errors.Is(err, funding.ErrNotFunder),
		errors.Is(err, funding.ErrNotFundsManager),
		errors.Is(err, auth.ErrNotAdmin):
		return http.StatusUnauthorized
	case errors.Is(err, registry.ErrProjectNotFound),
		errors.Is(err, registry.ErrContractNotOwned),
		errors.Is(err, withdrawal.ErrProjectNotFound),
		errors.Is(err, withdrawal.ErrNoActiveRequest):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrContractRegistered),
		errors.Is(err, registry.ErrProjectSuspended),
		errors.Is(err, registry.ErrProjectActive),
		errors.Is(err, withdrawal.ErrAlreadyPending),
		errors.Is(err, withdrawal.ErrAlreadyProvided),
		errors.Is(err, withdrawal.ErrProjectDisabled),
		errors.Is(err, withdrawal.ErrAmountMismatch),
		errors.Is(err, withdrawal.ErrConsensusFailed),
		errors.Is(err, treasury.ErrInsufficientFunds):
		return http.StatusConflict
	case errors.Is(err, registry.ErrEmptyMetadataURI),
		errors.Is(err, registry.ErrEmptyAddress),
		errors.Is(err, funding.ErrNoFunds),
		errors.Is(err, withdrawal.ErrNoAmount),
		errors.Is(err, withdrawal.ErrZeroConfirmationsLimit),
		errors.Is(err, auth.ErrUnknownRole),
		errors.Is(err, epoch.ErrEpochWentBackwards):
		return http.StatusBadRequest
	case errors.Is(err, withdrawal.ErrMustWait):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
