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

package withdrawal

import "errors"

var (
	ErrNotProjectOwner = errors.New("not project owner")
	ErrProjectNotFound = errors.New("project does not exist")
	ErrProjectDisabled = errors.New("project disabled")
	ErrAlreadyPending  = errors.New("withdrawal already pending")
	ErrMustWait        = errors.New("must wait to withdraw")
	ErrNoActiveRequest = errors.New("no withdrawal request")
	ErrNotDataProvider = errors.New("not rewards data provider")
	ErrAlreadyProvided = errors.New("already provided")
	ErrNoAmount        = errors.New("no amount to withdraw")

	// ErrAmountMismatch reports a single-value-mode disagreement. It is
	// recoverable: the request has been reopened with zero votes and the
	// original request epoch, and the reset IS committed when this error
	// is returned.
	ErrAmountMismatch = errors.New("withdrawal amount mismatch")

	// ErrConsensusFailed reports that total confirmations exceeded the
	// allowed deviation with no bucket reaching the confirmation
	// threshold. It is recoverable: the request has been canceled and the
	// cancellation IS committed when this error is returned; the owner
	// must open a new request.
	ErrConsensusFailed = errors.New("confirmations deviation exceeded")

	ErrZeroConfirmationsLimit = errors.New(
		"confirmations limit must be positive",
	)
	ErrUnknownMode = errors.New("unknown consensus mode")
)
