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

import (
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"github.com/Mike-CZ/ftm-gas-monetization/auth"
	"github.com/Mike-CZ/ftm-gas-monetization/epoch"
	"github.com/Mike-CZ/ftm-gas-monetization/event"
	"github.com/Mike-CZ/ftm-gas-monetization/storage"
	"github.com/Mike-CZ/ftm-gas-monetization/storage/models"
	"github.com/Mike-CZ/ftm-gas-monetization/treasury"
)

// Mode selects how provider confirmations are resolved into an agreed
// amount.
type Mode string

const (
	// ModeSingleValue fixes the expected amount with the first
	// confirmation and treats any differing later confirmation as a
	// protocol fault that resets the request's votes.
	ModeSingleValue Mode = "single"
	// ModeTally accumulates independent per-amount vote buckets and
	// resolves as soon as any bucket reaches the confirmation threshold.
	ModeTally Mode = "tally"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeSingleValue, ModeTally:
		return true
	default:
		return false
	}
}

// Resolution describes what a confirmation did to the pending request
type Resolution struct {
	Status          Status
	Amount          uint64
	RequestEpoch    uint64
	WithdrawalEpoch uint64
	Confirmations   uint64
}

type Status string

const (
	// StatusPending means the vote was recorded and the request stays open
	StatusPending Status = "pending"
	// StatusCompleted means consensus was reached and the reward was paid
	StatusCompleted Status = "completed"
)

// PendingRequest is the external view of a project's live request
type PendingRequest struct {
	Providers     []string
	Buckets       []storage.VoteBucket
	RequestEpoch  uint64
	Confirmations uint64
}

// Engine is the per-project pending-withdrawal state machine. A project is
// Idle when it has no request row and Pending when it has one; all
// evaluation is lazy, driven by explicit owner and provider calls, and the
// platform serializes state-mutating calls so the state flag alone enforces
// mutual exclusion.
type Engine struct {
	store    *storage.Store
	treasury *treasury.Treasury
	auth     auth.Authorizer
	epochs   epoch.Source
	eventBus *event.EventBus
	logger   *slog.Logger
	mode     Mode
	metrics  struct {
		requested   prometheus.Counter
		completed   prometheus.Counter
		canceled    prometheus.Counter
		mismatches  prometheus.Counter
		rewardsPaid prometheus.Counter
	}
}

func NewEngine(
	store *storage.Store,
	funds *treasury.Treasury,
	authorizer auth.Authorizer,
	epochs epoch.Source,
	eventBus *event.EventBus,
	mode Mode,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*Engine, error) {
	if !mode.Valid() {
		return nil, ErrUnknownMode
	}
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e := &Engine{
		store:    store,
		treasury: funds,
		auth:     authorizer,
		epochs:   epochs,
		eventBus: eventBus,
		mode:     mode,
		logger:   logger.With("component", "withdrawal"),
	}
	promautoFactory := promauto.With(promRegistry)
	e.metrics.requested = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "gasmon_withdrawals_requested_total",
			Help: "total withdrawal requests opened",
		},
	)
	e.metrics.completed = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "gasmon_withdrawals_completed_total",
			Help: "total withdrawal requests resolved with payment",
		},
	)
	e.metrics.canceled = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "gasmon_withdrawals_canceled_total",
			Help: "total withdrawal requests canceled without payment",
		},
	)
	e.metrics.mismatches = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "gasmon_withdrawal_mismatches_total",
			Help: "total single-value amount mismatches",
		},
	)
	e.metrics.rewardsPaid = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "gasmon_rewards_paid_total",
			Help: "total reward amount paid out",
		},
	)
	return e, nil
}

// Mode returns the configured resolution mode
func (e *Engine) Mode() Mode {
	return e.mode
}

// RequestWithdrawal opens a new pending request for the project and returns
// the epoch it was opened on. Project owner only. A live request is never
// silently replaced; the owner gets ErrAlreadyPending and the stale request
// stays open until providers resolve it.
func (e *Engine) RequestWithdrawal(
	caller string,
	projectID uint64,
) (uint64, error) {
	currentEpoch, err := e.epochs.Current()
	if err != nil {
		return 0, err
	}
	err = e.store.Transaction(func(tx *gorm.DB) error {
		project, err := e.store.ProjectByID(tx, projectID)
		if err != nil {
			if errors.Is(err, storage.ErrProjectNotFound) {
				return ErrProjectNotFound
			}
			return err
		}
		if project.OwnerAddress != caller {
			return ErrNotProjectOwner
		}
		// A suspended project may still withdraw rewards accrued before
		// the suspension epoch, exactly once
		if project.ActiveToEpoch != 0 &&
			project.LastWithdrawalEpoch >= project.ActiveToEpoch {
			return ErrProjectDisabled
		}
		_, err = e.store.RequestByProject(tx, projectID)
		if err == nil {
			return ErrAlreadyPending
		}
		if !errors.Is(err, storage.ErrRequestNotFound) {
			return err
		}
		if err := e.checkThrottle(tx, project, currentEpoch); err != nil {
			return err
		}
		request := models.WithdrawalRequest{
			ProjectID:    projectID,
			RequestEpoch: currentEpoch,
		}
		return e.store.CreateRequest(tx, &request)
	})
	if err != nil {
		return 0, err
	}
	e.metrics.requested.Inc()
	e.logger.Info(
		"withdrawal requested",
		"project_id", projectID,
		"epoch", currentEpoch,
	)
	e.eventBus.Publish(
		RequestedEventType,
		event.NewEvent(RequestedEventType, RequestedEvent{
			ProjectID:    projectID,
			RequestEpoch: currentEpoch,
		}),
	)
	return currentEpoch, nil
}

// checkThrottle enforces the timing policy: the pool must have been funded
// since the project's last payout, and the throttle window must have fully
// elapsed. The 0 sentinels are checked explicitly before any subtraction so
// an unset counter can never satisfy a comparison by wrapping.
func (e *Engine) checkThrottle(
	tx *gorm.DB,
	project *models.Project,
	currentEpoch uint64,
) error {
	state, err := e.store.FundingState(tx)
	if err != nil {
		return err
	}
	if state.LastFundedEpoch == 0 {
		return ErrMustWait
	}
	if project.LastWithdrawalEpoch >= state.LastFundedEpoch {
		return ErrMustWait
	}
	settings, err := e.store.WithdrawalSettings(tx)
	if err != nil {
		return err
	}
	if currentEpoch <= project.LastWithdrawalEpoch {
		return ErrMustWait
	}
	if currentEpoch-project.LastWithdrawalEpoch <= settings.EpochsLimit {
		return ErrMustWait
	}
	return nil
}

// SubmitConfirmation records a data provider's amount attestation for the
// project's pending request and resolves the request once the configured
// policy allows. ErrAmountMismatch and ErrConsensusFailed report committed
// protocol outcomes, not aborted calls; every other error leaves all state
// untouched.
func (e *Engine) SubmitConfirmation(
	caller string,
	projectID uint64,
	amount uint64,
) (*Resolution, error) {
	isProvider, err := e.auth.HasRole(auth.RoleDataProvider, caller)
	if err != nil {
		return nil, err
	}
	if !isProvider {
		return nil, ErrNotDataProvider
	}
	currentEpoch, err := e.epochs.Current()
	if err != nil {
		return nil, err
	}
	var resolution *Resolution
	var pendingEvents []event.Event
	var protocolFault error
	err = e.store.Transaction(func(tx *gorm.DB) error {
		request, err := e.store.RequestByProject(tx, projectID)
		if err != nil {
			if errors.Is(err, storage.ErrRequestNotFound) {
				return ErrNoActiveRequest
			}
			return err
		}
		if amount == 0 {
			return ErrNoAmount
		}
		confirmed, err := e.store.HasConfirmed(tx, request.ID, caller)
		if err != nil {
			return err
		}
		if confirmed {
			return ErrAlreadyProvided
		}
		switch e.mode {
		case ModeSingleValue:
			resolution, pendingEvents, err = e.confirmSingleValue(
				tx, request, caller, amount, currentEpoch,
			)
		case ModeTally:
			resolution, pendingEvents, err = e.confirmTally(
				tx, request, caller, amount, currentEpoch,
			)
		default:
			err = ErrUnknownMode
		}
		// A vote reset or request cancellation must commit, so these
		// outcomes cannot propagate out of the closure, where gorm
		// would roll the transaction back
		if errors.Is(err, ErrAmountMismatch) ||
			errors.Is(err, ErrConsensusFailed) {
			protocolFault = err
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, evt := range pendingEvents {
		e.eventBus.Publish(evt.Type, evt)
	}
	// The recoverable protocol outcomes committed their state transition
	// and still surface as errors to the caller
	if protocolFault != nil {
		return nil, protocolFault
	}
	if resolution.Status == StatusCompleted {
		e.metrics.completed.Inc()
		e.metrics.rewardsPaid.Add(float64(resolution.Amount))
		e.logger.Info(
			"withdrawal completed",
			"project_id", projectID,
			"request_epoch", resolution.RequestEpoch,
			"withdrawal_epoch", resolution.WithdrawalEpoch,
			"amount", resolution.Amount,
		)
	}
	return resolution, nil
}

// confirmSingleValue implements the single-value policy: the first vote
// fixes the expected amount, a matching vote increments the count, and a
// conflicting vote is a protocol fault that forgets all accumulated votes
// while keeping the original request epoch.
func (e *Engine) confirmSingleValue(
	tx *gorm.DB,
	request *models.WithdrawalRequest,
	provider string,
	amount uint64,
	currentEpoch uint64,
) (*Resolution, []event.Event, error) {
	confirmations, err := e.store.Confirmations(tx, request.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(confirmations) > 0 && confirmations[0].Amount != amount {
		if err := e.store.DeleteConfirmations(tx, request.ID); err != nil {
			return nil, nil, err
		}
		e.metrics.mismatches.Inc()
		e.logger.Warn(
			"conflicting confirmation, votes reset",
			"project_id", request.ProjectID,
			"accepted", confirmations[0].Amount,
			"conflicting", amount,
			"provider", provider,
		)
		evt := event.NewEvent(
			AmountMismatchEventType,
			AmountMismatchEvent{
				ProjectID:    request.ProjectID,
				RequestEpoch: request.RequestEpoch,
				Amount:       confirmations[0].Amount,
				DiffAmount:   amount,
			},
		)
		return nil, []event.Event{evt}, ErrAmountMismatch
	}
	confirmation := models.WithdrawalConfirmation{
		RequestID: request.ID,
		Provider:  provider,
		Amount:    amount,
	}
	if err := e.store.CreateConfirmation(tx, &confirmation); err != nil {
		return nil, nil, err
	}
	settings, err := e.store.WithdrawalSettings(tx)
	if err != nil {
		return nil, nil, err
	}
	votes := uint64(len(confirmations)) + 1
	if votes >= settings.ConfirmationsLimit {
		return e.resolve(tx, request, amount, currentEpoch, votes)
	}
	return &Resolution{
		Status:        StatusPending,
		RequestEpoch:  request.RequestEpoch,
		Confirmations: votes,
	}, nil, nil
}

// confirmTally implements the multi-value policy: votes accumulate
// independently per proposed amount, any bucket reaching the threshold
// resolves, and irreconcilable disagreement past the allowed deviation
// cancels the request outright.
func (e *Engine) confirmTally(
	tx *gorm.DB,
	request *models.WithdrawalRequest,
	provider string,
	amount uint64,
	currentEpoch uint64,
) (*Resolution, []event.Event, error) {
	confirmation := models.WithdrawalConfirmation{
		RequestID: request.ID,
		Provider:  provider,
		Amount:    amount,
	}
	if err := e.store.CreateConfirmation(tx, &confirmation); err != nil {
		return nil, nil, err
	}
	settings, err := e.store.WithdrawalSettings(tx)
	if err != nil {
		return nil, nil, err
	}
	buckets, err := e.store.VoteBuckets(tx, request.ID)
	if err != nil {
		return nil, nil, err
	}
	var totalVotes, bucketVotes uint64
	for _, bucket := range buckets {
		totalVotes += bucket.Votes
		if bucket.Amount == amount {
			bucketVotes = bucket.Votes
		}
	}
	if bucketVotes >= settings.ConfirmationsLimit {
		return e.resolve(tx, request, amount, currentEpoch, bucketVotes)
	}
	if totalVotes > settings.ConfirmationsLimit+settings.AllowedDeviation {
		if err := e.store.DeleteRequest(tx, request); err != nil {
			return nil, nil, err
		}
		e.metrics.canceled.Inc()
		e.logger.Warn(
			"withdrawal canceled, providers cannot agree",
			"project_id", request.ProjectID,
			"request_epoch", request.RequestEpoch,
			"confirmations", totalVotes,
		)
		evt := event.NewEvent(
			CanceledEventType,
			CanceledEvent{
				ProjectID:     request.ProjectID,
				RequestEpoch:  request.RequestEpoch,
				Confirmations: totalVotes,
			},
		)
		return nil, []event.Event{evt}, ErrConsensusFailed
	}
	return &Resolution{
		Status:        StatusPending,
		RequestEpoch:  request.RequestEpoch,
		Confirmations: bucketVotes,
	}, nil, nil
}

// resolve clears the request, records the payout epoch, and moves the
// agreed amount to the project's rewards recipient. A transfer failure
// fails the enclosing transaction, so none of this is committed.
func (e *Engine) resolve(
	tx *gorm.DB,
	request *models.WithdrawalRequest,
	amount uint64,
	currentEpoch uint64,
	votes uint64,
) (*Resolution, []event.Event, error) {
	project, err := e.store.ProjectByID(tx, request.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if err := e.store.DeleteRequest(tx, request); err != nil {
		return nil, nil, err
	}
	project.LastWithdrawalEpoch = currentEpoch
	if err := e.store.UpdateProject(tx, project); err != nil {
		return nil, nil, err
	}
	err = e.treasury.Transfer(tx, project.RewardsRecipient, amount)
	if err != nil {
		return nil, nil, err
	}
	payout := models.Payout{
		ProjectID:        project.ID,
		RecipientAddress: project.RewardsRecipient,
		Amount:           amount,
		RequestEpoch:     request.RequestEpoch,
		PaidEpoch:        currentEpoch,
	}
	if err := e.store.CreatePayout(tx, &payout); err != nil {
		return nil, nil, err
	}
	resolution := &Resolution{
		Status:          StatusCompleted,
		Amount:          amount,
		RequestEpoch:    request.RequestEpoch,
		WithdrawalEpoch: currentEpoch,
		Confirmations:   votes,
	}
	evt := event.NewEvent(
		CompletedEventType,
		CompletedEvent{
			ProjectID:       project.ID,
			Recipient:       project.RewardsRecipient,
			RequestEpoch:    request.RequestEpoch,
			WithdrawalEpoch: currentEpoch,
			Amount:          amount,
		},
	)
	return resolution, []event.Event{evt}, nil
}

// PendingRequest returns the project's live request state, or
// ErrNoActiveRequest when the project is idle.
func (e *Engine) PendingRequest(projectID uint64) (*PendingRequest, error) {
	var view *PendingRequest
	err := e.store.Transaction(func(tx *gorm.DB) error {
		request, err := e.store.RequestByProject(tx, projectID)
		if err != nil {
			if errors.Is(err, storage.ErrRequestNotFound) {
				return ErrNoActiveRequest
			}
			return err
		}
		confirmations, err := e.store.Confirmations(tx, request.ID)
		if err != nil {
			return err
		}
		buckets, err := e.store.VoteBuckets(tx, request.ID)
		if err != nil {
			return err
		}
		providers := make([]string, 0, len(confirmations))
		for _, confirmation := range confirmations {
			providers = append(providers, confirmation.Provider)
		}
		view = &PendingRequest{
			RequestEpoch:  request.RequestEpoch,
			Confirmations: uint64(len(confirmations)),
			Providers:     providers,
			Buckets:       buckets,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// HasPendingWithdrawal reports whether the project has a live request opened
// on the given epoch.
func (e *Engine) HasPendingWithdrawal(
	projectID uint64,
	requestEpoch uint64,
) (bool, error) {
	request, err := e.store.RequestByProject(nil, projectID)
	if err != nil {
		if errors.Is(err, storage.ErrRequestNotFound) {
			return false, nil
		}
		return false, err
	}
	return request.RequestEpoch == requestEpoch, nil
}
