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

package registry

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
)

// Project is the external view of a registered project, including its
// contract addresses in registration order.
type Project struct {
	Owner               string
	RewardsRecipient    string
	MetadataURI         string
	Contracts           []string
	ID                  uint64
	LastWithdrawalEpoch uint64
	ActiveFromEpoch     uint64
	ActiveToEpoch       uint64
}

// Registry owns project records and the contract ownership map. Project and
// contract tables are kept as two independent indexed tables with the
// bidirectional membership invariant re-established at every mutation
// point.
type Registry struct {
	store    *storage.Store
	auth     auth.Authorizer
	epochs   epoch.Source
	eventBus *event.EventBus
	logger   *slog.Logger
	metrics  struct {
		projectsAdded     prometheus.Counter
		projectsSuspended prometheus.Counter
	}
}

func New(
	store *storage.Store,
	authorizer auth.Authorizer,
	epochs epoch.Source,
	eventBus *event.EventBus,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) *Registry {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	r := &Registry{
		store:    store,
		auth:     authorizer,
		epochs:   epochs,
		eventBus: eventBus,
		logger:   logger.With("component", "registry"),
	}
	promautoFactory := promauto.With(promRegistry)
	r.metrics.projectsAdded = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "gasmon_projects_added_total",
			Help: "total projects registered",
		},
	)
	r.metrics.projectsSuspended = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "gasmon_projects_suspended_total",
			Help: "total project suspensions",
		},
	)
	return r
}

// AddProject registers a new project with its initial contract set and
// returns the assigned project id. Projects-manager only.
func (r *Registry) AddProject(
	caller string,
	owner string,
	rewardsRecipient string,
	metadataURI string,
	contracts []string,
) (uint64, error) {
	if err := r.requireManager(caller); err != nil {
		return 0, err
	}
	if owner == "" || rewardsRecipient == "" {
		return 0, ErrEmptyAddress
	}
	if metadataURI == "" {
		return 0, ErrEmptyMetadataURI
	}
	currentEpoch, err := r.epochs.Current()
	if err != nil {
		return 0, err
	}
	project := models.Project{
		OwnerAddress:     owner,
		RewardsRecipient: rewardsRecipient,
		MetadataURI:      metadataURI,
		ActiveFromEpoch:  currentEpoch,
	}
	err = r.store.Transaction(func(tx *gorm.DB) error {
		for _, address := range contracts {
			if err := r.checkUnregistered(tx, address); err != nil {
				return err
			}
		}
		if err := r.store.CreateProject(tx, &project); err != nil {
			return err
		}
		for _, address := range contracts {
			contract := models.ProjectContract{
				Address:   address,
				ProjectID: project.ID,
			}
			if err := r.store.CreateContract(tx, &contract); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	r.metrics.projectsAdded.Inc()
	r.logger.Info(
		"project added",
		"project_id", project.ID,
		"owner", owner,
	)
	r.eventBus.Publish(
		ProjectAddedEventType,
		event.NewEvent(ProjectAddedEventType, ProjectAddedEvent{
			ProjectID:        project.ID,
			Owner:            owner,
			RewardsRecipient: rewardsRecipient,
			MetadataURI:      metadataURI,
			ActiveFromEpoch:  currentEpoch,
			Contracts:        contracts,
		}),
	)
	return project.ID, nil
}

// SuspendProject marks the project inactive as of the current epoch.
// Projects-manager only. Fails when the project is already suspended.
func (r *Registry) SuspendProject(caller string, projectID uint64) error {
	if err := r.requireManager(caller); err != nil {
		return err
	}
	currentEpoch, err := r.epochs.Current()
	if err != nil {
		return err
	}
	err = r.store.Transaction(func(tx *gorm.DB) error {
		project, err := r.store.ProjectByID(tx, projectID)
		if err != nil {
			return mapNotFound(err)
		}
		if project.Suspended() {
			return ErrProjectSuspended
		}
		project.ActiveToEpoch = currentEpoch
		return r.store.UpdateProject(tx, project)
	})
	if err != nil {
		return err
	}
	r.metrics.projectsSuspended.Inc()
	r.logger.Info(
		"project suspended",
		"project_id", projectID,
		"epoch", currentEpoch,
	)
	r.eventBus.Publish(
		ProjectSuspendedEventType,
		event.NewEvent(ProjectSuspendedEventType, ProjectSuspendedEvent{
			ProjectID:        projectID,
			SuspendedOnEpoch: currentEpoch,
		}),
	)
	return nil
}

// EnableProject reactivates a suspended project as of the current epoch.
// Projects-manager only. Fails when the project is already active.
func (r *Registry) EnableProject(caller string, projectID uint64) error {
	if err := r.requireManager(caller); err != nil {
		return err
	}
	currentEpoch, err := r.epochs.Current()
	if err != nil {
		return err
	}
	err = r.store.Transaction(func(tx *gorm.DB) error {
		project, err := r.store.ProjectByID(tx, projectID)
		if err != nil {
			return mapNotFound(err)
		}
		if !project.Suspended() {
			return ErrProjectActive
		}
		project.ActiveFromEpoch = currentEpoch
		project.ActiveToEpoch = 0
		return r.store.UpdateProject(tx, project)
	})
	if err != nil {
		return err
	}
	r.logger.Info(
		"project enabled",
		"project_id", projectID,
		"epoch", currentEpoch,
	)
	r.eventBus.Publish(
		ProjectEnabledEventType,
		event.NewEvent(ProjectEnabledEventType, ProjectEnabledEvent{
			ProjectID:      projectID,
			EnabledOnEpoch: currentEpoch,
		}),
	)
	return nil
}

// AddProjectContract registers another contract address for the project.
// Projects-manager only. Fails when the address is already owned by any
// project.
func (r *Registry) AddProjectContract(
	caller string,
	projectID uint64,
	address string,
) error {
	if err := r.requireManager(caller); err != nil {
		return err
	}
	if address == "" {
		return ErrEmptyAddress
	}
	err := r.store.Transaction(func(tx *gorm.DB) error {
		if _, err := r.store.ProjectByID(tx, projectID); err != nil {
			return mapNotFound(err)
		}
		if err := r.checkUnregistered(tx, address); err != nil {
			return err
		}
		contract := models.ProjectContract{
			Address:   address,
			ProjectID: projectID,
		}
		return r.store.CreateContract(tx, &contract)
	})
	if err != nil {
		return err
	}
	r.logger.Info(
		"contract added",
		"project_id", projectID,
		"address", address,
	)
	r.eventBus.Publish(
		ContractAddedEventType,
		event.NewEvent(ContractAddedEventType, ContractAddedEvent{
			ProjectID:       projectID,
			ContractAddress: address,
		}),
	)
	return nil
}

// RemoveProjectContract unregisters a contract address from the project.
// Projects-manager only. Fails when the mapping does not point at the given
// project.
func (r *Registry) RemoveProjectContract(
	caller string,
	projectID uint64,
	address string,
) error {
	if err := r.requireManager(caller); err != nil {
		return err
	}
	err := r.store.Transaction(func(tx *gorm.DB) error {
		if _, err := r.store.ProjectByID(tx, projectID); err != nil {
			return mapNotFound(err)
		}
		contract, err := r.store.ContractByAddress(tx, address)
		if err != nil {
			if errors.Is(err, storage.ErrContractNotFound) {
				return ErrContractNotOwned
			}
			return err
		}
		if contract.ProjectID != projectID {
			return ErrContractNotOwned
		}
		return r.store.DeleteContract(tx, contract)
	})
	if err != nil {
		return err
	}
	r.logger.Info(
		"contract removed",
		"project_id", projectID,
		"address", address,
	)
	r.eventBus.Publish(
		ContractRemovedEventType,
		event.NewEvent(ContractRemovedEventType, ContractRemovedEvent{
			ProjectID:       projectID,
			ContractAddress: address,
		}),
	)
	return nil
}

// UpdateMetadataURI replaces the project's metadata reference.
// Projects-manager only.
func (r *Registry) UpdateMetadataURI(
	caller string,
	projectID uint64,
	metadataURI string,
) error {
	if err := r.requireManager(caller); err != nil {
		return err
	}
	if metadataURI == "" {
		return ErrEmptyMetadataURI
	}
	err := r.store.Transaction(func(tx *gorm.DB) error {
		project, err := r.store.ProjectByID(tx, projectID)
		if err != nil {
			return mapNotFound(err)
		}
		project.MetadataURI = metadataURI
		return r.store.UpdateProject(tx, project)
	})
	if err != nil {
		return err
	}
	r.eventBus.Publish(
		MetadataURIUpdatedEventType,
		event.NewEvent(MetadataURIUpdatedEventType, MetadataURIUpdatedEvent{
			ProjectID:   projectID,
			MetadataURI: metadataURI,
		}),
	)
	return nil
}

// UpdateRewardsRecipient replaces the project's rewards recipient. Owner
// only, checked by equality against the recorded owner rather than by role.
func (r *Registry) UpdateRewardsRecipient(
	caller string,
	projectID uint64,
	recipient string,
) error {
	if recipient == "" {
		return ErrEmptyAddress
	}
	err := r.store.Transaction(func(tx *gorm.DB) error {
		project, err := r.store.ProjectByID(tx, projectID)
		if err != nil {
			return mapNotFound(err)
		}
		if project.OwnerAddress != caller {
			return ErrNotProjectOwner
		}
		project.RewardsRecipient = recipient
		return r.store.UpdateProject(tx, project)
	})
	if err != nil {
		return err
	}
	r.eventBus.Publish(
		RewardsRecipientUpdatedEventType,
		event.NewEvent(
			RewardsRecipientUpdatedEventType,
			RewardsRecipientUpdatedEvent{
				ProjectID: projectID,
				Recipient: recipient,
			},
		),
	)
	return nil
}

// UpdateOwner replaces the project's owner. Projects-manager only.
func (r *Registry) UpdateOwner(
	caller string,
	projectID uint64,
	newOwner string,
) error {
	if err := r.requireManager(caller); err != nil {
		return err
	}
	if newOwner == "" {
		return ErrEmptyAddress
	}
	err := r.store.Transaction(func(tx *gorm.DB) error {
		project, err := r.store.ProjectByID(tx, projectID)
		if err != nil {
			return mapNotFound(err)
		}
		project.OwnerAddress = newOwner
		return r.store.UpdateProject(tx, project)
	})
	if err != nil {
		return err
	}
	r.eventBus.Publish(
		OwnerUpdatedEventType,
		event.NewEvent(OwnerUpdatedEventType, OwnerUpdatedEvent{
			ProjectID: projectID,
			Owner:     newOwner,
		}),
	)
	return nil
}

// ProjectByID returns the external view of a project
func (r *Registry) ProjectByID(projectID uint64) (*Project, error) {
	var view *Project
	err := r.store.Transaction(func(tx *gorm.DB) error {
		project, err := r.store.ProjectByID(tx, projectID)
		if err != nil {
			return mapNotFound(err)
		}
		contracts, err := r.store.ProjectContracts(tx, projectID)
		if err != nil {
			return err
		}
		addresses := make([]string, 0, len(contracts))
		for _, contract := range contracts {
			addresses = append(addresses, contract.Address)
		}
		view = &Project{
			ID:                  project.ID,
			Owner:               project.OwnerAddress,
			RewardsRecipient:    project.RewardsRecipient,
			MetadataURI:         project.MetadataURI,
			Contracts:           addresses,
			LastWithdrawalEpoch: project.LastWithdrawalEpoch,
			ActiveFromEpoch:     project.ActiveFromEpoch,
			ActiveToEpoch:       project.ActiveToEpoch,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ProjectIDOfContract returns the id of the project owning the contract
// address, or 0 when the address is unregistered.
func (r *Registry) ProjectIDOfContract(address string) (uint64, error) {
	contract, err := r.store.ContractByAddress(nil, address)
	if err != nil {
		if errors.Is(err, storage.ErrContractNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return contract.ProjectID, nil
}

func (r *Registry) requireManager(caller string) error {
	isManager, err := r.auth.HasRole(auth.RoleProjectsManager, caller)
	if err != nil {
		return err
	}
	if !isManager {
		return ErrNotProjectsManager
	}
	return nil
}

// checkUnregistered fails when the contract address is already owned by any
// project.
func (r *Registry) checkUnregistered(tx *gorm.DB, address string) error {
	_, err := r.store.ContractByAddress(tx, address)
	if err == nil {
		return ErrContractRegistered
	}
	if errors.Is(err, storage.ErrContractNotFound) {
		return nil
	}
	return err
}

func mapNotFound(err error) error {
	if errors.Is(err, storage.ErrProjectNotFound) {
		return ErrProjectNotFound
	}
	return err
}
