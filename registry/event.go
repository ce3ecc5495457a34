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
	"github.com/Mike-CZ/ftm-gas-monetization/event"
)

const (
	ProjectAddedEventType            event.EventType = "registry.project_added"
	ProjectSuspendedEventType        event.EventType = "registry.project_suspended"
	ProjectEnabledEventType          event.EventType = "registry.project_enabled"
	ContractAddedEventType           event.EventType = "registry.contract_added"
	ContractRemovedEventType         event.EventType = "registry.contract_removed"
	MetadataURIUpdatedEventType      event.EventType = "registry.metadata_uri_updated"
	RewardsRecipientUpdatedEventType event.EventType = "registry.rewards_recipient_updated"
	OwnerUpdatedEventType            event.EventType = "registry.owner_updated"
)

type ProjectAddedEvent struct {
	Owner            string
	RewardsRecipient string
	MetadataURI      string
	Contracts        []string
	ProjectID        uint64
	ActiveFromEpoch  uint64
}

type ProjectSuspendedEvent struct {
	ProjectID        uint64
	SuspendedOnEpoch uint64
}

type ProjectEnabledEvent struct {
	ProjectID      uint64
	EnabledOnEpoch uint64
}

type ContractAddedEvent struct {
	ContractAddress string
	ProjectID       uint64
}

type ContractRemovedEvent struct {
	ContractAddress string
	ProjectID       uint64
}

type MetadataURIUpdatedEvent struct {
	MetadataURI string
	ProjectID   uint64
}

type RewardsRecipientUpdatedEvent struct {
	Recipient string
	ProjectID uint64
}

type OwnerUpdatedEvent struct {
	Owner     string
	ProjectID uint64
}
