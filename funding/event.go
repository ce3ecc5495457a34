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

package funding

import (
	"github.com/Mike-CZ/ftm-gas-monetization/event"
)

const (
	FundsAddedEventType     event.EventType = "funding.funds_added"
	FundsWithdrawnEventType event.EventType = "funding.funds_withdrawn"
)

type FundsAddedEvent struct {
	Funder string
	Amount uint64
	Epoch  uint64
}

type FundsWithdrawnEvent struct {
	Recipient string
	Amount    uint64
}
