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

package epoch

import (
	"errors"
	"sync"
)

// Source supplies the monotonically non-decreasing epoch counter used for
// all timing comparisons. Implementations must return the live value on
// every call; callers never cache the result.
type Source interface {
	Current() (uint64, error)
}

var ErrEpochWentBackwards = errors.New("epoch counter went backwards")

// Manual is an epoch source driven by explicit Set calls. It is used in
// development mode and in tests, where epoch progression is controlled by
// the operator rather than observed from a chain.
type Manual struct {
	mu      sync.RWMutex
	current uint64
}

func NewManual(start uint64) *Manual {
	return &Manual{current: start}
}

func (m *Manual) Current() (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, nil
}

// Set advances the epoch counter. Moving the counter backwards is rejected
// to preserve the monotonicity guarantee that all throttle arithmetic
// depends on.
func (m *Manual) Set(epoch uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch < m.current {
		return ErrEpochWentBackwards
	}
	m.current = epoch
	return nil
}
