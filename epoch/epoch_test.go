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

package epoch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mike-CZ/ftm-gas-monetization/epoch"
)

func TestManualSource(t *testing.T) {
	src := epoch.NewManual(100)
	current, err := src.Current()
	require.NoError(t, err)
	require.Equal(t, uint64(100), current)
	require.NoError(t, src.Set(250))
	current, err = src.Current()
	require.NoError(t, err)
	require.Equal(t, uint64(250), current)
}

func TestManualSourceRejectsRewind(t *testing.T) {
	src := epoch.NewManual(100)
	err := src.Set(99)
	require.ErrorIs(t, err, epoch.ErrEpochWentBackwards)
	current, err := src.Current()
	require.NoError(t, err)
	require.Equal(t, uint64(100), current)
}
