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

package gasmon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Mike-CZ/ftm-gas-monetization/withdrawal"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, ":8080", cfg.listenAddress)
	assert.Equal(t, withdrawal.ModeSingleValue, cfg.withdrawalMode)
	assert.Equal(t, uint64(1), cfg.confirmationsLimit)
	assert.Equal(t, "", cfg.dataDir)
	assert.NotNil(t, cfg.logger)
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithDataDir("/tmp/gasmon"),
		WithListenAddress("127.0.0.1:9000"),
		WithAdminAddress("0xAdmin"),
		WithWithdrawalMode(withdrawal.ModeTally),
		WithEpochsLimit(3),
		WithConfirmationsLimit(5),
		WithAllowedDeviation(2),
		WithTracing(true),
		WithTracingStdout(true),
		WithShutdownTimeout(10*time.Second),
	)

	assert.Equal(t, "/tmp/gasmon", cfg.dataDir)
	assert.Equal(t, "127.0.0.1:9000", cfg.listenAddress)
	assert.Equal(t, "0xAdmin", cfg.adminAddress)
	assert.Equal(t, withdrawal.ModeTally, cfg.withdrawalMode)
	assert.Equal(t, uint64(3), cfg.epochsLimit)
	assert.Equal(t, uint64(5), cfg.confirmationsLimit)
	assert.Equal(t, uint64(2), cfg.allowedDeviation)
	assert.True(t, cfg.tracing)
	assert.True(t, cfg.tracingStdout)
	assert.Equal(t, 10*time.Second, cfg.shutdownTimeout)
}

func TestConfigValidate(t *testing.T) {
	cfg := NewConfig()
	assert.Error(t, cfg.validate())

	cfg = NewConfig(WithAdminAddress("0xAdmin"))
	assert.NoError(t, cfg.validate())

	cfg = NewConfig(
		WithAdminAddress("0xAdmin"),
		WithWithdrawalMode("majority"),
	)
	assert.ErrorIs(t, cfg.validate(), withdrawal.ErrUnknownMode)

	cfg = NewConfig(
		WithAdminAddress("0xAdmin"),
		WithConfirmationsLimit(0),
	)
	assert.ErrorIs(t, cfg.validate(), withdrawal.ErrZeroConfirmationsLimit)
}
