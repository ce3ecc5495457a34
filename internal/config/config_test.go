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

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func resetGlobalConfig() {
	globalConfig = &Config{
		DatabasePath:       "",
		ListenAddress:      ":8080",
		WithdrawalMode:     WithdrawalModeSingle,
		ShutdownTimeout:    DefaultShutdownTimeout,
		EpochsLimit:        0,
		ConfirmationsLimit: 1,
		AllowedDeviation:   0,
		InitialEpoch:       1,
	}
}

func TestLoad_CompareFullStruct(t *testing.T) {
	resetGlobalConfig()
	yamlContent := `
databasePath: "/var/lib/gasmon"
listenAddress: "127.0.0.1:9000"
adminAddress: "0xAdmin"
withdrawalMode: "tally"
shutdownTimeout: "10s"
epochsLimit: 5
confirmationsLimit: 3
allowedDeviation: 1
initialEpoch: 100
tracing: true
tracingStdout: true
`

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test-gasmon.yaml")

	err := os.WriteFile(tmpFile, []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	defer os.Remove(tmpFile)

	expected := &Config{
		DatabasePath:       "/var/lib/gasmon",
		ListenAddress:      "127.0.0.1:9000",
		AdminAddress:       "0xAdmin",
		WithdrawalMode:     WithdrawalModeTally,
		ShutdownTimeout:    "10s",
		EpochsLimit:        5,
		ConfirmationsLimit: 3,
		AllowedDeviation:   1,
		InitialEpoch:       100,
		Tracing:            true,
		TracingStdout:      true,
	}

	actual, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if !reflect.DeepEqual(actual, expected) {
		t.Errorf(
			"Loaded config does not match expected.\nActual: %+v\nExpected: %+v",
			actual,
			expected,
		)
	}
}

func TestLoad_WithoutConfigFile_UsesDefaults(t *testing.T) {
	resetGlobalConfig()

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	expected := &Config{
		DatabasePath:       "",
		ListenAddress:      ":8080",
		WithdrawalMode:     WithdrawalModeSingle,
		ShutdownTimeout:    DefaultShutdownTimeout,
		EpochsLimit:        0,
		ConfirmationsLimit: 1,
		AllowedDeviation:   0,
		InitialEpoch:       1,
	}

	if !reflect.DeepEqual(cfg, expected) {
		t.Errorf(
			"Loaded config does not match expected.\nActual: %+v\nExpected: %+v",
			cfg,
			expected,
		)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	resetGlobalConfig()
	t.Setenv("GASMON_ADMIN_ADDRESS", "0xEnvAdmin")
	t.Setenv("GASMON_WITHDRAWAL_MODE", "tally")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.AdminAddress != "0xEnvAdmin" {
		t.Errorf("unexpected admin address: %q", cfg.AdminAddress)
	}
	if cfg.WithdrawalMode != WithdrawalModeTally {
		t.Errorf("unexpected withdrawal mode: %q", cfg.WithdrawalMode)
	}
}

func TestLoad_InvalidMode(t *testing.T) {
	resetGlobalConfig()
	yamlContent := `
withdrawalMode: "majority"
`
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test-gasmon.yaml")

	if err := os.WriteFile(tmpFile, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadConfig(tmpFile); err == nil {
		t.Fatal("expected error for invalid withdrawal mode")
	}
}

func TestWithdrawalModeValid(t *testing.T) {
	tests := []struct {
		mode  WithdrawalMode
		valid bool
	}{
		{WithdrawalModeSingle, true},
		{WithdrawalModeTally, true},
		{"", true},
		{"majority", false},
	}
	for _, tt := range tests {
		if got := tt.mode.Valid(); got != tt.valid {
			t.Errorf("mode=%q: expected %v, got %v", tt.mode, tt.valid, got)
		}
	}
}
