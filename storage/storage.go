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

package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/Mike-CZ/ftm-gas-monetization/storage/models"
)

// memoryStoreSeq names in-memory databases so separate stores don't share state
var memoryStoreSeq atomic.Uint64

// Store is the SQLite-backed persistence layer shared by the registry, the
// funding tracker, and the withdrawal engine. All state-mutating operations
// run inside a single SQLite transaction, which provides the all-or-nothing
// call semantics the consensus protocol requires.
type Store struct {
	db      *gorm.DB
	logger  *slog.Logger
	dataDir string
}

// New creates a Store. Uses an in-memory database when dataDir is empty,
// which is useful for testing and development mode.
func New(dataDir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var db *gorm.DB
	var err error
	if dataDir == "" {
		// cache=shared allows multiple connections to share the same in-memory
		// database, while the per-store name keeps separate stores isolated
		dsn := fmt.Sprintf(
			"file:gasmon-%d?mode=memory&cache=shared",
			memoryStoreSeq.Add(1),
		)
		db, err = gorm.Open(
			sqlite.Open(dsn),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
		if err != nil {
			return nil, err
		}
	} else {
		if _, err := os.Stat(dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(dataDir, fs.ModePerm); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		dbPath := filepath.Join(dataDir, "gasmon.sqlite")
		// WAL journal mode so readers don't block the serialized writers
		connOpts := "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		db, err = gorm.Open(
			sqlite.Open(fmt.Sprintf("file:%s?%s", dbPath, connOpts)),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
		if err != nil {
			return nil, err
		}
	}
	s := &Store{
		db:      db,
		logger:  logger,
		dataDir: dataDir,
	}
	// Configure tracing for GORM
	if err := s.db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}
	for _, model := range models.MigrateModels {
		s.logger.Debug(fmt.Sprintf("creating table: %#v", model))
		if err := s.db.AutoMigrate(model); err != nil {
			return nil, err
		}
	}
	if err := s.seedSingletons(); err != nil {
		return nil, err
	}
	return s, nil
}

// seedSingletons makes sure the singleton funding-state and settings rows
// exist so later updates can assume their presence.
func (s *Store) seedSingletons() error {
	fundingState := models.FundingState{ID: models.FundingStateID}
	result := s.db.FirstOrCreate(
		&fundingState,
		models.FundingState{ID: models.FundingStateID},
	)
	if result.Error != nil {
		return result.Error
	}
	settings := models.WithdrawalSettings{ID: models.WithdrawalSettingsID}
	result = s.db.FirstOrCreate(
		&settings,
		models.WithdrawalSettings{ID: models.WithdrawalSettingsID},
	)
	return result.Error
}

// DB returns the underlying gorm handle for read-only queries outside a
// transaction.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// DataDir returns the path to the data directory used for storage
func (s *Store) DataDir() string {
	return s.dataDir
}

// Transaction runs fn inside a database transaction. A non-nil error from
// fn rolls everything back.
func (s *Store) Transaction(fn func(tx *gorm.DB) error) error {
	return s.db.Transaction(fn)
}

// Close cleans up the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// handle resolves an optional transaction handle to a usable gorm handle
func (s *Store) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}
