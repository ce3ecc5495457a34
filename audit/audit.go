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

package audit

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/Mike-CZ/ftm-gas-monetization/event"
)

// Journal persists every domain event as a JSON record keyed by a monotonic
// sequence number, so external indexers can replay the full audit trail.
// The engines never read it back.
type Journal struct {
	db       *badger.DB
	eventBus *event.EventBus
	logger   *slog.Logger
	subs     map[event.EventType]event.EventSubscriberId
	nextSeq  uint64
	mu       sync.Mutex
}

// Record is a single journal entry
type Record struct {
	Timestamp time.Time       `json:"timestamp"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Seq       uint64          `json:"seq"`
}

// New opens the journal store. Uses an in-memory store when dataDir is
// empty.
func New(
	dataDir string,
	eventBus *event.EventBus,
	logger *slog.Logger,
) (*Journal, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	logger = logger.With("component", "audit")
	var opts badger.Options
	if dataDir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Join(dataDir, "audit"))
	}
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit store: %w", err)
	}
	j := &Journal{
		db:       db,
		eventBus: eventBus,
		logger:   logger,
		subs:     make(map[event.EventType]event.EventSubscriberId),
	}
	if err := j.loadNextSeq(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// loadNextSeq resumes the sequence counter from the last persisted record
func (j *Journal) loadNextSeq() error {
	return j.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Reverse = true
		iterOpts.PrefetchValues = false
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		it.Seek([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
		if it.Valid() {
			j.nextSeq = binary.BigEndian.Uint64(it.Item().Key()) + 1
		}
		return nil
	})
}

// Watch subscribes the journal to the given event types on the bus
func (j *Journal) Watch(eventTypes ...event.EventType) {
	for _, eventType := range eventTypes {
		if _, ok := j.subs[eventType]; ok {
			continue
		}
		j.subs[eventType] = j.eventBus.SubscribeFunc(
			eventType,
			j.record,
		)
	}
}

func (j *Journal) record(evt event.Event) {
	data, err := json.Marshal(evt.Data)
	if err != nil {
		j.logger.Error(
			"failed to encode event payload",
			"type", evt.Type,
			"error", err,
		)
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	rec := Record{
		Seq:       j.nextSeq,
		Timestamp: evt.Timestamp,
		Type:      string(evt.Type),
		Data:      data,
	}
	encoded, err := json.Marshal(rec)
	if err != nil {
		j.logger.Error(
			"failed to encode journal record",
			"type", evt.Type,
			"error", err,
		)
		return
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, rec.Seq)
	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, encoded)
	})
	if err != nil {
		j.logger.Error(
			"failed to persist journal record",
			"type", evt.Type,
			"error", err,
		)
		return
	}
	j.nextSeq++
}

// Records returns up to limit records starting at fromSeq, in sequence
// order. A limit of 0 means no limit.
func (j *Journal) Records(fromSeq uint64, limit int) ([]Record, error) {
	var records []Record
	err := j.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		start := make([]byte, 8)
		binary.BigEndian.PutUint64(start, fromSeq)
		for it.Seek(start); it.Valid(); it.Next() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var rec Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Close stops event delivery and closes the underlying store
func (j *Journal) Close() error {
	for eventType, subId := range j.subs {
		j.eventBus.Unsubscribe(eventType, subId)
		delete(j.subs, eventType)
	}
	return j.db.Close()
}
