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

package audit_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mike-CZ/ftm-gas-monetization/audit"
	"github.com/Mike-CZ/ftm-gas-monetization/event"
)

const testEventType event.EventType = "test.event"

type testPayload struct {
	Value string `json:"value"`
}

func newTestJournal(
	t *testing.T,
) (*audit.Journal, *event.EventBus) {
	t.Helper()
	eventBus := event.NewEventBus(nil, nil)
	journal, err := audit.New("", eventBus, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		//nolint:errcheck
		journal.Close()
		eventBus.Stop()
	})
	return journal, eventBus
}

func waitForRecords(
	t *testing.T,
	journal *audit.Journal,
	count int,
) []audit.Record {
	t.Helper()
	var records []audit.Record
	require.Eventually(t, func() bool {
		var err error
		records, err = journal.Records(0, 0)
		require.NoError(t, err)
		return len(records) >= count
	}, 5*time.Second, 10*time.Millisecond)
	return records
}

func TestJournalRecordsWatchedEvents(t *testing.T) {
	journal, eventBus := newTestJournal(t)
	journal.Watch(testEventType)

	eventBus.Publish(
		testEventType,
		event.NewEvent(testEventType, testPayload{Value: "first"}),
	)
	eventBus.Publish(
		testEventType,
		event.NewEvent(testEventType, testPayload{Value: "second"}),
	)

	records := waitForRecords(t, journal, 2)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(0), records[0].Seq)
	assert.Equal(t, uint64(1), records[1].Seq)
	assert.Equal(t, string(testEventType), records[0].Type)

	var payload testPayload
	require.NoError(t, json.Unmarshal(records[0].Data, &payload))
	assert.Equal(t, "first", payload.Value)
	require.NoError(t, json.Unmarshal(records[1].Data, &payload))
	assert.Equal(t, "second", payload.Value)
}

func TestJournalIgnoresUnwatchedEvents(t *testing.T) {
	journal, eventBus := newTestJournal(t)
	journal.Watch(testEventType)

	eventBus.Publish(
		"other.event",
		event.NewEvent("other.event", testPayload{Value: "ignored"}),
	)
	eventBus.Publish(
		testEventType,
		event.NewEvent(testEventType, testPayload{Value: "kept"}),
	)

	records := waitForRecords(t, journal, 1)
	require.Len(t, records, 1)
	assert.Equal(t, string(testEventType), records[0].Type)
}

func TestRecordsPagination(t *testing.T) {
	journal, eventBus := newTestJournal(t)
	journal.Watch(testEventType)

	for range 5 {
		eventBus.Publish(
			testEventType,
			event.NewEvent(testEventType, testPayload{Value: "entry"}),
		)
	}
	waitForRecords(t, journal, 5)

	page, err := journal.Records(2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(2), page[0].Seq)
	assert.Equal(t, uint64(3), page[1].Seq)

	tail, err := journal.Records(4, 0)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, uint64(4), tail[0].Seq)
}

func TestJournalSeqResumesFromDisk(t *testing.T) {
	dataDir := t.TempDir()
	eventBus := event.NewEventBus(nil, nil)
	defer eventBus.Stop()

	journal, err := audit.New(dataDir, eventBus, nil)
	require.NoError(t, err)
	journal.Watch(testEventType)
	eventBus.Publish(
		testEventType,
		event.NewEvent(testEventType, testPayload{Value: "before"}),
	)
	waitForRecords(t, journal, 1)
	require.NoError(t, journal.Close())

	reopened, err := audit.New(dataDir, eventBus, nil)
	require.NoError(t, err)
	defer reopened.Close()
	reopened.Watch(testEventType)
	eventBus.Publish(
		testEventType,
		event.NewEvent(testEventType, testPayload{Value: "after"}),
	)
	records := waitForRecords(t, reopened, 2)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(1), records[1].Seq)
}
