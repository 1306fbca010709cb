// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package synchronise_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/krisys/krisys/block"
	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/confirmation"
	"github.com/krisys/krisys/fixtures"
	"github.com/krisys/krisys/reservoir"
	"github.com/krisys/krisys/storage"
	"github.com/krisys/krisys/synchronise"
)

const testingDirName = "testing"

var (
	testNow       = time.Unix(1700000000, 0)
	testAuthority *fixtures.Authority
)

func fixedClock() time.Time {
	return testNow
}

func removeDir(dirName string) {
	dirPath, _ := filepath.Abs(dirName)
	_ = os.RemoveAll(dirPath)
}

func setupTestLogger(t *testing.T) *fixtures.Authority {
	removeDir(testingDirName)
	_ = os.Mkdir(testingDirName, 0o700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)

	if nil == testAuthority {
		a, err := fixtures.NewAuthority("sync-test")
		if nil != err {
			t.Fatalf("authority error: %s", err)
		}
		testAuthority = a
	}
	return testAuthority
}

func teardownTestLogger() {
	logger.Finalise()
	removeDir(testingDirName)
}

// one device's complete local state
type device struct {
	handle *storage.Memory
	chain  *block.Store
	ledger *confirmation.Ledger
	queue  *reservoir.Queue
	keys   *blockrecord.KeyHolder
	sync   *synchronise.Synchroniser
}

func newDevice(id string, key *blockrecord.TrustedKey) *device {
	d := &device{
		handle: storage.NewMemory(),
		keys:   blockrecord.NewKeyHolder(key),
	}
	d.chain = block.New(d.handle)
	d.ledger = confirmation.New(d.handle)
	d.ledger.SetClock(fixedClock)
	d.queue = reservoir.New(d.handle, d.ledger)
	d.queue.SetClock(fixedClock)
	d.sync = synchronise.New(&synchronise.Configuration{
		Chain:    d.chain,
		Ledger:   d.ledger,
		Queue:    d.queue,
		Keys:     d.keys,
		DeviceID: id,
		CrisisID: "crisis-1",
	})
	d.sync.SetClock(fixedClock)
	return d
}

// a well formed queued entry as a peer would send it
func queuedEntry(relayHash string, origin string) map[string]interface{} {
	return map[string]interface{}{
		"transaction_id":    "local-" + relayHash,
		"timestamp_created": 1700000000,
		"timestamp_posted":  0,
		"station_address":   "alice",
		"message_data":      "hello",
		"related_addresses": []string{"bob"},
		"relay_hash":        relayHash,
		"type_field":        "message",
		"priority_level":    3,
		"origin_device":     origin,
		"queuedAt":          int64(1699999990000),
		"attempts":          1,
		"status":            "pending",
	}
}

func rawPayload(t *testing.T, fields map[string]interface{}) []byte {
	p := map[string]interface{}{
		"version":     1,
		"deviceId":    "peer",
		"crisisId":    "crisis-1",
		"generatedAt": int64(1699999999000),
	}
	for k, v := range fields {
		p[k] = v
	}
	data, err := json.Marshal(p)
	if nil != err {
		t.Fatalf("marshal error: %s", err)
	}
	return data
}
