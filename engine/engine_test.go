// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/krisys/krisys/background"
	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/engine"
	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/fixtures"
	"github.com/krisys/krisys/storage"
	"github.com/krisys/krisys/transactionrecord"
)

func TestNewRequiresHandle(t *testing.T) {
	setupTestLogger(t)
	defer teardownTestLogger()

	_, err := engine.New(&engine.Configuration{})
	assert.Equal(t, fault.ErrNotInitialised, err, "no handle")
}

func TestGeneratedDeviceID(t *testing.T) {
	setupTestLogger(t)
	defer teardownTestLogger()

	handle := storage.NewMemory()
	e, err := engine.New(&engine.Configuration{Handle: handle})
	assert.Nil(t, err, "new")
	assert.True(t, strings.HasPrefix(e.DeviceID(), "device_"), "prefix")

	again, err := engine.New(&engine.Configuration{Handle: handle})
	assert.Nil(t, err, "reopen")
	assert.Equal(t, e.DeviceID(), again.DeviceID(), "stable id")

	other, err := engine.New(&engine.Configuration{Handle: storage.NewMemory()})
	assert.Nil(t, err, "other")
	assert.NotEqual(t, e.DeviceID(), other.DeviceID(), "distinct devices")
}

// device a has the chain and one queued message, device b has nothing
func TestExportImportBetweenDevices(t *testing.T) {
	a := setupTestLogger(t)
	defer teardownTestLogger()

	first, m, ctl := newEngine(t, a.Key)
	defer ctl.Finish()

	chain := a.Chain(2)
	chain = append(chain, a.Next(chain[1], fixtures.Transaction("tx-1", "r1", "alice", "bob")))
	m.EXPECT().FetchCrisisMetadata(gomock.Any()).Return(crisis(a), nil)
	m.EXPECT().FetchCanonicalCandidates(gomock.Any()).Return(chain, nil)
	_, err := first.Refresh(context.Background())
	assert.Nil(t, err, "refresh")

	queueOffline(t, first, m, "q1")

	raw, err := first.Export()
	assert.Nil(t, err, "export")

	second, err := engine.New(&engine.Configuration{
		Handle:   storage.NewMemory(),
		Key:      a.Key,
		DeviceID: "device-b",
		CrisisID: "crisis-1",
	})
	assert.Nil(t, err, "new")
	second.SetClock(fixedClock)

	result, err := second.Import(raw)
	assert.Nil(t, err, "import")
	assert.Equal(t, 3, result.Merge.Accepted, "blocks accepted")
	assert.Equal(t, 1, result.Import.Queued, "queued relayed")
	assert.Equal(t, 3, second.Chain().Height(), "height")
	assert.True(t, second.Ledger().IsConfirmed("r1"), "confirmation learned")
	assert.True(t, second.Queue().Has("q1"), "message carried")
	assert.Equal(t, uint64(1), second.Status().Imports, "imports")

	var p map[string]interface{}
	assert.Nil(t, json.Unmarshal(raw, &p), "payload is json")
	assert.Equal(t, "device-a", p["deviceId"], "device")
	assert.Equal(t, "crisis-1", p["crisisId"], "crisis")

	_, err = second.Import([]byte("{"))
	assert.NotNil(t, err, "garbage refused")
}

func TestTransactionsView(t *testing.T) {
	a := setupTestLogger(t)
	defer teardownTestLogger()

	e, m, ctl := newEngine(t, a.Key)
	defer ctl.Finish()

	chain := a.Chain(1)
	chain = append(chain, a.Next(chain[0],
		fixtures.Transaction("tx-1", "r1", "alice", "bob"),
		fixtures.Transaction("tx-2", "r2", "carol", "dave"),
	))
	m.EXPECT().FetchCrisisMetadata(gomock.Any()).Return(crisis(a), nil)
	m.EXPECT().FetchCanonicalCandidates(gomock.Any()).Return(chain, nil)
	_, err := e.Refresh(context.Background())
	assert.Nil(t, err, "refresh")

	m.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(fault.NetworkError("offline"))
	_, _, err = e.Send(context.Background(), transactionrecord.Transaction{
		StationAddress:   "bob",
		RelatedAddresses: []string{"alice"},
		RelayHash:        "q1",
	})
	assert.Nil(t, err, "send")

	view := e.Transactions([]string{"alice"})
	assert.Len(t, view, 2, "alice's two transactions")
	ids := map[string]bool{}
	for _, p := range view {
		ids[p.RelayHash] = p.IsConfirmed
	}
	assert.Equal(t, map[string]bool{"r1": true, "q1": false}, ids, "membership")
}

func TestStatusAndReset(t *testing.T) {
	a := setupTestLogger(t)
	defer teardownTestLogger()

	e, m, ctl := newEngine(t, a.Key)
	defer ctl.Finish()

	m.EXPECT().FetchCrisisMetadata(gomock.Any()).Return(crisis(a), nil)
	m.EXPECT().FetchCanonicalCandidates(gomock.Any()).Return(a.Chain(3), nil)
	_, err := e.Refresh(context.Background())
	assert.Nil(t, err, "refresh")
	queueOffline(t, e, m, "q1", "q2")

	s := e.Status()
	assert.Equal(t, "device-a", s.DeviceID, "device")
	assert.Equal(t, "crisis-1", s.CrisisID, "crisis")
	assert.Equal(t, "Flood", s.CrisisName, "name")
	assert.Equal(t, "Offline", s.Mode, "mode")
	assert.Equal(t, a.Key.Fingerprint(), s.TrustedKey, "key")
	assert.Equal(t, 3, s.Height, "height")
	assert.Equal(t, uint64(2), s.Tip.BlockIndex, "tip")
	assert.Equal(t, 2, s.Queued, "queued")
	assert.Equal(t, 2, s.Pending, "pending")
	assert.Equal(t, uint64(2), s.QueuedTotal, "queued total")

	assert.Nil(t, e.Reset(), "reset")
	s = e.Status()
	assert.Equal(t, 0, s.Height, "height")
	assert.Nil(t, s.Tip, "tip")
	assert.Equal(t, 0, s.Queued, "queued")
	assert.Equal(t, 0, s.Confirmed, "confirmed")
}

func TestRefresherRunsAtStart(t *testing.T) {
	a := setupTestLogger(t)
	defer teardownTestLogger()

	e, m, ctl := newEngine(t, a.Key)
	defer ctl.Finish()

	done := make(chan struct{})
	m.EXPECT().FetchCrisisMetadata(gomock.Any()).Return(crisis(a), nil)
	m.EXPECT().FetchCanonicalCandidates(gomock.Any()).DoAndReturn(
		func(ctx context.Context) ([]blockrecord.Block, error) {
			defer close(done)
			return nil, fault.NetworkError("unreachable")
		})

	p := background.Start(e.Processes(time.Hour, time.Hour, false), nil)
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("refresher did not run")
	}
	p.Stop()

	assert.Equal(t, uint64(1), e.Status().RefreshFailures, "failure counted")
}
