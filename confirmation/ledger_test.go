// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package confirmation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/krisys/krisys/confirmation"
	"github.com/krisys/krisys/storage"
	"github.com/krisys/krisys/transactionrecord"
)

type countingPruner struct {
	calls int
}

func (p *countingPruner) PruneConfirmed() int {
	p.calls += 1
	return 0
}

func TestMarkConfirmedIdempotent(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	l := confirmation.New(storage.NewMemory())
	entry := confirmation.Entry{ConfirmedAt: 1000, Source: confirmation.SourceSubmit}

	assert.True(t, l.MarkConfirmed("h", entry), "first mark")
	assert.False(t, l.MarkConfirmed("h", entry), "second mark changed state")
	assert.Equal(t, 1, l.Count(), "duplicate entries")
	assert.True(t, l.IsConfirmed("h"), "not confirmed")
	assert.False(t, l.IsConfirmed(""), "empty relay hash confirmed")
	assert.False(t, l.MarkConfirmed("", entry), "empty relay hash accepted")
}

func TestMarkConfirmedEarlierWins(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	l := confirmation.New(storage.NewMemory())
	l.MarkConfirmed("h", confirmation.Entry{ConfirmedAt: 2000, Source: "first"})

	assert.False(t, l.MarkConfirmed("h", confirmation.Entry{ConfirmedAt: 3000, Source: "later"}), "later time applied")
	e, _ := l.Get("h")
	assert.Equal(t, int64(2000), e.ConfirmedAt)
	assert.Equal(t, "first", e.Source, "later entry replaced metadata")

	assert.True(t, l.MarkConfirmed("h", confirmation.Entry{ConfirmedAt: 1500, Source: "earlier", TxID: "tx9"}), "earlier time ignored")
	e, _ = l.Get("h")
	assert.Equal(t, int64(1500), e.ConfirmedAt)
	assert.Equal(t, "earlier", e.Source)
	assert.Equal(t, "tx9", e.TxID)

	// tie keeps the existing entry
	assert.False(t, l.MarkConfirmed("h", confirmation.Entry{ConfirmedAt: 1500, Source: "tie"}), "tie changed state")
	e, _ = l.Get("h")
	assert.Equal(t, "earlier", e.Source, "tie replaced source")
}

func TestMarkConfirmedMissingTime(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	l := confirmation.New(storage.NewMemory())
	l.MarkConfirmed("h", confirmation.Entry{Source: "peer"})

	// a real time beats an unknown one
	assert.True(t, l.MarkConfirmed("h", confirmation.Entry{ConfirmedAt: 9000}), "real time ignored")
	e, _ := l.Get("h")
	assert.Equal(t, int64(9000), e.ConfirmedAt)
	assert.Equal(t, "peer", e.Source, "metadata lost")

	// an unknown time never displaces a real one but may fill blanks
	assert.True(t, l.MarkConfirmed("h", confirmation.Entry{TxID: "tx1"}), "blank not filled")
	e, _ = l.Get("h")
	assert.Equal(t, int64(9000), e.ConfirmedAt)
	assert.Equal(t, "tx1", e.TxID)
}

func TestMergeAndReload(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	h := storage.NewMemory()
	l := confirmation.New(h)
	l.MarkConfirmed("a", confirmation.Entry{ConfirmedAt: 500})

	incoming := map[string]confirmation.Entry{
		"a": {ConfirmedAt: 700},
		"b": {ConfirmedAt: 800},
		"":  {ConfirmedAt: 1},
	}
	assert.Equal(t, 1, l.Merge(incoming), "wrong change count")
	assert.Equal(t, 0, l.Merge(incoming), "merge not idempotent")

	reloaded := confirmation.New(h)
	assert.Equal(t, l.All(), reloaded.All(), "ledger not persisted")
	e, _ := reloaded.Get("a")
	assert.Equal(t, int64(500), e.ConfirmedAt, "later merge replaced earlier time")
}

func TestSyncFromTransactions(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	l := confirmation.New(storage.NewMemory())
	l.SetClock(fixedClock)
	p := &countingPruner{}

	txs := []transactionrecord.Transaction{
		{TransactionID: "t1", RelayHash: "r1", TimestampPosted: 1700000001},
		{TransactionID: "t2"},
		{TransactionID: "t3", RelayHash: "r3"},
	}
	assert.Equal(t, 2, l.SyncFromTransactions(txs, p), "wrong number confirmed")
	assert.Equal(t, 1, p.calls, "pruner not called")

	e, ok := l.Get("r1")
	assert.True(t, ok, "r1 missing")
	assert.Equal(t, confirmation.Entry{
		ConfirmedAt:     testNow.UnixNano() / 1000000,
		Source:          confirmation.SourceChain,
		TxID:            "t1",
		TimestampPosted: 1700000001,
	}, e, "wrong entry")

	assert.Equal(t, 0, l.SyncFromTransactions(txs, p), "second sync added entries")
	assert.Equal(t, 2, p.calls, "pruner not called on repeat")
	assert.Equal(t, 0, l.SyncFromTransactions(nil, nil), "nil pruner")
}

func TestCorruptAndReset(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	h := storage.NewMemory()
	_ = h.Put(storage.ConfirmedRelaysKey, []byte("[1,2"))
	l := confirmation.New(h)
	assert.Equal(t, 0, l.Count(), "corrupt data not treated as empty")

	l.MarkConfirmed("x", confirmation.Entry{ConfirmedAt: 1})
	assert.Nil(t, l.Reset(), "reset error")
	assert.Equal(t, 0, l.Count(), "reset left entries")
	assert.Nil(t, h.Get(storage.ConfirmedRelaysKey), "reset left persisted data")
}
