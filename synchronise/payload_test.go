// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package synchronise_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/krisys/krisys/confirmation"
	"github.com/krisys/krisys/synchronise"
	"github.com/krisys/krisys/transactionrecord"
)

func TestConfirmedListOrder(t *testing.T) {
	list := synchronise.ConfirmedList{
		{RelayHash: "zeta", Entry: confirmation.Entry{ConfirmedAt: 2}},
		{RelayHash: "alpha", Entry: confirmation.Entry{ConfirmedAt: 1, TxID: "t"}},
	}

	data, err := json.Marshal(list)
	assert.Nil(t, err, "marshal error")
	assert.Equal(t, `{"zeta":{"confirmedAt":2},"alpha":{"confirmedAt":1,"txId":"t"}}`, string(data))

	var decoded synchronise.ConfirmedList
	err = json.Unmarshal(data, &decoded)
	assert.Nil(t, err, "unmarshal error")
	assert.Equal(t, list, decoded, "order not preserved")

	err = json.Unmarshal([]byte(`["a"]`), &decoded)
	assert.NotNil(t, err, "array accepted")
}

func TestBuildPayload(t *testing.T) {
	a := setupTestLogger(t)
	defer teardownTestLogger()

	d := newDevice("local", a.Key)
	chain := a.Chain(15)
	_ = d.chain.Replace(chain)

	for i := 0; i < 120; i += 1 {
		_, _ = d.queue.Enqueue(transactionrecord.Transaction{RelayHash: fmt.Sprintf("q%03d", i), PriorityLevel: 3})
	}
	_ = d.queue.MarkSent("q000", 1)
	for i := 0; i < 600; i += 1 {
		d.ledger.MarkConfirmed(fmt.Sprintf("c%03d", i), confirmation.Entry{ConfirmedAt: int64(i + 1)})
	}

	p := d.sync.BuildPayload()
	assert.Equal(t, uint32(synchronise.PayloadVersion), p.Version)
	assert.Equal(t, "local", p.DeviceID)
	assert.Equal(t, "crisis-1", p.CrisisID)
	assert.Equal(t, testNow.Unix()*1000, p.GeneratedAt)

	assert.Equal(t, chain[5:], p.Blocks, "wrong chain suffix")
	if assert.NotNil(t, p.ChainTip) {
		assert.Equal(t, chain[14].Header(), *p.ChainTip)
	}

	assert.Equal(t, 119, len(p.Queued), "every pending entry exported")
	assert.Equal(t, "q001", p.Queued[0].RelayHash, "sent entry exported")

	assert.Equal(t, 600, len(p.Confirmed), "full confirmation map exported")
	assert.Equal(t, "c599", p.Confirmed[0].RelayHash, "not newest first")
	assert.Equal(t, "c000", p.Confirmed[599].RelayHash)

	// building does not modify anything
	assert.Equal(t, 120, d.queue.Count())
	assert.Equal(t, 600, d.ledger.Count())
}

func TestBuildPayloadEmptyChain(t *testing.T) {
	setupTestLogger(t)
	defer teardownTestLogger()

	d := newDevice("local", nil)
	p := d.sync.BuildPayload()
	assert.Nil(t, p.ChainTip)
	assert.Equal(t, 0, len(p.Blocks))

	data, err := json.Marshal(p)
	assert.Nil(t, err, "marshal error")
	var back map[string]interface{}
	_ = json.Unmarshal(data, &back)
	_, hasTip := back["chain_tip"]
	assert.False(t, hasTip, "empty tip serialised")
	assert.Equal(t, map[string]interface{}{}, back["confirmed"])
}

func TestRoundTripBetweenDevices(t *testing.T) {
	a := setupTestLogger(t)
	defer teardownTestLogger()

	sender := newDevice("sender", a.Key)
	chain := a.Chain(3)
	_ = sender.chain.Replace(chain)
	_, _ = sender.queue.Enqueue(transactionrecord.Transaction{
		TransactionID:    "local-1",
		TimestampCreated: 1700000000,
		StationAddress:   "alice",
		MessageData:      "need water",
		RelatedAddresses: []string{"bob"},
		RelayHash:        "r-water",
		TypeField:        transactionrecord.Message,
		PriorityLevel:    5,
		OriginDevice:     "sender",
	})
	sender.ledger.MarkConfirmed("r-old", confirmation.Entry{ConfirmedAt: 42, Source: confirmation.SourceSubmit})

	data, err := json.Marshal(sender.sync.BuildPayload())
	if !assert.Nil(t, err, "marshal error") {
		return
	}

	receiver := newDevice("receiver", a.Key)
	result, err := receiver.sync.Ingest(data)
	assert.Nil(t, err, "ingest error")
	assert.Nil(t, result.Report.Rejected)
	assert.Equal(t, 1, result.Import.Queued)
	assert.Equal(t, 1, result.Import.ConfirmationsChanged)
	assert.Equal(t, 3, result.Merge.Accepted)

	assert.Equal(t, chain, receiver.chain.Get())
	m, ok := receiver.queue.Get("r-water")
	if assert.True(t, ok, "message not relayed") {
		assert.Equal(t, "need water", m.MessageData)
		assert.Equal(t, 5, m.PriorityLevel)
		assert.Equal(t, "sender", m.OriginDevice)
	}
	assert.True(t, receiver.ledger.IsConfirmed("r-old"))

	// ingesting the same payload again changes nothing
	again, err := receiver.sync.Ingest(data)
	assert.Nil(t, err)
	assert.Equal(t, synchronise.ImportResult{}, again.Import)
	assert.Equal(t, synchronise.MergeResult{Duplicates: 3}, again.Merge)
	assert.Equal(t, 1, again.Report.QueuedKnown)
}
