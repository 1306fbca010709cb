// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package synchronise_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/krisys/krisys/confirmation"
	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/reservoir"
	"github.com/krisys/krisys/synchronise"
	"github.com/krisys/krisys/transactionrecord"
)

func TestSanitiseQueuedCap(t *testing.T) {
	setupTestLogger(t)
	defer teardownTestLogger()

	d := newDevice("local", nil)

	entries := make([]interface{}, 500)
	for i := range entries {
		entries[i] = queuedEntry(fmt.Sprintf("q%03d", i), fmt.Sprintf("dev-%d", i%20))
	}

	p, report := d.sync.Sanitise(rawPayload(t, map[string]interface{}{"queued": entries}))
	assert.Nil(t, report.Rejected, "payload rejected")
	assert.Equal(t, synchronise.MaxQueuedPerPayload, len(p.Queued), "wrong number kept")
	assert.Equal(t, 400, report.QueuedDropped, "wrong number dropped")
	for i, m := range p.Queued {
		assert.Equal(t, fmt.Sprintf("q%03d", i), m.RelayHash, "not the first entries in arrival order")
	}

	result := d.sync.ImportPayload(p)
	assert.Equal(t, 100, result.Queued, "import did not queue the survivors")
}

func TestSanitisePerOrigin(t *testing.T) {
	setupTestLogger(t)
	defer teardownTestLogger()

	d := newDevice("local", nil)

	entries := []interface{}{}
	for i := 0; i < 60; i += 1 {
		entries = append(entries, queuedEntry(fmt.Sprintf("flood-%d", i), "noisy"))
	}
	entries = append(entries, queuedEntry("quiet-1", "quiet"))
	noOrigin := queuedEntry("anon", "")
	delete(noOrigin, "origin_device")
	entries = append(entries, noOrigin)

	p, report := d.sync.Sanitise(rawPayload(t, map[string]interface{}{"queued": entries}))
	assert.Equal(t, synchronise.MaxPerOrigin+2, len(p.Queued), "per origin cap not applied")
	assert.Equal(t, 10, report.QueuedDropped, "wrong dropped count")

	last := p.Queued[len(p.Queued)-1]
	assert.Equal(t, "anon", last.RelayHash)
	assert.Equal(t, synchronise.UnknownOrigin, last.OriginDevice, "missing origin not defaulted")
}

func TestSanitiseQueuedFieldChecks(t *testing.T) {
	setupTestLogger(t)
	defer teardownTestLogger()

	d := newDevice("local", nil)

	future := float64(testNow.Unix() + 2*24*60*60)
	items := []struct {
		name   string
		mutate func(m map[string]interface{})
	}{
		{"missing relay hash", func(m map[string]interface{}) { delete(m, "relay_hash") }},
		{"blank relay hash", func(m map[string]interface{}) { m["relay_hash"] = "   " }},
		{"numeric relay hash", func(m map[string]interface{}) { m["relay_hash"] = 17 }},
		{"long relay hash", func(m map[string]interface{}) { m["relay_hash"] = strings.Repeat("r", 129) }},
		{"missing created", func(m map[string]interface{}) { delete(m, "timestamp_created") }},
		{"text created", func(m map[string]interface{}) { m["timestamp_created"] = "yesterday" }},
		{"negative created", func(m map[string]interface{}) { m["timestamp_created"] = -1 }},
		{"future created", func(m map[string]interface{}) { m["timestamp_created"] = future }},
		{"priority zero", func(m map[string]interface{}) { m["priority_level"] = 0 }},
		{"priority six", func(m map[string]interface{}) { m["priority_level"] = 6 }},
		{"fractional priority", func(m map[string]interface{}) { m["priority_level"] = 2.5 }},
		{"missing priority", func(m map[string]interface{}) { delete(m, "priority_level") }},
		{"missing station", func(m map[string]interface{}) { delete(m, "station_address") }},
		{"numeric station", func(m map[string]interface{}) { m["station_address"] = 12 }},
		{"missing type", func(m map[string]interface{}) { delete(m, "type_field") }},
		{"missing message", func(m map[string]interface{}) { delete(m, "message_data") }},
		{"object message", func(m map[string]interface{}) { m["message_data"] = map[string]string{"a": "b"} }},
		{"long message", func(m map[string]interface{}) { m["message_data"] = strings.Repeat("x", synchronise.MaxMessageLength+1) }},
	}

	for i, item := range items {
		entry := queuedEntry(fmt.Sprintf("bad-%d", i), "peer")
		item.mutate(entry)
		good := queuedEntry(fmt.Sprintf("good-%d", i), "peer")

		p, report := d.sync.Sanitise(rawPayload(t, map[string]interface{}{"queued": []interface{}{entry, "not an object", good}}))
		assert.Nil(t, report.Rejected, "%s: whole payload rejected", item.name)
		if assert.Equal(t, 1, len(p.Queued), "%s: wrong survivors", item.name) {
			assert.Equal(t, fmt.Sprintf("good-%d", i), p.Queued[0].RelayHash, "%s: wrong survivor", item.name)
		}
		assert.Equal(t, 2, report.QueuedDropped, "%s: wrong dropped count", item.name)
	}
}

func TestSanitiseQueuedClamps(t *testing.T) {
	setupTestLogger(t)
	defer teardownTestLogger()

	d := newDevice("local", nil)

	related := []interface{}{"", 7, strings.Repeat("a", 200)}
	for i := 0; i < 20; i += 1 {
		related = append(related, fmt.Sprintf("member-%d", i))
	}

	entry := queuedEntry("clamped", "peer")
	entry["station_address"] = strings.Repeat("s", 200)
	entry["type_field"] = strings.Repeat("t", 40)
	entry["related_addresses"] = related
	entry["message_data"] = strings.Repeat("m", synchronise.MaxMessageLength)
	entry["timestamp_created"] = "1700000000.5"
	entry["status"] = "sent"
	entry["attempts"] = -3
	entry["queuedAt"] = "soon"

	p, _ := d.sync.Sanitise(rawPayload(t, map[string]interface{}{"queued": []interface{}{entry}}))
	if !assert.Equal(t, 1, len(p.Queued), "entry dropped") {
		return
	}
	m := p.Queued[0]
	assert.Equal(t, synchronise.MaxStationAddressLength, len(m.StationAddress), "station not clamped")
	assert.Equal(t, synchronise.MaxTypeFieldLength, len(m.TypeField), "type not clamped")
	assert.Equal(t, synchronise.MaxAddressesPerTx, len(m.RelatedAddresses), "related not capped")
	assert.Equal(t, synchronise.MaxAddressLength, len(m.RelatedAddresses[0]), "related entry not clamped")
	assert.Equal(t, "member-0", m.RelatedAddresses[1], "non-string related entry kept")
	assert.Equal(t, synchronise.MaxMessageLength, len(m.MessageData), "message at limit altered")
	assert.Equal(t, 1700000000.5, m.TimestampCreated, "numeric string timestamp")
	assert.Equal(t, reservoir.Sent, m.Status, "sent status lost")
	assert.Equal(t, uint32(0), m.Attempts, "negative attempts kept")
	assert.Equal(t, testNow.UnixNano()/1000000, m.QueuedAt, "bad queuedAt not defaulted")
}

func TestSanitiseQueuedKnown(t *testing.T) {
	setupTestLogger(t)
	defer teardownTestLogger()

	d := newDevice("local", nil)
	d.ledger.MarkConfirmed("confirmed", confirmation.Entry{ConfirmedAt: 1})
	_, _ = d.queue.Enqueue(transactionrecord.Transaction{RelayHash: "queued", PriorityLevel: 1})

	entries := []interface{}{
		queuedEntry("confirmed", "peer"),
		queuedEntry("queued", "peer"),
		queuedEntry("fresh", "peer"),
		queuedEntry("fresh", "peer"),
	}
	p, report := d.sync.Sanitise(rawPayload(t, map[string]interface{}{"queued": entries}))
	assert.Equal(t, 1, len(p.Queued), "known entries kept")
	assert.Equal(t, 3, report.QueuedKnown, "wrong known count")
	assert.Equal(t, 0, report.QueuedDropped, "known entries counted as dropped")
}

func TestSanitisePaddedRelayHash(t *testing.T) {
	setupTestLogger(t)
	defer teardownTestLogger()

	d := newDevice("local", nil)
	d.ledger.MarkConfirmed("r1", confirmation.Entry{ConfirmedAt: 1})

	entries := []interface{}{
		queuedEntry(" r1", "peer"),
		queuedEntry("r2\t", "peer"),
		queuedEntry("r3", " peer"),
	}
	raw := rawPayload(t, map[string]interface{}{
		"queued":    entries,
		"confirmed": map[string]interface{}{" r4": map[string]interface{}{"confirmedAt": 5}},
	})
	p, report := d.sync.Sanitise(raw)
	assert.Nil(t, report.Rejected, "payload rejected")
	assert.Equal(t, 0, report.QueuedKnown, "padded key matched a confirmed one")
	assert.Equal(t, 2, report.QueuedDropped, "padded keys not dropped")
	if assert.Equal(t, 1, len(p.Queued), "wrong number kept") {
		assert.Equal(t, "r3", p.Queued[0].RelayHash)
		assert.Equal(t, synchronise.UnknownOrigin, p.Queued[0].OriginDevice, "padded origin kept")
	}
	assert.Equal(t, 0, len(p.Confirmed), "padded confirmation kept")
	assert.Equal(t, 1, report.ConfirmedDropped, "padded confirmation not counted")

	result := d.sync.ImportPayload(p)
	assert.Equal(t, 1, result.Queued, "wrong import count")
	assert.False(t, d.ledger.IsConfirmed("r4"), "padded key normalised on import")
}

func TestSanitiseConfirmed(t *testing.T) {
	setupTestLogger(t)
	defer teardownTestLogger()

	d := newDevice("local", nil)

	// keys are emitted in insertion order so build the JSON by hand
	nowMillis := testNow.UnixNano() / 1000000
	future := nowMillis + 2*24*60*60*1000
	members := []string{
		`"keep":{"confirmedAt":` + fmt.Sprint(nowMillis) + `,"txId":"t1","source":"peer"}`,
		`"future":{"confirmedAt":` + fmt.Sprint(future) + `,"timestampPosted":1e12}`,
		`"not-object":"yes"`,
		`"":{"confirmedAt":1}`,
		`"keep":{"confirmedAt":1}`,
	}
	for i := 0; i < 600; i += 1 {
		members = append(members, fmt.Sprintf(`"c%03d":{"confirmedAt":%d}`, i, i+1))
	}
	raw := []byte(`{"version":1,"deviceId":"peer","confirmed":{` + strings.Join(members, ",") + `}}`)

	p, report := d.sync.Sanitise(raw)
	assert.Nil(t, report.Rejected)
	assert.Equal(t, synchronise.MaxConfirmedPerPayload, len(p.Confirmed), "confirmed not capped")
	assert.Equal(t, 3+102, report.ConfirmedDropped, "wrong dropped count")

	assert.Equal(t, "keep", p.Confirmed[0].RelayHash, "order not preserved")
	assert.Equal(t, confirmation.Entry{ConfirmedAt: nowMillis, TxID: "t1", Source: "peer"}, p.Confirmed[0].Entry)

	assert.Equal(t, "future", p.Confirmed[1].RelayHash)
	assert.Equal(t, confirmation.Entry{}, p.Confirmed[1].Entry, "out of range times kept")

	assert.Equal(t, "c000", p.Confirmed[2].RelayHash)
	assert.Equal(t, "c497", p.Confirmed[499].RelayHash, "not the first entries encountered")
}

func TestSanitiseRejections(t *testing.T) {
	setupTestLogger(t)
	defer teardownTestLogger()

	d := newDevice("local", nil)

	_, report := d.sync.Sanitise([]byte("not json"))
	assert.Equal(t, fault.ErrInvalidPayload, report.Rejected, "garbage")

	_, report = d.sync.Sanitise([]byte(`[1,2,3]`))
	assert.Equal(t, fault.ErrInvalidPayload, report.Rejected, "array")

	_, report = d.sync.Sanitise(rawPayload(t, map[string]interface{}{"version": 2}))
	assert.Equal(t, fault.ErrUnsupportedVersion, report.Rejected, "version 2")

	_, report = d.sync.Sanitise(rawPayload(t, map[string]interface{}{"crisisId": "another-crisis"}))
	assert.Equal(t, fault.ErrCrisisMismatch, report.Rejected, "crisis mismatch")

	p, report := d.sync.Sanitise(rawPayload(t, map[string]interface{}{"crisisId": nil, "queued": "nope", "blocks": 5}))
	assert.Nil(t, report.Rejected, "null crisis id")
	assert.Equal(t, 0, len(p.Queued))
	assert.Equal(t, 0, len(p.Blocks))
	assert.Equal(t, "peer", p.DeviceID)
	assert.Equal(t, int64(1699999999000), p.GeneratedAt)
}

func TestSanitiseBlocks(t *testing.T) {
	a := setupTestLogger(t)
	defer teardownTestLogger()

	d := newDevice("local", a.Key)
	chain := a.Chain(2)

	blocks := []interface{}{chain[0], "junk", map[string]interface{}{"block_index": "x"}, chain[1]}
	p, report := d.sync.Sanitise(rawPayload(t, map[string]interface{}{
		"blocks":    blocks,
		"chain_tip": chain[1].Header(),
	}))
	assert.Equal(t, chain, p.Blocks, "wrong blocks kept")
	assert.Equal(t, 2, report.BlocksDropped)
	if assert.NotNil(t, p.ChainTip, "tip missing") {
		assert.Equal(t, chain[1].Header(), *p.ChainTip)
	}
}
