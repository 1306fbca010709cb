// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package synchronise

import (
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/confirmation"
	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/reservoir"
	"github.com/krisys/krisys/transactionrecord"
)

// Report - what Sanitise kept and dropped
type Report struct {
	Rejected          error // non-nil if the whole payload was ignored
	QueuedAccepted    int
	QueuedKnown       int // already confirmed or queued locally
	QueuedDropped     int // failed a check or over a limit
	ConfirmedAccepted int
	ConfirmedDropped  int
	BlocksAccepted    int
	BlocksDropped     int
}

// time bounds for one sanitise pass
type window struct {
	nowMillis     int64
	maxMillis     float64
	maxSeconds    float64
	originCounts  map[string]int
	seenRelayHash map[string]struct{}
}

// Sanitise - validate an untrusted payload
//
// never fails on bad content: entries that fail a check are dropped
// and counted in the report; only an unreadable document, an unknown
// version or a different crisis cause the whole payload to be ignored
func (s *Synchroniser) Sanitise(raw []byte) (Payload, Report) {
	report := Report{}
	p := Payload{
		Version:   PayloadVersion,
		Blocks:    []blockrecord.Block{},
		Queued:    []reservoir.QueuedMessage{},
		Confirmed: ConfirmedList{},
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); nil != err || nil == top {
		report.Rejected = fault.ErrInvalidPayload
		return p, report
	}

	now := s.clock()
	w := &window{
		nowMillis:     now.UnixNano() / int64(time.Millisecond),
		originCounts:  make(map[string]int),
		seenRelayHash: make(map[string]struct{}),
	}
	limit := now.Add(futureAllowance)
	w.maxMillis = float64(limit.UnixNano() / int64(time.Millisecond))
	w.maxSeconds = float64(limit.Unix())

	header, ok := decodeObject(headerOnly(top))
	if !ok {
		report.Rejected = fault.ErrInvalidPayload
		return p, report
	}

	if v, present := header["version"]; present {
		if version, ok := integerInRange(v, PayloadVersion, PayloadVersion); !ok || PayloadVersion != version {
			report.Rejected = fault.ErrUnsupportedVersion
			return p, report
		}
	}

	if id, ok := text(header["deviceId"]); ok {
		p.DeviceID = clamp(id, MaxIdentifierLength)
	}
	if id, ok := text(header["crisisId"]); ok {
		p.CrisisID = clamp(id, MaxIdentifierLength)
	}
	if local := s.CrisisID(); "" != local && "" != p.CrisisID && local != p.CrisisID {
		report.Rejected = fault.ErrCrisisMismatch
		return p, report
	}
	if t, ok := millis(header["generatedAt"], w.maxMillis); ok {
		p.GeneratedAt = t
	}

	if raw, ok := top["chain_tip"]; ok {
		var tip blockrecord.Header
		if err := json.Unmarshal(raw, &tip); nil == err && "" != tip.Hash {
			p.ChainTip = &tip
		}
	}

	p.Blocks = s.sanitiseBlocks(top["blocks"], &report)
	p.Queued = s.sanitiseQueued(top["queued"], w, &report)
	p.Confirmed = s.sanitiseConfirmed(top["confirmed"], w, &report)

	return p, report
}

// the scalar header fields as their own object
func headerOnly(top map[string]json.RawMessage) json.RawMessage {
	h := make(map[string]json.RawMessage)
	for _, k := range []string{"version", "deviceId", "crisisId", "generatedAt"} {
		if v, ok := top[k]; ok {
			h[k] = v
		}
	}
	data, _ := json.Marshal(h)
	return data
}

// list members, anything but an array gives none
func rawList(raw json.RawMessage) []json.RawMessage {
	if nil == raw {
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); nil != err {
		return nil
	}
	return list
}

func (s *Synchroniser) sanitiseBlocks(raw json.RawMessage, report *Report) []blockrecord.Block {
	blocks := []blockrecord.Block{}
	for _, item := range rawList(raw) {
		if len(blocks) >= MaxBlocksPerPayload {
			report.BlocksDropped += 1
			continue
		}
		var b blockrecord.Block
		if err := json.Unmarshal(item, &b); nil != err || "" == b.Hash || "" == b.Signature {
			report.BlocksDropped += 1
			continue
		}
		if nil == b.Transactions {
			b.Transactions = []transactionrecord.Transaction{}
		}
		blocks = append(blocks, b)
	}
	report.BlocksAccepted = len(blocks)
	return blocks
}

func (s *Synchroniser) sanitiseQueued(raw json.RawMessage, w *window, report *Report) []reservoir.QueuedMessage {
	queued := []reservoir.QueuedMessage{}
	for _, item := range rawList(raw) {
		if len(queued) >= MaxQueuedPerPayload {
			report.QueuedDropped += 1
			continue
		}
		obj, ok := decodeObject(item)
		if !ok {
			report.QueuedDropped += 1
			continue
		}

		relayHash, ok := identifier(obj["relay_hash"])
		if !ok {
			report.QueuedDropped += 1
			continue
		}
		if _, seen := w.seenRelayHash[relayHash]; seen || s.ledger.IsConfirmed(relayHash) || s.queue.Has(relayHash) {
			report.QueuedKnown += 1
			continue
		}

		origin := UnknownOrigin
		if o, ok := identifier(obj["origin_device"]); ok {
			origin = o
		}
		if w.originCounts[origin] >= MaxPerOrigin {
			report.QueuedDropped += 1
			continue
		}

		m, ok := sanitiseMessage(obj, w)
		if !ok {
			report.QueuedDropped += 1
			continue
		}
		m.RelayHash = relayHash
		m.OriginDevice = origin

		w.originCounts[origin] += 1
		w.seenRelayHash[relayHash] = struct{}{}
		queued = append(queued, m)
	}
	report.QueuedAccepted = len(queued)
	return queued
}

// field checks for one queued entry, relay hash and origin excluded
func sanitiseMessage(obj map[string]interface{}, w *window) (reservoir.QueuedMessage, bool) {
	m := reservoir.QueuedMessage{}

	created, ok := numberInRange(obj["timestamp_created"], 0, w.maxSeconds)
	if !ok {
		return m, false
	}
	m.TimestampCreated = created

	if posted, ok := numberInRange(obj["timestamp_posted"], 0, w.maxSeconds); ok {
		m.TimestampPosted = posted
	}

	priority, ok := integerInRange(obj["priority_level"], transactionrecord.MinimumPriority, transactionrecord.MaximumPriority)
	if !ok {
		return m, false
	}
	m.PriorityLevel = int(priority)

	station, ok := text(obj["station_address"])
	if !ok {
		return m, false
	}
	m.StationAddress = clamp(station, MaxStationAddressLength)

	typeField, ok := text(obj["type_field"])
	if !ok {
		return m, false
	}
	m.TypeField = transactionrecord.TypeField(clamp(typeField, MaxTypeFieldLength))

	data, ok := text(obj["message_data"])
	if !ok || utf8.RuneCountInString(data) > MaxMessageLength {
		return m, false
	}
	m.MessageData = data

	m.RelatedAddresses = []string{}
	if list, ok := obj["related_addresses"].([]interface{}); ok {
		for _, v := range list {
			if len(m.RelatedAddresses) >= MaxAddressesPerTx {
				break
			}
			if a, ok := text(v); ok && "" != a {
				m.RelatedAddresses = append(m.RelatedAddresses, clamp(a, MaxAddressLength))
			}
		}
	}

	if id, ok := text(obj["transaction_id"]); ok {
		m.TransactionID = clamp(id, MaxIdentifierLength)
	}
	if id, ok := text(obj["posted_id"]); ok {
		m.PostedID = clamp(id, MaxIdentifierLength)
	}

	m.Status = reservoir.Pending
	if status, ok := text(obj["status"]); ok && string(reservoir.Sent) == status {
		m.Status = reservoir.Sent
	}
	m.QueuedAt = w.nowMillis
	if t, ok := millis(obj["queuedAt"], w.maxMillis); ok {
		m.QueuedAt = t
	}
	if n, ok := integerInRange(obj["attempts"], 0, float64(^uint32(0))); ok {
		m.Attempts = uint32(n)
	}
	if t, ok := millis(obj["sentAt"], w.maxMillis); ok {
		m.SentAt = t
	}
	return m, true
}

func (s *Synchroniser) sanitiseConfirmed(raw json.RawMessage, w *window, report *Report) ConfirmedList {
	confirmed := ConfirmedList{}
	if nil == raw {
		return confirmed
	}
	members, err := orderedObject(raw)
	if nil != err {
		return confirmed
	}

	seen := make(map[string]struct{})
	for _, m := range members {
		if len(confirmed) >= MaxConfirmedPerPayload {
			report.ConfirmedDropped += 1
			continue
		}
		relayHash, ok := identifier(m.key)
		if !ok {
			report.ConfirmedDropped += 1
			continue
		}
		if _, dup := seen[relayHash]; dup {
			report.ConfirmedDropped += 1
			continue
		}
		info, ok := decodeObject(m.value)
		if !ok {
			report.ConfirmedDropped += 1
			continue
		}

		e := confirmation.Entry{}
		if t, ok := millis(info["confirmedAt"], w.maxMillis); ok {
			e.ConfirmedAt = t
		}
		if t, ok := numberInRange(info["timestampPosted"], 0, w.maxSeconds); ok {
			e.TimestampPosted = t
		}
		if t, ok := millis(info["sentAt"], w.maxMillis); ok {
			e.SentAt = t
		}
		if v, ok := text(info["source"]); ok {
			e.Source = clamp(v, MaxIdentifierLength)
		}
		if v, ok := text(info["txId"]); ok {
			e.TxID = clamp(v, MaxIdentifierLength)
		}

		seen[relayHash] = struct{}{}
		confirmed = append(confirmed, ConfirmedRelay{RelayHash: relayHash, Entry: e})
	}
	report.ConfirmedAccepted = len(confirmed)
	return confirmed
}
