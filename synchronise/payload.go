// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package synchronise

import (
	"bytes"
	"encoding/json"

	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/confirmation"
	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/reservoir"
)

// Payload - the unit of exchange between devices
type Payload struct {
	Version     uint32                    `json:"version"`
	DeviceID    string                    `json:"deviceId"`
	CrisisID    string                    `json:"crisisId,omitempty"`
	GeneratedAt int64                     `json:"generatedAt"` // milliseconds
	ChainTip    *blockrecord.Header       `json:"chain_tip,omitempty"`
	Blocks      []blockrecord.Block       `json:"blocks"`
	Queued      []reservoir.QueuedMessage `json:"queued"`
	Confirmed   ConfirmedList             `json:"confirmed"`
}

// ConfirmedRelay - one member of the confirmed object
type ConfirmedRelay struct {
	RelayHash string
	Entry     confirmation.Entry
}

// ConfirmedList - the confirmed object with its key order preserved
type ConfirmedList []ConfirmedRelay

// Map - as a map for merging
func (c ConfirmedList) Map() map[string]confirmation.Entry {
	m := make(map[string]confirmation.Entry, len(c))
	for _, r := range c {
		m[r.RelayHash] = r.Entry
	}
	return m
}

// MarshalJSON - encode as an object in list order
func (c ConfirmedList) MarshalJSON() ([]byte, error) {
	buffer := &bytes.Buffer{}
	buffer.WriteByte('{')
	for i, r := range c {
		if i > 0 {
			buffer.WriteByte(',')
		}
		key, err := json.Marshal(r.RelayHash)
		if nil != err {
			return nil, err
		}
		value, err := json.Marshal(r.Entry)
		if nil != err {
			return nil, err
		}
		buffer.Write(key)
		buffer.WriteByte(':')
		buffer.Write(value)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// UnmarshalJSON - decode an object keeping the order of its keys
func (c *ConfirmedList) UnmarshalJSON(data []byte) error {
	members, err := orderedObject(data)
	if nil != err {
		return err
	}
	list := make(ConfirmedList, 0, len(members))
	for _, m := range members {
		var e confirmation.Entry
		if err := json.Unmarshal(m.value, &e); nil != err {
			return err
		}
		list = append(list, ConfirmedRelay{RelayHash: m.key, Entry: e})
	}
	*c = list
	return nil
}

type member struct {
	key   string
	value json.RawMessage
}

// members of a JSON object in document order, null gives no members
func orderedObject(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	t, err := dec.Token()
	if nil != err {
		return nil, err
	}
	if nil == t {
		return nil, nil
	}
	if d, ok := t.(json.Delim); !ok || '{' != d {
		return nil, fault.ErrInvalidPayload
	}

	members := []member{}
	for dec.More() {
		t, err := dec.Token()
		if nil != err {
			return nil, err
		}
		key, ok := t.(string)
		if !ok {
			return nil, fault.ErrInvalidPayload
		}
		var value json.RawMessage
		if err := dec.Decode(&value); nil != err {
			return nil, err
		}
		members = append(members, member{key: key, value: value})
	}

	// closing brace
	if _, err := dec.Token(); nil != err {
		return nil, err
	}
	return members, nil
}
