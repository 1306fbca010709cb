// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"github.com/google/uuid"
)

// TypeField - kind of transaction
type TypeField string

// the transaction types issued by the crisis authority and clients
const (
	Message  = TypeField("message")
	Alert    = TypeField("alert")
	CheckIn  = TypeField("check_in")
	Metadata = TypeField("metadata")
)

// priority bounds
const (
	MinimumPriority = 1
	MaximumPriority = 5
	DefaultPriority = 3
)

// Transaction - a single record, immutable once embedded in a block
type Transaction struct {
	TransactionID    string    `json:"transaction_id"`          // authority or client assigned
	TimestampCreated float64   `json:"timestamp_created"`       // unix seconds
	TimestampPosted  float64   `json:"timestamp_posted"`        // unix seconds, 0 until posted
	StationAddress   string    `json:"station_address"`         // sender
	MessageData      string    `json:"message_data"`            // opaque, may be ciphertext
	RelatedAddresses []string  `json:"related_addresses"`       // recipients
	RelayHash        string    `json:"relay_hash,omitempty"`    // client idempotency key
	PostedID         string    `json:"posted_id,omitempty"`     // authority assigned
	TypeField        TypeField `json:"type_field"`              // message, alert…
	PriorityLevel    int       `json:"priority_level"`          // 1..5
	OriginDevice     string    `json:"origin_device,omitempty"` // device that first queued it
}

// NewRelayHash - a fresh idempotency key for one logical send
func NewRelayHash() string {
	return uuid.New().String()
}

// IsRelayable - carries a relay hash
func (tx *Transaction) IsRelayable() bool {
	return "" != tx.RelayHash
}

// Involves - true for global alerts or when the sender or any
// recipient is one of the addresses
func (tx *Transaction) Involves(addresses map[string]struct{}) bool {
	if Alert == tx.TypeField {
		return true
	}
	if _, ok := addresses[tx.StationAddress]; ok {
		return true
	}
	for _, a := range tx.RelatedAddresses {
		if _, ok := addresses[a]; ok {
			return true
		}
	}
	return false
}

// SortTimestamp - posted time, falling back to creation time
func (tx *Transaction) SortTimestamp() float64 {
	if 0 != tx.TimestampPosted {
		return tx.TimestampPosted
	}
	return tx.TimestampCreated
}

// AddressSet - convert a list into a membership set
func AddressSet(addresses []string) map[string]struct{} {
	s := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		if "" != a {
			s[a] = struct{}{}
		}
	}
	return s
}

// ValidPriority - check range
func ValidPriority(p int) bool {
	return p >= MinimumPriority && p <= MaximumPriority
}
