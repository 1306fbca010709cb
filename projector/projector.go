// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package projector

import (
	"sort"

	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/reservoir"
	"github.com/krisys/krisys/transactionrecord"
)

// Projected - one row of a wallet view
type Projected struct {
	transactionrecord.Transaction
	IsConfirmed   bool             `json:"isConfirmed"`
	BlockIndex    uint64           `json:"block_index,omitempty"` // confirmed rows only
	Status        reservoir.Status `json:"status,omitempty"`      // queued rows only
	QueuedAt      int64            `json:"queuedAt,omitempty"`    // queued rows only, milliseconds
	SortTimestamp float64          `json:"sortTimestamp"`         // seconds
}

// Project - the transactions relevant to addresses
//
// pure function of its inputs: nothing is read from or written to
// the stores, callers pass snapshots
func Project(addresses []string, chain []blockrecord.Block, queued []reservoir.QueuedMessage) []Projected {
	members := transactionrecord.AddressSet(addresses)

	view := []Projected{}
	canonical := make(map[string]struct{})

	for _, b := range chain {
		for _, tx := range b.Transactions {
			if tx.IsRelayable() {
				canonical[tx.RelayHash] = struct{}{}
			}
			if !tx.Involves(members) {
				continue
			}
			view = append(view, Projected{
				Transaction:   copyTransaction(tx),
				IsConfirmed:   true,
				BlockIndex:    b.BlockIndex,
				SortTimestamp: tx.SortTimestamp(),
			})
		}
	}

	for _, item := range queued {
		if reservoir.Pending != item.Status && reservoir.Sent != item.Status {
			continue
		}
		if item.IsRelayable() {
			if _, ok := canonical[item.RelayHash]; ok {
				continue
			}
		}
		if !item.Involves(members) {
			continue
		}
		view = append(view, Projected{
			Transaction:   copyTransaction(item.Transaction),
			Status:        item.Status,
			QueuedAt:      item.QueuedAt,
			SortTimestamp: queuedSortTimestamp(item),
		})
	}

	sort.SliceStable(view, func(i, j int) bool {
		a, b := &view[i], &view[j]
		if a.SortTimestamp != b.SortTimestamp {
			return a.SortTimestamp > b.SortTimestamp
		}
		if a.IsConfirmed != b.IsConfirmed {
			return a.IsConfirmed
		}
		return a.TransactionID < b.TransactionID
	})
	return view
}

// OfType - only the rows of one transaction type
func OfType(view []Projected, typeField transactionrecord.TypeField) []Projected {
	selected := []Projected{}
	for _, p := range view {
		if typeField == p.TypeField {
			selected = append(selected, p)
		}
	}
	return selected
}

// posted, then the queue time in seconds, then created
func queuedSortTimestamp(item reservoir.QueuedMessage) float64 {
	if 0 != item.TimestampPosted {
		return item.TimestampPosted
	}
	if item.QueuedAt > 0 {
		return float64(item.QueuedAt) / 1000
	}
	return item.TimestampCreated
}

func copyTransaction(tx transactionrecord.Transaction) transactionrecord.Transaction {
	if nil != tx.RelatedAddresses {
		related := make([]string, len(tx.RelatedAddresses))
		copy(related, tx.RelatedAddresses)
		tx.RelatedAddresses = related
	}
	return tx
}
