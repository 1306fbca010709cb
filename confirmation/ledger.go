// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package confirmation

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/storage"
	"github.com/krisys/krisys/transactionrecord"
)

// sources recorded in Entry.Source
const (
	SourceChain        = "chain"
	SourceSubmit       = "submit"
	SourceProcessQueue = "processQueue"
	SourceStationFlush = "stationFlush"
)

// Entry - what is known about one confirmation
type Entry struct {
	ConfirmedAt     int64   `json:"confirmedAt,omitempty"`     // milliseconds, 0 if unknown
	Source          string  `json:"source,omitempty"`          // who confirmed it
	TxID            string  `json:"txId,omitempty"`            // transaction_id on chain
	TimestampPosted float64 `json:"timestampPosted,omitempty"` // seconds
	SentAt          int64   `json:"sentAt,omitempty"`          // milliseconds
}

// Pruner - anything holding work that a confirmation retires
type Pruner interface {
	PruneConfirmed() int
}

// Ledger - the confirmed relay set
type Ledger struct {
	sync.RWMutex
	log     *logger.L
	handle  storage.Handle
	entries map[string]Entry
	now     func() time.Time
}

// New - load the ledger, corrupt data gives an empty ledger
func New(handle storage.Handle) *Ledger {
	l := &Ledger{
		log:     logger.New("confirmation"),
		handle:  handle,
		entries: make(map[string]Entry),
		now:     time.Now,
	}

	if data := handle.Get(storage.ConfirmedRelaysKey); nil != data {
		var entries map[string]Entry
		if err := json.Unmarshal(data, &entries); nil != err {
			l.log.Errorf("%s: %s", fault.ErrStorageCorrupt, err)
		} else if nil != entries {
			l.entries = entries
		}
	}
	l.log.Infof("loaded: %d confirmations", len(l.entries))
	return l
}

// SetClock - replace the time source
func (l *Ledger) SetClock(now func() time.Time) {
	l.Lock()
	l.now = now
	l.Unlock()
}

// IsConfirmed - relay hash has been seen on chain
func (l *Ledger) IsConfirmed(relayHash string) bool {
	if "" == relayHash {
		return false
	}
	l.RLock()
	defer l.RUnlock()
	_, ok := l.entries[relayHash]
	return ok
}

// Get - the entry for a relay hash
func (l *Ledger) Get(relayHash string) (Entry, bool) {
	l.RLock()
	defer l.RUnlock()
	e, ok := l.entries[relayHash]
	return e, ok
}

// Count - number of confirmations
func (l *Ledger) Count() int {
	l.RLock()
	defer l.RUnlock()
	return len(l.entries)
}

// All - copy of every entry
func (l *Ledger) All() map[string]Entry {
	l.RLock()
	defer l.RUnlock()
	c := make(map[string]Entry, len(l.entries))
	for h, e := range l.entries {
		c[h] = e
	}
	return c
}

// MarkConfirmed - record one confirmation, returns true if state changed
func (l *Ledger) MarkConfirmed(relayHash string, entry Entry) bool {
	if "" == relayHash {
		return false
	}

	l.Lock()
	defer l.Unlock()

	if !l.merge(relayHash, entry) {
		return false
	}
	l.persist()
	return true
}

// Merge - record many confirmations, returns the number that changed state
func (l *Ledger) Merge(entries map[string]Entry) int {
	l.Lock()
	defer l.Unlock()

	changed := 0
	for h, e := range entries {
		if "" != h && l.merge(h, e) {
			changed += 1
		}
	}
	if changed > 0 {
		l.persist()
	}
	return changed
}

// SyncFromTransactions - confirm every relay hash found in txs that is
// not yet known, then ask pruner to retire the matching queued work
func (l *Ledger) SyncFromTransactions(txs []transactionrecord.Transaction, pruner Pruner) int {
	l.Lock()
	now := l.now().UnixNano() / int64(time.Millisecond)
	added := 0
	for _, tx := range txs {
		if !tx.IsRelayable() {
			continue
		}
		if _, ok := l.entries[tx.RelayHash]; ok {
			continue
		}
		l.entries[tx.RelayHash] = Entry{
			ConfirmedAt:     now,
			Source:          SourceChain,
			TxID:            tx.TransactionID,
			TimestampPosted: tx.TimestampPosted,
		}
		added += 1
	}
	if added > 0 {
		l.persist()
		l.log.Infof("sync: %d new confirmations", added)
	}
	l.Unlock()

	// the pruner consults IsConfirmed so the lock must be released
	if nil != pruner {
		pruner.PruneConfirmed()
	}
	return added
}

// Reset - forget everything
func (l *Ledger) Reset() error {
	l.Lock()
	defer l.Unlock()
	l.entries = make(map[string]Entry)
	return l.handle.Delete(storage.ConfirmedRelaysKey)
}

// apply the earlier-wins rule, caller holds the write lock
//
// a missing confirmedAt counts as later than any real time and ties
// keep the existing entry
func (l *Ledger) merge(relayHash string, incoming Entry) bool {
	existing, ok := l.entries[relayHash]
	if !ok {
		l.entries[relayHash] = incoming
		return true
	}

	var merged Entry
	if isEarlier(incoming.ConfirmedAt, existing.ConfirmedAt) {
		merged = fill(incoming, existing)
	} else {
		merged = fill(existing, incoming)
	}

	if merged == existing {
		return false
	}
	l.entries[relayHash] = merged
	return true
}

func isEarlier(a int64, b int64) bool {
	if 0 == a {
		return false
	}
	if 0 == b {
		return true
	}
	return a < b
}

// primary's fields, with blanks taken from secondary
func fill(primary Entry, secondary Entry) Entry {
	if 0 == primary.ConfirmedAt {
		primary.ConfirmedAt = secondary.ConfirmedAt
	}
	if "" == primary.Source {
		primary.Source = secondary.Source
	}
	if "" == primary.TxID {
		primary.TxID = secondary.TxID
	}
	if 0 == primary.TimestampPosted {
		primary.TimestampPosted = secondary.TimestampPosted
	}
	if 0 == primary.SentAt {
		primary.SentAt = secondary.SentAt
	}
	return primary
}

// caller holds the write lock
func (l *Ledger) persist() {
	data, err := json.Marshal(l.entries)
	if nil != err {
		l.log.Errorf("marshal error: %s", err)
		return
	}
	if err := l.handle.Put(storage.ConfirmedRelaysKey, data); nil != err {
		l.log.Errorf("persist error: %s", err)
	}
}
