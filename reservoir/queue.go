// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reservoir

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/storage"
	"github.com/krisys/krisys/transactionrecord"
)

// Status - delivery state of a queued message
type Status string

// possible states
const (
	Pending = Status("pending")
	Sent    = Status("sent")
)

// QueuedMessage - a transaction plus its queue bookkeeping
type QueuedMessage struct {
	transactionrecord.Transaction
	QueuedAt int64  `json:"queuedAt"`         // milliseconds
	Attempts uint32 `json:"attempts"`         // submit attempts so far
	Status   Status `json:"status"`           // pending or sent
	SentAt   int64  `json:"sentAt,omitempty"` // milliseconds
}

// Confirmations - read side of the confirmation ledger
type Confirmations interface {
	IsConfirmed(relayHash string) bool
}

// Queue - the persisted outbound queue
type Queue struct {
	sync.RWMutex
	log       *logger.L
	handle    storage.Handle
	confirmed Confirmations
	items     []QueuedMessage
	now       func() time.Time
}

// New - load the queue, corrupt data gives an empty queue
func New(handle storage.Handle, confirmed Confirmations) *Queue {
	q := &Queue{
		log:       logger.New("reservoir"),
		handle:    handle,
		confirmed: confirmed,
		items:     []QueuedMessage{},
		now:       time.Now,
	}

	if data := handle.Get(storage.MessageQueueKey); nil != data {
		var items []QueuedMessage
		if err := json.Unmarshal(data, &items); nil != err {
			q.log.Errorf("%s: %s", fault.ErrStorageCorrupt, err)
		} else if nil != items {
			q.items = items
		}
	}
	q.log.Infof("loaded: %d queued", len(q.items))
	return q
}

// SetClock - replace the time source
func (q *Queue) SetClock(now func() time.Time) {
	q.Lock()
	q.now = now
	q.Unlock()
}

func (q *Queue) nowMillis() int64 {
	return q.now().UnixNano() / int64(time.Millisecond)
}

// Enqueue - add a new pending message
//
// a relay hash is assigned if the transaction has none; a relay hash
// that is already queued or already confirmed is refused
func (q *Queue) Enqueue(tx transactionrecord.Transaction) (QueuedMessage, error) {
	if "" == tx.RelayHash {
		tx.RelayHash = transactionrecord.NewRelayHash()
	}
	if q.confirmed.IsConfirmed(tx.RelayHash) {
		return QueuedMessage{}, fault.ErrAlreadyConfirmed
	}

	q.Lock()
	defer q.Unlock()

	if q.index(tx.RelayHash) >= 0 {
		return QueuedMessage{}, fault.ErrAlreadyQueued
	}

	item := QueuedMessage{
		Transaction: tx,
		QueuedAt:    q.nowMillis(),
		Attempts:    0,
		Status:      Pending,
	}
	q.items = append(q.items, copyItem(item))
	q.persist()
	q.log.Debugf("enqueue: %s", tx.RelayHash)
	return item, nil
}

// Pending - pending entries whose relay hash is not confirmed
func (q *Queue) Pending() []QueuedMessage {
	q.RLock()
	defer q.RUnlock()
	pending := make([]QueuedMessage, 0, len(q.items))
	for _, item := range q.items {
		if Pending == item.Status && !q.confirmed.IsConfirmed(item.RelayHash) {
			pending = append(pending, copyItem(item))
		}
	}
	return pending
}

// All - every entry in queue order
func (q *Queue) All() []QueuedMessage {
	q.RLock()
	defer q.RUnlock()
	all := make([]QueuedMessage, len(q.items))
	for i, item := range q.items {
		all[i] = copyItem(item)
	}
	return all
}

// Count - all entries
func (q *Queue) Count() int {
	q.RLock()
	defer q.RUnlock()
	return len(q.items)
}

// PendingCount - entries that Pending would return
func (q *Queue) PendingCount() int {
	return len(q.Pending())
}

// Has - relay hash is queued
func (q *Queue) Has(relayHash string) bool {
	if "" == relayHash {
		return false
	}
	q.RLock()
	defer q.RUnlock()
	return q.index(relayHash) >= 0
}

// Get - the entry for a relay hash
func (q *Queue) Get(relayHash string) (QueuedMessage, bool) {
	q.RLock()
	defer q.RUnlock()
	if i := q.index(relayHash); i >= 0 {
		return copyItem(q.items[i]), true
	}
	return QueuedMessage{}, false
}

// position of relay hash or -1, caller holds a lock
func (q *Queue) index(relayHash string) int {
	if "" == relayHash {
		return -1
	}
	for i := range q.items {
		if relayHash == q.items[i].RelayHash {
			return i
		}
	}
	return -1
}

// caller holds the write lock
func (q *Queue) persist() {
	data, err := json.Marshal(q.items)
	if nil != err {
		q.log.Errorf("marshal error: %s", err)
		return
	}
	if err := q.handle.Put(storage.MessageQueueKey, data); nil != err {
		q.log.Errorf("persist error: %s", err)
	}
}

func copyItem(item QueuedMessage) QueuedMessage {
	if nil != item.RelatedAddresses {
		item.RelatedAddresses = append([]string{}, item.RelatedAddresses...)
	}
	return item
}
