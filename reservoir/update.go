// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reservoir

import (
	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/storage"
)

// Prune - drop every entry whose relay hash is confirmed
//
// order of the survivors is preserved; returns the resulting queue
func (q *Queue) Prune() []QueuedMessage {
	q.Lock()
	q.removeWhere(func(item *QueuedMessage) bool {
		return q.confirmed.IsConfirmed(item.RelayHash)
	})
	q.Unlock()
	return q.All()
}

// PruneConfirmed - Prune returning the number removed
func (q *Queue) PruneConfirmed() int {
	q.Lock()
	defer q.Unlock()
	return q.removeWhere(func(item *QueuedMessage) bool {
		return q.confirmed.IsConfirmed(item.RelayHash)
	})
}

// PruneSent - drop every entry already delivered to the authority
func (q *Queue) PruneSent() int {
	q.Lock()
	defer q.Unlock()
	return q.removeWhere(func(item *QueuedMessage) bool {
		return Sent == item.Status
	})
}

// caller holds the write lock
func (q *Queue) removeWhere(remove func(item *QueuedMessage) bool) int {
	kept := make([]QueuedMessage, 0, len(q.items))
	for i := range q.items {
		if !remove(&q.items[i]) {
			kept = append(kept, q.items[i])
		}
	}
	removed := len(q.items) - len(kept)
	if removed > 0 {
		q.items = kept
		q.persist()
		q.log.Debugf("prune: removed %d", removed)
	}
	return removed
}

// MarkAttempt - count one more submit attempt
func (q *Queue) MarkAttempt(relayHash string) error {
	q.Lock()
	defer q.Unlock()
	i := q.index(relayHash)
	if i < 0 {
		return fault.ErrNotFound
	}
	q.items[i].Attempts += 1
	q.persist()
	return nil
}

// MarkSent - the authority accepted the transaction
func (q *Queue) MarkSent(relayHash string, sentAt int64) error {
	q.Lock()
	defer q.Unlock()
	i := q.index(relayHash)
	if i < 0 {
		return fault.ErrNotFound
	}
	q.items[i].Status = Sent
	q.items[i].SentAt = sentAt
	q.persist()
	return nil
}

// Merge - append entries learned from a peer
//
// entries without a relay hash, already queued or already confirmed
// are skipped; missing bookkeeping fields get their defaults
func (q *Queue) Merge(incoming []QueuedMessage) int {
	q.Lock()
	defer q.Unlock()

	added := 0
	for _, item := range incoming {
		if "" == item.RelayHash || q.index(item.RelayHash) >= 0 || q.confirmed.IsConfirmed(item.RelayHash) {
			continue
		}
		if Sent != item.Status {
			item.Status = Pending
		}
		if item.QueuedAt <= 0 {
			item.QueuedAt = q.nowMillis()
		}
		q.items = append(q.items, copyItem(item))
		added += 1
	}
	if added > 0 {
		q.persist()
		q.log.Infof("merge: %d new queued", added)
	}
	return added
}

// Reset - empty the queue
func (q *Queue) Reset() error {
	q.Lock()
	defer q.Unlock()
	q.items = []QueuedMessage{}
	return q.handle.Delete(storage.MessageQueueKey)
}
