// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package synchronise

import (
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/krisys/krisys/block"
	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/confirmation"
	"github.com/krisys/krisys/counter"
	"github.com/krisys/krisys/limitedset"
	"github.com/krisys/krisys/reservoir"
)

// number of distinct forks remembered so each is only reported once
const forkMemory = 256

// KeySource - supplies the current trusted key, nil if unknown
type KeySource interface {
	TrustedKey() *blockrecord.TrustedKey
}

// Configuration - the state a Synchroniser operates on
type Configuration struct {
	Chain    *block.Store
	Ledger   *confirmation.Ledger
	Queue    *reservoir.Queue
	Keys     KeySource
	DeviceID string
	CrisisID string
}

// Synchroniser - builds and applies sync payloads
type Synchroniser struct {
	sync.RWMutex
	log      *logger.L
	chain    *block.Store
	ledger   *confirmation.Ledger
	queue    *reservoir.Queue
	keys     KeySource
	deviceID string
	crisisID string
	now      func() time.Time

	forks     *limitedset.LimitedSet
	forkCount counter.Counter
}

// New - create a Synchroniser
func New(configuration *Configuration) *Synchroniser {
	return &Synchroniser{
		log:      logger.New("synchronise"),
		chain:    configuration.Chain,
		ledger:   configuration.Ledger,
		queue:    configuration.Queue,
		keys:     configuration.Keys,
		deviceID: configuration.DeviceID,
		crisisID: configuration.CrisisID,
		now:      time.Now,
		forks:    limitedset.New(forkMemory),
	}
}

// SetClock - replace the time source
func (s *Synchroniser) SetClock(now func() time.Time) {
	s.Lock()
	s.now = now
	s.Unlock()
}

// current time under the lock
func (s *Synchroniser) clock() time.Time {
	s.RLock()
	defer s.RUnlock()
	return s.now()
}

// SetCrisisID - adopt the crisis id learned from the authority
func (s *Synchroniser) SetCrisisID(id string) {
	s.Lock()
	s.crisisID = id
	s.Unlock()
}

// CrisisID - current crisis id, empty if unknown
func (s *Synchroniser) CrisisID() string {
	s.RLock()
	defer s.RUnlock()
	return s.crisisID
}

// DeviceID - this device
func (s *Synchroniser) DeviceID() string {
	return s.deviceID
}

// ForksDetected - distinct forks reported so far
func (s *Synchroniser) ForksDetected() uint64 {
	return s.forkCount.Uint64()
}

// BuildPayload - snapshot of local state for a peer
//
// every pending message, the full confirmation map and the tail of the
// canonical chain; nothing is modified. Receivers apply their own
// ingest limits
func (s *Synchroniser) BuildPayload() Payload {
	s.RLock()
	now := s.now()
	crisisID := s.crisisID
	s.RUnlock()

	p := Payload{
		Version:     PayloadVersion,
		DeviceID:    s.deviceID,
		CrisisID:    crisisID,
		GeneratedAt: now.UnixNano() / int64(time.Millisecond),
		Blocks:      s.chain.Suffix(ExportBlockSuffix),
		Queued:      s.queue.Pending(),
		Confirmed:   sortedConfirmations(s.ledger.All()),
	}
	if tip, ok := s.chain.Tip(); ok {
		p.ChainTip = &tip
	}
	return p
}

// newest first, relay hash breaks ties so the order is stable
func sortedConfirmations(entries map[string]confirmation.Entry) ConfirmedList {
	list := make(ConfirmedList, 0, len(entries))
	for h, e := range entries {
		list = append(list, ConfirmedRelay{RelayHash: h, Entry: e})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Entry.ConfirmedAt != list[j].Entry.ConfirmedAt {
			return list[i].Entry.ConfirmedAt > list[j].Entry.ConfirmedAt
		}
		return list[i].RelayHash < list[j].RelayHash
	})
	return list
}
