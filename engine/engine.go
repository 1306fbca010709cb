// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/google/uuid"

	"github.com/krisys/krisys/authority"
	"github.com/krisys/krisys/block"
	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/confirmation"
	"github.com/krisys/krisys/counter"
	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/mode"
	"github.com/krisys/krisys/msgcrypt"
	"github.com/krisys/krisys/projector"
	"github.com/krisys/krisys/reservoir"
	"github.com/krisys/krisys/storage"
	"github.com/krisys/krisys/synchronise"
)

// Configuration - what an Engine is built from
type Configuration struct {
	Handle    storage.Handle
	Authority authority.Authority  // nil for a device that never goes online
	Key       *blockrecord.TrustedKey // optional, the authority may supply it
	Crypter   msgcrypt.Crypter     // nil selects OpenPGP
	DeviceID  string               // blank: load or create a persistent id
	CrisisID  string               // blank: learn from the authority
}

// Statistics - lifetime counts for status reports
type Statistics struct {
	Refreshes       counter.Counter
	RefreshFailures counter.Counter
	Submitted       counter.Counter
	Queued          counter.Counter
	Sent            counter.Counter
	Imports         counter.Counter
}

// Engine - a device
type Engine struct {
	sync.Mutex // serialises Refresh, ProcessQueue and Flush

	log       *logger.L
	handle    storage.Handle
	authority authority.Authority
	crypter   msgcrypt.Crypter
	deviceID  string

	chain  *block.Store
	ledger *confirmation.Ledger
	queue  *reservoir.Queue
	keys   *blockrecord.KeyHolder
	sync   *synchronise.Synchroniser

	clock struct {
		sync.RWMutex
		now func() time.Time
	}

	crisis struct {
		sync.RWMutex
		metadata *authority.CrisisMetadata
	}

	stats Statistics
}

// New - load all persisted state for a device
func New(configuration *Configuration) (*Engine, error) {
	if nil == configuration.Handle {
		return nil, fault.ErrNotInitialised
	}

	e := &Engine{
		log:       logger.New("engine"),
		handle:    configuration.Handle,
		authority: configuration.Authority,
		crypter:   configuration.Crypter,
		keys:      blockrecord.NewKeyHolder(configuration.Key),
	}
	e.clock.now = time.Now
	if nil == e.crypter {
		e.crypter = msgcrypt.OpenPGP{}
	}

	e.deviceID = configuration.DeviceID
	if "" == e.deviceID {
		id, err := e.loadDeviceID()
		if nil != err {
			return nil, err
		}
		e.deviceID = id
	}

	crisisID := configuration.CrisisID
	if m := e.loadCrisis(); nil != m {
		e.crisis.metadata = m
		if "" == crisisID {
			crisisID = m.ID
		}
		if nil == e.keys.TrustedKey() {
			if key, err := blockrecord.NewTrustedKey(m.BlockPublicKey); nil == err {
				e.keys.Set(key)
				e.log.Infof("trusted key from cached crisis: %s", key.Fingerprint())
			}
		}
	}

	e.chain = block.New(e.handle)
	e.ledger = confirmation.New(e.handle)
	e.queue = reservoir.New(e.handle, e.ledger)
	e.sync = synchronise.New(&synchronise.Configuration{
		Chain:    e.chain,
		Ledger:   e.ledger,
		Queue:    e.queue,
		Keys:     e.keys,
		DeviceID: e.deviceID,
		CrisisID: crisisID,
	})

	e.log.Infof("device: %s  crisis: %q  height: %d  queued: %d  confirmed: %d",
		e.deviceID, crisisID, e.chain.Height(), e.queue.Count(), e.ledger.Count())
	return e, nil
}

// SetClock - replace the time source everywhere
func (e *Engine) SetClock(now func() time.Time) {
	e.clock.Lock()
	e.clock.now = now
	e.clock.Unlock()
	e.ledger.SetClock(now)
	e.queue.SetClock(now)
	e.sync.SetClock(now)
}

func (e *Engine) now() time.Time {
	e.clock.RLock()
	defer e.clock.RUnlock()
	return e.clock.now()
}

func (e *Engine) nowMillis() int64 {
	return e.now().UnixNano() / int64(time.Millisecond)
}

// DeviceID - this device
func (e *Engine) DeviceID() string {
	return e.deviceID
}

// Chain - the canonical chain store
func (e *Engine) Chain() *block.Store {
	return e.chain
}

// Ledger - the confirmation ledger
func (e *Engine) Ledger() *confirmation.Ledger {
	return e.ledger
}

// Queue - the outbound queue
func (e *Engine) Queue() *reservoir.Queue {
	return e.queue
}

// Synchroniser - payload exchange with peers
func (e *Engine) Synchroniser() *synchronise.Synchroniser {
	return e.sync
}

// SetTrustedKey - adopt a new authority key, e.g. from a watched file
func (e *Engine) SetTrustedKey(key *blockrecord.TrustedKey) {
	if e.keys.Set(key) {
		e.log.Warnf("trusted key changed to: %s", key.Fingerprint())
	}
}

// TrustedKey - the current authority key, nil if unknown
func (e *Engine) TrustedKey() *blockrecord.TrustedKey {
	return e.keys.TrustedKey()
}

// Crisis - the last crisis metadata seen, nil if none
func (e *Engine) Crisis() *authority.CrisisMetadata {
	e.crisis.RLock()
	defer e.crisis.RUnlock()
	if nil == e.crisis.metadata {
		return nil
	}
	m := *e.crisis.metadata
	return &m
}

// Export - this device's sync payload as JSON
func (e *Engine) Export() ([]byte, error) {
	return json.Marshal(e.sync.BuildPayload())
}

// Import - ingest a peer's sync payload
func (e *Engine) Import(raw []byte) (synchronise.IngestResult, error) {
	result, err := e.sync.Ingest(raw)
	if nil == err {
		e.stats.Imports.Increment()
	}
	return result, err
}

// Transactions - the wallet view for a set of member addresses
func (e *Engine) Transactions(addresses []string) []projector.Projected {
	return projector.Project(addresses, e.chain.Get(), e.queue.All())
}

// Reset - forget the chain, the queue and every confirmation
func (e *Engine) Reset() error {
	e.Lock()
	defer e.Unlock()

	if err := e.queue.Reset(); nil != err {
		return err
	}
	if err := e.ledger.Reset(); nil != err {
		return err
	}
	if err := e.chain.Replace(nil); nil != err {
		return err
	}
	e.log.Warn("local state reset")
	return nil
}

// Status - summary of the device state
type Status struct {
	DeviceID        string              `json:"deviceId"`
	CrisisID        string              `json:"crisisId,omitempty"`
	CrisisName      string              `json:"crisisName,omitempty"`
	Mode            string              `json:"mode"`
	TrustedKey      string              `json:"trustedKey,omitempty"` // fingerprint
	Height          int                 `json:"height"`
	Tip             *blockrecord.Header `json:"tip,omitempty"`
	LastUpdated     int64               `json:"lastUpdated"`
	Queued          int                 `json:"queued"`
	Pending         int                 `json:"pending"`
	Confirmed       int                 `json:"confirmed"`
	ForksDetected   uint64              `json:"forksDetected"`
	Refreshes       uint64              `json:"refreshes"`
	RefreshFailures uint64              `json:"refreshFailures"`
	Submitted       uint64              `json:"submitted"`
	QueuedTotal     uint64              `json:"queuedTotal"`
	Sent            uint64              `json:"sent"`
	Imports         uint64              `json:"imports"`
}

// Status - current state
func (e *Engine) Status() Status {
	s := Status{
		DeviceID:        e.deviceID,
		CrisisID:        e.sync.CrisisID(),
		Mode:            mode.String(),
		TrustedKey:      e.keys.TrustedKey().Fingerprint(),
		Height:          e.chain.Height(),
		LastUpdated:     e.chain.LastUpdated(),
		Queued:          e.queue.Count(),
		Pending:         e.queue.PendingCount(),
		Confirmed:       e.ledger.Count(),
		ForksDetected:   e.sync.ForksDetected(),
		Refreshes:       e.stats.Refreshes.Uint64(),
		RefreshFailures: e.stats.RefreshFailures.Uint64(),
		Submitted:       e.stats.Submitted.Uint64(),
		QueuedTotal:     e.stats.Queued.Uint64(),
		Sent:            e.stats.Sent.Uint64(),
		Imports:         e.stats.Imports.Uint64(),
	}
	if tip, ok := e.chain.Tip(); ok {
		s.Tip = &tip
	}
	if m := e.Crisis(); nil != m {
		s.CrisisName = m.Name
	}
	return s
}

// persistent device id, created on first use
func (e *Engine) loadDeviceID() (string, error) {
	if data := e.handle.Get(storage.DeviceIDKey); 0 != len(data) {
		return string(data), nil
	}
	id := "device_" + uuid.New().String()
	if err := e.handle.Put(storage.DeviceIDKey, []byte(id)); nil != err {
		return "", err
	}
	return id, nil
}

func (e *Engine) loadCrisis() *authority.CrisisMetadata {
	data := e.handle.Get(storage.CrisisMetadataKey)
	if nil == data {
		return nil
	}
	var m authority.CrisisMetadata
	if err := json.Unmarshal(data, &m); nil != err {
		e.log.Errorf("crisis: %s: %s", fault.ErrStorageCorrupt, err)
		return nil
	}
	return &m
}

func (e *Engine) saveCrisis(m *authority.CrisisMetadata) {
	e.crisis.Lock()
	e.crisis.metadata = m
	e.crisis.Unlock()

	data, err := json.Marshal(m)
	if nil != err {
		return
	}
	if err := e.handle.Put(storage.CrisisMetadataKey, data); nil != err {
		e.log.Errorf("crisis: persist error: %s", err)
	}
}
