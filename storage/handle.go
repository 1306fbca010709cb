// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

// fixed keys for each persisted structure
const (
	BlockchainKey       = "krisys_blockchain"
	MessageQueueKey     = "krisys_message_queue"
	ConfirmedRelaysKey  = "krisys_confirmed_relays"
	DeviceIDKey         = "krisys_device_id"
	CrisisMetadataKey   = "krisys_crisis"
	StorageVersionKey   = "krisys_version"
	currentStoreVersion = 1
)

// Handle - key/value byte store
//
// Get returns nil if the key is absent, read failures are logged and
// also give nil so callers always fall back to "empty"
type Handle interface {
	Get(key string) []byte
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}
