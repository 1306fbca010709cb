// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"sync"
)

// KeyHolder - the current trusted key, replaceable at run time when
// crisis metadata is fetched or the key file changes
type KeyHolder struct {
	sync.RWMutex
	key *TrustedKey
}

// NewKeyHolder - holder with an optional initial key
func NewKeyHolder(key *TrustedKey) *KeyHolder {
	return &KeyHolder{key: key}
}

// TrustedKey - nil when no key is known
func (h *KeyHolder) TrustedKey() *TrustedKey {
	h.RLock()
	defer h.RUnlock()
	return h.key
}

// Set - replace the key, returns true if the fingerprint changed
func (h *KeyHolder) Set(key *TrustedKey) bool {
	h.Lock()
	defer h.Unlock()
	changed := h.key.Fingerprint() != key.Fingerprint()
	h.key = key
	return changed
}

// Verify - verify with the current key
func (h *KeyHolder) Verify(block *Block) bool {
	return h.TrustedKey().Verify(block)
}
