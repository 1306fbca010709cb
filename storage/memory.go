// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"
)

// Memory - a Handle that keeps everything in a map
type Memory struct {
	sync.RWMutex
	data map[string][]byte
}

// NewMemory - empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string][]byte),
	}
}

// Get - copy of the stored bytes or nil
func (m *Memory) Get(key string) []byte {
	m.RLock()
	defer m.RUnlock()
	value, ok := m.data[key]
	if !ok {
		return nil
	}
	return append([]byte{}, value...)
}

// Put - store a copy of value
func (m *Memory) Put(key string, value []byte) error {
	m.Lock()
	m.data[key] = append([]byte{}, value...)
	m.Unlock()
	return nil
}

// Delete - remove a key
func (m *Memory) Delete(key string) error {
	m.Lock()
	delete(m.data, key)
	m.Unlock()
	return nil
}

// Close - nothing to release
func (m *Memory) Close() error {
	return nil
}
