// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.


package storage

import (
	"time"

	cache "github.com/patrickmn/go-cache"
)

// the engine keeps only a handful of keys, each a whole JSON document,
// so entries live until overwritten or idle for a while
const (
	cacheLifetime = 5 * time.Minute
	cacheSweep    = 10 * time.Minute
)

// a tombstone records a delete so the next read skips leveldb
type cachedValue struct {
	tombstone bool
	data      []byte
}

type readCache struct {
	entries *cache.Cache
}

func newReadCache() *readCache {
	return &readCache{
		entries: cache.New(cacheLifetime, cacheSweep),
	}
}

// lookup - hit is true when the cache can answer, value is nil for a
// deleted key
func (c *readCache) lookup(key string) (value []byte, hit bool) {
	obj, found := c.entries.Get(key)
	if !found {
		return nil, false
	}
	v := obj.(cachedValue)
	if v.tombstone {
		return nil, true
	}
	return v.data, true
}

func (c *readCache) remember(key string, value []byte) {
	c.entries.SetDefault(key, cachedValue{data: value})
}

func (c *readCache) forget(key string) {
	c.entries.SetDefault(key, cachedValue{tombstone: true})
}

func (c *readCache) reset() {
	c.entries.Flush()
}
