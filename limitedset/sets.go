// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package limitedset - a bounded set that forgets its oldest member
package limitedset

import (
	"container/ring"
	"sync"
)

// LimitedSet - holds at most size items
type LimitedSet struct {
	sync.Mutex
	size int
	ring *ring.Ring
	hash map[string]*ring.Ring
}

// New - create a new limited set that holds up to 'n' items
func New(n int) *LimitedSet {
	if n < 1 {
		n = 1
	}
	return &LimitedSet{
		size: n,
		ring: ring.New(n),
		hash: make(map[string]*ring.Ring),
	}
}

// Add - add an item, a repeated item becomes the newest
func (ls *LimitedSet) Add(item string) {
	ls.Lock()
	ls.add(item)
	ls.Unlock()
}

// AddIfAbsent - add an item, false if it was already present
func (ls *LimitedSet) AddIfAbsent(item string) bool {
	ls.Lock()
	defer ls.Unlock()
	if _, ok := ls.hash[item]; ok {
		return false
	}
	ls.add(item)
	return true
}

// Exists - check to see if item is in the set
func (ls *LimitedSet) Exists(item string) bool {
	ls.Lock()
	defer ls.Unlock()
	_, ok := ls.hash[item]
	return ok
}

// Len - number of items held
func (ls *LimitedSet) Len() int {
	ls.Lock()
	defer ls.Unlock()
	return len(ls.hash)
}

// caller holds the lock
func (ls *LimitedSet) add(item string) {
	if r, ok := ls.hash[item]; ok {
		switch r {
		case ls.ring.Prev():
			// already newest
		case ls.ring:
			// oldest slot becomes newest
			ls.ring = ls.ring.Next()
		default:
			r = r.Prev().Unlink(1)
			ls.ring.Prev().Link(r)
		}
		return
	}
	if oldItem, ok := ls.ring.Value.(string); ok {
		delete(ls.hash, oldItem)
	}
	ls.ring.Value = item
	ls.hash[item] = ls.ring
	ls.ring = ls.ring.Next()
}
