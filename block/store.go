// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/storage"
)

// persisted layout under storage.BlockchainKey
type persisted struct {
	Blocks      []blockrecord.Block `json:"blocks"`
	LastUpdated int64               `json:"lastUpdated"` // milliseconds
}

// Store - the canonical chain cache
type Store struct {
	sync.RWMutex
	log         *logger.L
	handle      storage.Handle
	blocks      []blockrecord.Block
	lastUpdated int64
	now         func() time.Time
}

// New - load the chain from the handle, corrupt data gives an empty chain
func New(handle storage.Handle) *Store {
	s := &Store{
		log:    logger.New("block"),
		handle: handle,
		blocks: []blockrecord.Block{},
		now:    time.Now,
	}
	s.load()
	return s
}

func (s *Store) load() {
	data := s.handle.Get(storage.BlockchainKey)
	if nil == data {
		return
	}

	var p persisted
	err := json.Unmarshal(data, &p)
	if nil != err {
		s.log.Errorf("%s: %s", fault.ErrStorageCorrupt, err)
		return
	}

	blockrecord.SortBlocks(p.Blocks)
	if nil != p.Blocks {
		s.blocks = p.Blocks
	}
	s.lastUpdated = p.LastUpdated
	s.log.Infof("loaded: %d blocks", len(s.blocks))
}

// write the candidate list, caller holds the write lock
func (s *Store) persist(blocks []blockrecord.Block) (int64, error) {
	lastUpdated := s.now().UnixNano() / int64(time.Millisecond)
	data, err := json.Marshal(persisted{
		Blocks:      blocks,
		LastUpdated: lastUpdated,
	})
	if nil != err {
		return 0, err
	}
	err = s.handle.Put(storage.BlockchainKey, data)
	if nil != err {
		return 0, err
	}
	return lastUpdated, nil
}

// Get - all blocks ascending
func (s *Store) Get() []blockrecord.Block {
	s.RLock()
	defer s.RUnlock()
	return blockrecord.Copy(s.blocks)
}

// Height - number of cached blocks
func (s *Store) Height() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.blocks)
}

// IsEmpty - no blocks cached
func (s *Store) IsEmpty() bool {
	return 0 == s.Height()
}

// LastUpdated - milliseconds of the last successful write, 0 if never
func (s *Store) LastUpdated() int64 {
	s.RLock()
	defer s.RUnlock()
	return s.lastUpdated
}

// Tip - header of the highest block
func (s *Store) Tip() (blockrecord.Header, bool) {
	s.RLock()
	defer s.RUnlock()
	if 0 == len(s.blocks) {
		return blockrecord.Header{}, false
	}
	return s.blocks[len(s.blocks)-1].Header(), true
}

// Suffix - the last n blocks ascending
func (s *Store) Suffix(n int) []blockrecord.Block {
	s.RLock()
	defer s.RUnlock()
	if n <= 0 {
		return []blockrecord.Block{}
	}
	start := len(s.blocks) - n
	if start < 0 {
		start = 0
	}
	return blockrecord.Copy(s.blocks[start:])
}

// Lookup - the block with a given index
func (s *Store) Lookup(index uint64) (blockrecord.Block, bool) {
	s.RLock()
	defer s.RUnlock()
	i := s.search(index)
	if i < len(s.blocks) && index == s.blocks[i].BlockIndex {
		return s.blocks[i], true
	}
	return blockrecord.Block{}, false
}

// first position whose index is >= index
func (s *Store) search(index uint64) int {
	return sort.Search(len(s.blocks), func(i int) bool {
		return s.blocks[i].BlockIndex >= index
	})
}
